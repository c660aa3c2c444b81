package routes

import (
	"time"

	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/metrics"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Options struct {
	JWTSecret             string
	CheckoutRatePerMinute int
}

// Setup registers every route of the API on app.
func Setup(app *fiber.App, h *handlers.Handler, opts Options) {
	PublicRoutes(app)
	WebsocketRoutes(app, h, opts.JWTSecret)

	api := app.Group("/api/v1", middleware.Protected(opts.JWTSecret))
	CourseRoutes(api, h)
	EnrollmentRoutes(api, h, opts.CheckoutRatePerMinute)
	NotificationRoutes(api, h)
	UploadRoutes(api, h)
	AssistantRoutes(api, h)
}

func PublicRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())
}

func CourseRoutes(api fiber.Router, h *handlers.Handler) {
	api.Get("/courses/:courseId", h.GetCourse)

	instructor := api.Group("", middleware.InstructorRequired())
	instructor.Post("/courses", h.CreateCourse)
	instructor.Patch("/courses/:courseId", h.UpdateCourse)
	instructor.Delete("/courses/:courseId", h.DeleteCourse)
	instructor.Get("/instructor/courses", h.ListInstructorCourses)
}

func EnrollmentRoutes(api fiber.Router, h *handlers.Handler, checkoutPerMinute int) {
	api.Post("/courses/:courseId/enrollment-requests", middleware.StudentRequired(), h.RequestEnrollment)
	api.Post("/courses/:courseId/checkout", middleware.StudentRequired(), middleware.RateLimiter(checkoutPerMinute, time.Minute), h.Checkout)
	api.Post("/courses/:courseId/students/:studentId/repair-schedule", h.RepairSchedule)
	api.Get("/sessions/me", h.MySessions)

	instructor := api.Group("", middleware.InstructorRequired())
	instructor.Get("/courses/:courseId/enrollment-requests", h.ListRequests)
	instructor.Post("/enrollment-requests/:requestId/accept", h.AcceptRequest)
	instructor.Post("/enrollment-requests/:requestId/reject", h.RejectRequest)
	instructor.Delete("/courses/:courseId/students/:studentId", h.RemoveStudent)
}

func NotificationRoutes(api fiber.Router, h *handlers.Handler) {
	api.Get("/notifications", h.ListNotifications)
	api.Post("/notifications/:id/read", h.MarkNotificationRead)
}

// WebsocketRoutes must be registered before the /api/v1 group: the handshake carries its
// token in the query string, since browsers cannot set headers on it.
func WebsocketRoutes(app *fiber.App, h *handlers.Handler, secret string) {
	app.Get("/api/v1/ws/notifications",
		handlers.UpgradeNotifications,
		middleware.ProtectedQuery(secret),
		websocket.New(h.NotificationSocket))
}

func UploadRoutes(api fiber.Router, h *handlers.Handler) {
	api.Post("/uploads/thumbnail-signature", middleware.InstructorRequired(), h.ThumbnailSignature)
}

func AssistantRoutes(api fiber.Router, h *handlers.Handler) {
	api.Post("/assistant/chat", h.Chat)
}
