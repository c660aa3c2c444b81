package handlers

import (
	"github.com/anjiri1684/educonnect/assistant"
	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/enrollment"
	"github.com/anjiri1684/educonnect/media"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/notifications"
	"github.com/anjiri1684/educonnect/scheduling"
	"github.com/anjiri1684/educonnect/utils"
	ws "github.com/anjiri1684/educonnect/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Handler struct {
	Courses    *courses.Service
	Enrollment *enrollment.Coordinator
	Notifier   *notifications.Notifier
	Hub        *ws.Hub
	Media      media.Store
	Assistant  *assistant.Service
	Log        *zap.Logger

	validate *validator.Validate
}

func New(h Handler) *Handler {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	h.validate = utils.NewValidator()
	return &h
}

func actor(c *fiber.Ctx) enrollment.Actor {
	return enrollment.Actor{ID: middleware.UserID(c), Role: middleware.Role(c)}
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// ErrorHandler renders errors that escape a handler, including *fiber.Error.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("[ERROR]", zap.String("path", c.Path()), zap.String("method", c.Method()), zap.Error(err))
			return c.Status(code).JSON(fiber.Map{"error": "Internal server error"})
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

var (
	notFound = []error{
		courses.ErrCourseNotFound,
		enrollment.ErrRequestNotFound,
		enrollment.ErrStudentNotFound,
		notifications.ErrNotificationNotFound,
	}
	conflicts = []error{
		enrollment.ErrDuplicatePendingRequest,
		enrollment.ErrRequestNotPending,
		enrollment.ErrAlreadyEnrolled,
		enrollment.ErrNotEnrolled,
		enrollment.ErrPaidCourse,
		enrollment.ErrFreeCourse,
		enrollment.ErrOwnCourse,
		scheduling.ErrNotRecurring,
	}
)

// partialMessages are shown in place of the cause, which may carry store or provider details.
var partialMessages = []error{
	enrollment.ErrEnrollmentIncomplete,
	enrollment.ErrCascadeIncomplete,
	enrollment.ErrRemovalIncomplete,
}

func partialMessage(p *enrollment.PartialFailure) string {
	for _, sentinel := range partialMessages {
		if errors.Is(p.Err, sentinel) {
			return sentinel.Error()
		}
	}
	return "The operation was only partially completed"
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// fail turns a service error into the JSON error response. Unknown errors are logged and
// never shown to the client.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var (
		verr    *utils.ValidationError
		decline *enrollment.DeclineError
		partial *enrollment.PartialFailure
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Err.Error(), "fields": verr.Fields})
	case errors.As(err, &decline):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": decline.Error(), "decline_reason": decline.Reason})
	case errors.As(err, &partial):
		h.Log.Error("🔥 operation partially applied", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": partialMessage(partial), "completed": partial.Mutated})
	case isAny(err, notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, courses.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case isAny(err, conflicts):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, enrollment.ErrPayoutNotConfigured):
		return c.Status(fiber.StatusPreconditionFailed).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, enrollment.ErrPaymentUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, assistant.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		h.Log.Error("🔥 request failed", zap.String("path", c.Path()), zap.String("method", c.Method()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
