package handlers

import (
	"github.com/anjiri1684/educonnect/enrollment"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) RequestEnrollment(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	req, err := h.Enrollment.RequestEnrollment(c.UserContext(), courseID, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *Handler) ListRequests(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	status := models.RequestStatus(c.Query("status"))
	switch status {
	case "", models.RequestPending, models.RequestAccepted, models.RequestRejected:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
	}
	list, err := h.Enrollment.ListRequests(c.UserContext(), actor(c), courseID, status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) AcceptRequest(c *fiber.Ctx) error {
	requestID, err := paramID(c, "requestId")
	if err != nil {
		return err
	}
	res, err := h.Enrollment.AcceptRequest(c.UserContext(), actor(c), requestID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"request":          res.Request,
		"sessions_created": res.Sessions.Created,
		"warnings":         res.Warnings,
	})
}

func (h *Handler) RejectRequest(c *fiber.Ctx) error {
	requestID, err := paramID(c, "requestId")
	if err != nil {
		return err
	}
	req, err := h.Enrollment.RejectRequest(c.UserContext(), actor(c), requestID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(req)
}

func (h *Handler) Checkout(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	var details enrollment.PaymentDetails
	if err := c.BodyParser(&details); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	res, err := h.Enrollment.PurchaseAndEnroll(c.UserContext(), courseID, middleware.UserID(c), details)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":          "Payment successful, you are now enrolled",
		"payment":          res.Payment,
		"sessions_created": res.Sessions.Created,
		"warnings":         res.Warnings,
	})
}

func (h *Handler) RemoveStudent(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return err
	}
	if err := h.Enrollment.RemoveStudent(c.UserContext(), actor(c), courseID, studentID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Student removed from course"})
}

func (h *Handler) RepairSchedule(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return err
	}
	out, err := h.Enrollment.RepairSchedule(c.UserContext(), actor(c), courseID, studentID)
	if err != nil {
		return h.fail(c, err)
	}
	resp := fiber.Map{"created": out.Created, "skipped": out.Skipped, "complete": out.Complete()}
	if !out.Complete() {
		resp["failed_dates"] = out.FailedDates
	}
	return c.JSON(resp)
}

func (h *Handler) MySessions(c *fiber.Ctx) error {
	list, err := h.Enrollment.ListStudentSessions(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}
