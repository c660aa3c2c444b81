package handlers

import (
	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	var in courses.CourseInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	course, err := h.Courses.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (h *Handler) GetCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	course, err := h.Courses.Get(c.UserContext(), courseID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"course":  course,
		"pricing": courses.Pricing{BasePrice: course.BasePrice, FinalPrice: course.FinalPrice, PlatformFee: courses.RoundMoney(course.FinalPrice - course.BasePrice)},
	})
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	changes := map[string]any{}
	if err := c.BodyParser(&changes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	course, err := h.Courses.Update(c.UserContext(), middleware.UserID(c), courseID, changes)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(course)
}

func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "courseId")
	if err != nil {
		return err
	}
	if err := h.Enrollment.DeleteCourse(c.UserContext(), actor(c), courseID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Course deleted successfully"})
}

func (h *Handler) ListInstructorCourses(c *fiber.Ctx) error {
	list, err := h.Courses.ListByInstructor(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}
