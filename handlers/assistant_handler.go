package handlers

import (
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/utils"
	"github.com/gofiber/fiber/v2"
)

type chatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (h *Handler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := h.validate.Struct(req); err != nil {
		return h.fail(c, utils.FromValidator(err))
	}
	reply, err := h.Assistant.Chat(c.UserContext(), middleware.UserID(c), req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(reply)
}
