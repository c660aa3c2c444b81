package handlers

import "github.com/gofiber/fiber/v2"

// ThumbnailSignature hands the browser a signed, single-use upload for a course thumbnail.
func (h *Handler) ThumbnailSignature(c *fiber.Ctx) error {
	if h.Media == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Uploads are not configured"})
	}
	ticket, err := h.Media.SignUpload(c.UserContext())
	if err != nil {
		h.Log.Sugar().Errorf("🔥 failed to sign thumbnail upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload params"})
	}
	return c.JSON(ticket)
}
