package handlers

import (
	"github.com/anjiri1684/educonnect/middleware"
	ws "github.com/anjiri1684/educonnect/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	list, err := h.Notifier.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Notifier.MarkRead(c.UserContext(), middleware.UserID(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpgradeNotifications rejects anything that is not a websocket handshake.
func UpgradeNotifications(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NotificationSocket keeps the connection registered on the hub until the client goes away.
// Incoming frames are ignored.
func (h *Handler) NotificationSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(uuid.UUID)
	client := &ws.Client{UserID: userID, Conn: conn}
	h.Hub.Register(client)
	defer h.Hub.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.Log.Debug("websocket closed", zap.String("user_id", userID.String()), zap.Error(err))
			return
		}
	}
}
