package notification

import (
	"errors"
	"strconv"

	"langlink-api/internal/middleware"
	"langlink-api/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type NotificationController struct {
	service NotificationService
	hub     *Hub
	log     *zap.Logger
}

func NewNotificationController(service NotificationService, hub *Hub, log *zap.Logger) *NotificationController {
	return &NotificationController{
		service: service,
		hub:     hub,
		log:     log,
	}
}

// List godoc
// @Summary      List notifications
// @Description  Paginated notifications of the current user, newest first
// @Tags         notifications
// @Produce      json
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  map[string]interface{}
// @Router       /api/notifications [get]
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "20"), 10, 64)

	notifications, total, err := c.service.GetUserNotifications(ctx.UserContext(), userID, page, limit)
	if err != nil {
		c.log.Error("list notifications failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return ctx.JSON(fiber.Map{
		"data":  notifications,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /api/notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	count, err := c.service.GetUnreadCount(ctx.UserContext(), userID)
	if err != nil {
		c.log.Error("unread count failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return ctx.JSON(fiber.Map{"count": count})
}

// MarkAsRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id}/read [put]
func (c *NotificationController) MarkAsRead(ctx *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid notification ID"})
	}

	if err := c.service.MarkAsRead(ctx.UserContext(), id, userID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Notification not found"})
		}
		c.log.Error("mark notification read failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return ctx.JSON(fiber.Map{"status": "success"})
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/notifications/mark-all-read [post]
func (c *NotificationController) MarkAllAsRead(ctx *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	updated, err := c.service.MarkAllAsRead(ctx.UserContext(), userID)
	if err != nil {
		c.log.Error("mark all notifications read failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return ctx.JSON(fiber.Map{"status": "success", "updated": updated})
}

// RequireUpgrade rejects plain HTTP requests on the socket route.
func (c *NotificationController) RequireUpgrade(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return ctx.Next()
}

// HandleWebSocket godoc
// @Summary      Realtime events
// @Description  Streams group invite and membership events to the current user as JSON frames
// @Tags         notifications
// @Router       /api/ws [get]
func (c *NotificationController) HandleWebSocket(conn *websocket.Conn) {
	claims, ok := conn.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		_ = conn.Close()
		return
	}
	userID, err := claims.ObjectID()
	if err != nil {
		_ = conn.Close()
		return
	}

	client := c.hub.Register(userID, conn)
	defer c.hub.Unregister(userID, client)

	// Inbound frames are ignored; reading keeps control frames flowing and
	// notices when the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			c.log.Debug("websocket closed", zap.String("userId", userID.Hex()), zap.Error(err))
			return
		}
	}
}
