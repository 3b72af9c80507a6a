package chat

import (
	"langlink-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatController struct {
	Tokens TokenIssuer
	Log    *zap.Logger
}

func NewChatController(tokens TokenIssuer, log *zap.Logger) *ChatController {
	return &ChatController{Tokens: tokens, Log: log}
}

// GetToken godoc
// @Summary      Chat client token
// @Description  Token the chat SDK needs to open message streams and calls
// @Tags         chat
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/chat/token [get]
func (ctrl *ChatController) GetToken(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	token, err := ctrl.Tokens.CreateUserToken(userID.Hex())
	if err != nil {
		ctrl.Log.Error("failed to create chat token", zap.String("userId", userID.Hex()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"token": token})
}
