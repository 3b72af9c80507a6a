package chat

import (
	"langlink-api/internal/config"
	"langlink-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ChatApi struct {
	controller *ChatController
	config     *config.Config
}

func NewChatApi(controller *ChatController, config *config.Config) *ChatApi {
	return &ChatApi{
		controller: controller,
		config:     config,
	}
}

func (h *ChatApi) Setup(app *fiber.App) {
	app.Get("/api/chat/token", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.GetToken)
}
