package media

import (
	"langlink-api/internal/config"
	"langlink-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MediaApi struct {
	controller *MediaController
	config     *config.Config
}

func NewMediaApi(controller *MediaController, config *config.Config) *MediaApi {
	return &MediaApi{
		controller: controller,
		config:     config,
	}
}

func (h *MediaApi) Setup(app *fiber.App) {
	app.Post("/api/upload", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.UploadImage)

	if h.config.MediaBackend == "" || h.config.MediaBackend == "local" {
		app.Static(h.config.FSURL, h.config.FSPath)
	}
}
