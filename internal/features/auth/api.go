package auth

import (
	"langlink-api/internal/config"
	"langlink-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	auth := app.Group("/api/auth")

	// Public routes
	auth.Post("/signup", h.controller.Signup)
	auth.Post("/login", h.controller.Login)
	auth.Post("/logout", h.controller.Logout)

	protected := middleware.AuthMiddleware(h.config.SkipAuth)
	auth.Get("/me", protected, h.controller.Me)
	auth.Post("/onboarding", protected, h.controller.Onboard)
	auth.Post("/editProfile", protected, h.controller.EditProfile)
}
