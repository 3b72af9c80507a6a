package auth

import (
	"errors"

	"langlink-api/internal/config"
	"langlink-api/internal/features/user"
	"langlink-api/internal/middleware"
	"langlink-api/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService AuthService
	Config      *config.Config
	Log         *zap.Logger
}

func NewAuthController(authService AuthService, cfg *config.Config, log *zap.Logger) *AuthController {
	return &AuthController{
		AuthService: authService,
		Config:      cfg,
		Log:         log,
	}
}

// Signup godoc
// @Summary      Create an account
// @Description  Creates the account, sets the session cookie and mirrors the user into chat
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      SignupRequest  true  "Signup input"
// @Success      201    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/auth/signup [post]
func (ctrl *AuthController) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	newUser, token, err := ctrl.AuthService.Signup(c.UserContext(), req)
	if err != nil {
		return ctrl.fail(c, err)
	}

	ctrl.setSession(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "user": newUser})
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/auth/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	found, token, err := ctrl.AuthService.Login(c.UserContext(), req)
	if err != nil {
		return ctrl.fail(c, err)
	}

	ctrl.setSession(c, token)
	return c.JSON(fiber.Map{"success": true, "user": found})
}

// Logout godoc
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/auth/logout [post]
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	c.ClearCookie(utils.SessionCookie)
	return c.JSON(fiber.Map{"success": true, "message": "User logged out successfully"})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	current, err := ctrl.AuthService.Me(c.UserContext(), userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized - User not found"})
	}
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": current})
}

// Onboard godoc
// @Summary      Complete onboarding
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      OnboardingRequest  true  "Profile"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Router       /api/auth/onboarding [post]
func (ctrl *AuthController) Onboard(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	var req OnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	updated, err := ctrl.AuthService.Onboard(c.UserContext(), userID, req)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": updated})
}

// EditProfile godoc
// @Summary      Edit profile
// @Description  Updates profile fields, optionally the email and the password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      EditProfileRequest  true  "Profile"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Router       /api/auth/editProfile [post]
func (ctrl *AuthController) EditProfile(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	var req EditProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	updated, err := ctrl.AuthService.EditProfile(c.UserContext(), userID, req)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": updated})
}

func (ctrl *AuthController) setSession(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     utils.SessionCookie,
		Value:    token,
		MaxAge:   int(utils.SessionTTL.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   ctrl.Config.IsProduction(),
	})
}

func (ctrl *AuthController) fail(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		body := fiber.Map{"message": verr.Message}
		if len(verr.MissingFields) > 0 {
			body["missingFields"] = verr.MissingFields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	case errors.Is(err, user.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	default:
		ctrl.Log.Error("auth request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}
