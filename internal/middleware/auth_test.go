package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"langlink-api/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthApp(skipAuth bool) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(skipAuth), func(c *fiber.Ctx) error {
		id, err := CurrentUserID(c)
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		claims, ok := utils.ClaimsFromContext(c.UserContext())
		if !ok || claims.UserID != id.Hex() {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(id.Hex())
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetSecret("middleware-secret")
	userID := primitive.NewObjectID()
	token, err := utils.GenerateToken(userID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "no token",
			prepare:    func(r *http.Request) {},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name: "cookie token",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: token})
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name: "bearer token",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name: "garbage token",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: "not-a-jwt"})
			},
			wantStatus: fiber.StatusUnauthorized,
		},
	}

	app := newAuthApp(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.prepare(req)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAuthMiddlewareSkipAuthInjectsDevUser(t *testing.T) {
	app := newAuthApp(true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
