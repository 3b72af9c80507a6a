package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	common_models "langlink-api/internal/common/models"
	"langlink-api/internal/config"
	"langlink-api/internal/features/chat"
	"langlink-api/internal/features/user"
	"langlink-api/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]user.User
}

func (r *memoryUsers) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memoryUsers) FindByIDs(context.Context, []primitive.ObjectID) ([]user.User, error) {
	return nil, errors.New("not used")
}

func (r *memoryUsers) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memoryUsers) EnsureIndexes(context.Context) error { return nil }

type recordingDirectory struct {
	mu    sync.Mutex
	users []chat.ChatUser
	err   error
}

func (d *recordingDirectory) UpsertUser(_ context.Context, u chat.ChatUser) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append(d.users, u)
	return d.err
}

type nopAudit struct{}

func (nopAudit) LogChange(context.Context, common_models.AuditAction, string, string, map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(context.Context, string, string, int64, int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type authFixture struct {
	app       *fiber.App
	users     *memoryUsers
	directory *recordingDirectory
}

func newAuthFixture() *authFixture {
	utils.SetSecret("auth-test")
	cfg := &config.Config{SyncTimeout: time.Second}
	f := &authFixture{
		users:     &memoryUsers{users: map[primitive.ObjectID]user.User{}},
		directory: &recordingDirectory{},
	}
	svc := NewAuthService(f.users, f.directory, nopAudit{}, cfg, zap.NewNop())
	f.app = fiber.New()
	NewAuthApi(NewAuthController(svc, cfg, zap.NewNop()), cfg).Setup(f.app)
	return f
}

func (f *authFixture) post(t *testing.T, path, body string, cookies ...*http.Cookie) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == utils.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignupValidation(t *testing.T) {
	f := newAuthFixture()

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing fields", `{"email":"a@b.co"}`, "All fields are required"},
		{"short password", `{"email":"a@b.co","password":"short","fullName":"Ana"}`, "Password must be at least 8 characters"},
		{"bad email", `{"email":"not-an-email","password":"longenough","fullName":"Ana"}`, "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.post(t, "/api/auth/signup", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestSignupLoginFlow(t *testing.T) {
	f := newAuthFixture()
	f.directory.err = errors.New("chat down")

	resp, body := f.post(t, "/api/auth/signup", `{"email":"Ana@Example.com","password":"longenough","fullName":"Ana"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	created := body["user"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", created["email"])
	assert.Contains(t, created["profilePic"], "https://robohash.org/")
	assert.NotContains(t, created, "password")
	require.Len(t, f.directory.users, 1, "chat failure must not block signup")

	resp, body = f.post(t, "/api/auth/signup", `{"email":"ana@example.com","password":"longenough","fullName":"Ana"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, user.ErrEmailTaken.Error(), body["message"])

	resp, _ = f.post(t, "/api/auth/login", `{"email":"ana@example.com","password":"wrong-password"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.post(t, "/api/auth/login", `{"email":"ana@example.com","password":"longenough"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, sessionCookie(resp))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(sessionCookie(resp))
	meResp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, meResp.StatusCode)
}

func TestOnboardingRequiresAllFields(t *testing.T) {
	f := newAuthFixture()
	resp, _ := f.post(t, "/api/auth/signup", `{"email":"ana@example.com","password":"longenough","fullName":"Ana"}`)
	cookie := sessionCookie(resp)

	resp, body := f.post(t, "/api/auth/onboarding", `{"fullName":"Ana","bio":"hola"}`, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.ElementsMatch(t, []interface{}{"nativeLanguage", "learningLanguage", "location"}, body["missingFields"])

	resp, body = f.post(t, "/api/auth/onboarding",
		`{"fullName":"Ana","bio":"hola","nativeLanguage":"english","learningLanguage":"spanish","location":"Lima"}`, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["user"].(map[string]interface{})["isOnboarded"])
	assert.Len(t, f.directory.users, 2)
}

func TestEditProfilePasswordChange(t *testing.T) {
	f := newAuthFixture()
	resp, _ := f.post(t, "/api/auth/signup", `{"email":"ana@example.com","password":"longenough","fullName":"Ana"}`)
	cookie := sessionCookie(resp)
	profile := `"fullName":"Ana","bio":"hola","nativeLanguage":"english","learningLanguage":"spanish","location":"Lima"`

	resp, body := f.post(t, "/api/auth/editProfile", `{`+profile+`,"newPassword":"brandnewpass","oldPassword":"wrongpass","confirmNewPassword":"brandnewpass"}`, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Incorrect old password", body["message"])

	resp, body = f.post(t, "/api/auth/editProfile", `{`+profile+`,"newPassword":"brandnewpass","oldPassword":"longenough","confirmNewPassword":"different"}`, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "New passwords do not match", body["message"])

	resp, _ = f.post(t, "/api/auth/editProfile", `{`+profile+`,"newPassword":"brandnewpass","oldPassword":"longenough","confirmNewPassword":"brandnewpass"}`, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = f.post(t, "/api/auth/login", `{"email":"ana@example.com","password":"brandnewpass"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newAuthFixture()

	resp, body := f.post(t, "/api/auth/logout", ``)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}
