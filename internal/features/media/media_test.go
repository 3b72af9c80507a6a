package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"langlink-api/internal/config"
	"langlink-api/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func newMediaApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{MediaBackend: "local", FSPath: dir, FSURL: "/fs/uploads", MaxImageSizeMB: 1}

	store, err := NewLocalStore(cfg.FSPath, cfg.FSURL)
	require.NoError(t, err)

	app := fiber.New()
	NewMediaApi(NewMediaController(NewMediaService(store, cfg), zap.NewNop()), cfg).Setup(app)
	return app, dir
}

func upload(t *testing.T, app *fiber.App, field, filename, contentType string, data []byte) (int, map[string]string) {
	t.Helper()
	utils.SetSecret("media-test")
	token, err := utils.GenerateToken(primitive.NewObjectID())
	require.NoError(t, err)

	body, ct := multipartBody(t, field, filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestUploadImageStoresAndServesFile(t *testing.T) {
	app, dir := newMediaApp(t)

	status, body := upload(t, app, "image", "My Avatar.PNG", "image/png", pngPixel)
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, strings.HasPrefix(body["url"], "/fs/uploads/langlink/"), body["url"])
	assert.True(t, strings.HasSuffix(body["url"], "-my-avatar.png"), body["url"])

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(body["url"], "/fs/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngPixel, stored)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, body["url"], nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUploadImageRejections(t *testing.T) {
	app, _ := newMediaApp(t)

	tests := []struct {
		name        string
		field       string
		contentType string
		data        []byte
		wantStatus  int
		wantMsg     string
	}{
		{"missing file", "file", "image/png", pngPixel, fiber.StatusBadRequest, "No file uploaded"},
		{"declared text", "image", "text/plain", []byte("hello"), fiber.StatusBadRequest, "Only image files are allowed"},
		{"disguised text", "image", "image/png", []byte("definitely not a png"), fiber.StatusBadRequest, "Only image files are allowed"},
		{"too large", "image", "image/png", append(append([]byte{}, pngPixel...), make([]byte, 2<<20)...), fiber.StatusRequestEntityTooLarge, "Image is too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := upload(t, app, tt.field, "x.png", tt.contentType, tt.data)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, io.Reader) (string, error) {
	return "", assert.AnError
}

func TestUploadImageStoreFailure(t *testing.T) {
	svc := NewMediaService(failingStore{}, &config.Config{MaxImageSizeMB: 1})
	body, ct := multipartBody(t, "image", "a.png", "image/png", pngPixel)

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, err := svc.UploadImage(context.Background(), primitive.NewObjectID(), req.MultipartForm.File["image"][0])
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewGCSStoreRequiresBucket(t *testing.T) {
	_, err := NewGCSStore(nil, " ", "")
	assert.Error(t, err)

	store, err := NewGCSStore(nil, "langlink-media", "https://cdn.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", store.PublicBaseURL)
}
