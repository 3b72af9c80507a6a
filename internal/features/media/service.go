package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"langlink-api/internal/config"
	"langlink-api/pkg/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const objectPrefix = "langlink"

var (
	ErrNoFile   = errors.New("no file uploaded")
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("image is too large")
)

type MediaService interface {
	UploadImage(ctx context.Context, owner primitive.ObjectID, file *multipart.FileHeader) (string, error)
}

type MediaServiceImpl struct {
	Store  ObjectStore
	Config *config.Config
}

func NewMediaService(store ObjectStore, cfg *config.Config) MediaService {
	return &MediaServiceImpl{Store: store, Config: cfg}
}

func (s *MediaServiceImpl) UploadImage(ctx context.Context, owner primitive.ObjectID, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}
	if limit := int64(s.Config.MaxImageSizeMB) << 20; limit > 0 && file.Size > limit {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return "", ErrNotImage
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// The declared type is client supplied; check the bytes too.
	body := bufio.NewReader(src)
	head, _ := body.Peek(512)
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	url, err := s.Store.Put(ctx, objectName(owner, file.Filename), contentType, body)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return url, nil
}

func objectName(owner primitive.ObjectID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := utils.Slugify(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	name := uuid.NewString()
	if base != "" {
		name += "-" + base
	}
	return fmt.Sprintf("%s/%s/%s%s", objectPrefix, owner.Hex(), name, ext)
}
