package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"langlink-api/internal/config"

	"cloud.google.com/go/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ObjectStore persists an uploaded object and returns the URL it is served from.
type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// NewObjectStore picks the backend named by MEDIA_BACKEND.
func NewObjectStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (ObjectStore, error) {
	switch strings.ToLower(cfg.MediaBackend) {
	case "", "local":
		log.Info("media uploads stored on disk", zap.String("path", cfg.FSPath))
		return NewLocalStore(cfg.FSPath, cfg.FSURL)
	case "gcs":
		var opts []option.ClientOption
		if cfg.GCSCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentials))
		}
		client, err := storage.NewClient(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("media: storage.NewClient failed: %w", err)
		}
		lc.Append(fx.StopHook(client.Close))
		log.Info("media uploads stored in GCS", zap.String("bucket", cfg.GCSBucket))
		return NewGCSStore(client, cfg.GCSBucket, cfg.GCSPublicBaseURL)
	default:
		return nil, fmt.Errorf("media: unknown MEDIA_BACKEND %q", cfg.MediaBackend)
	}
}

// LocalStore writes objects under Dir; they are served statically under BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	dst := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return s.BaseURL + "/" + name, nil
}

// GCSStore uploads objects to a bucket readable by the public.
type GCSStore struct {
	Client        *storage.Client
	Bucket        string
	PublicBaseURL string
}

func NewGCSStore(client *storage.Client, bucket, publicBaseURL string) (*GCSStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("media: GCS_BUCKET is empty")
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com"
	}
	return &GCSStore{
		Client:        client,
		Bucket:        bucket,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	w := s.Client.Bucket(s.Bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.PublicBaseURL, s.Bucket, name), nil
}
