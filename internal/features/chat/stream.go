package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"langlink-api/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// StreamClient talks to the Stream Chat server-side REST API.
type StreamClient struct {
	baseURL     string
	apiKey      string
	apiSecret   []byte
	channelType string
	timeout     time.Duration
	maxRetries  uint64
	newBackOff  func() backoff.BackOff
	log         *zap.Logger
}

// NewProvider returns the Stream binding, or a no-op binding when no API key is configured.
func NewProvider(cfg *config.Config, log *zap.Logger) Provider {
	if cfg.StreamAPIKey == "" || cfg.StreamAPISecret == "" {
		log.Warn("STREAM_API_KEY/STREAM_API_SECRET not set, chat channel sync disabled")
		return &disabledProvider{log: log}
	}
	return NewStreamClient(cfg, log)
}

func NewStreamClient(cfg *config.Config, log *zap.Logger) *StreamClient {
	return &StreamClient{
		baseURL:     cfg.StreamBaseURL,
		apiKey:      cfg.StreamAPIKey,
		apiSecret:   []byte(cfg.StreamAPISecret),
		channelType: cfg.StreamChannelType,
		timeout:     cfg.SyncTimeout,
		maxRetries:  cfg.SyncMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		log: log,
	}
}

type channelData struct {
	Name        string   `json:"name,omitempty"`
	Image       string   `json:"image,omitempty"`
	Members     []string `json:"members"`
	CreatedByID string   `json:"created_by_id"`
}

type channelResponse struct {
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

func (s *StreamClient) CreateChannel(ctx context.Context, channelID string, spec ChannelSpec) (string, error) {
	body, err := s.post(ctx, "create channel", s.channelPath(channelID)+"/query", fiber.Map{
		"data": channelData{
			Name:        spec.Name,
			Image:       spec.Image,
			Members:     spec.Members,
			CreatedByID: spec.CreatedBy,
		},
	})
	if err != nil {
		return "", err
	}

	var resp channelResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Channel.ID != "" {
		return resp.Channel.ID, nil
	}
	return channelID, nil
}

func (s *StreamClient) AddMembers(ctx context.Context, channelID string, userIDs []string) error {
	_, err := s.post(ctx, "add members", s.channelPath(channelID), fiber.Map{"add_members": userIDs})
	return err
}

func (s *StreamClient) RemoveMembers(ctx context.Context, channelID string, userIDs []string) error {
	_, err := s.post(ctx, "remove members", s.channelPath(channelID), fiber.Map{"remove_members": userIDs})
	return err
}

func (s *StreamClient) UpsertUser(ctx context.Context, user ChatUser) error {
	_, err := s.post(ctx, "upsert user", "/users", fiber.Map{
		"users": fiber.Map{
			user.ID: fiber.Map{"id": user.ID, "name": user.Name, "image": user.Image},
		},
	})
	return err
}

func (s *StreamClient) CreateUserToken(userID string) (string, error) {
	if userID == "" {
		return "", &ProviderError{Op: "create token", Err: errors.New("user id is required")}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString(s.apiSecret)
	if err != nil {
		return "", &ProviderError{Op: "create token", Err: err}
	}
	return signed, nil
}

func (s *StreamClient) serverToken() (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"server": true}).SignedString(s.apiSecret)
}

func (s *StreamClient) channelPath(channelID string) string {
	return fmt.Sprintf("/channels/%s/%s", url.PathEscape(s.channelType), url.PathEscape(channelID))
}

// post sends one JSON request, retrying transport failures, 429 and 5xx responses.
func (s *StreamClient) post(ctx context.Context, op, path string, payload interface{}) ([]byte, error) {
	var body []byte
	operation := func() error {
		token, err := s.serverToken()
		if err != nil {
			return backoff.Permanent(&ProviderError{Op: op, Err: err})
		}

		timeout := s.timeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining < timeout {
				timeout = remaining
			}
		}
		if timeout <= 0 {
			return backoff.Permanent(&ProviderError{Op: op, Err: context.DeadlineExceeded})
		}

		agent := fiber.Post(s.baseURL + path)
		agent.QueryString("api_key=" + url.QueryEscape(s.apiKey))
		agent.Set(fiber.HeaderAuthorization, token)
		agent.Set("stream-auth-type", "jwt")
		agent.Timeout(timeout)
		agent.JSON(payload)

		status, respBody, errs := agent.Bytes()
		if len(errs) > 0 {
			return &ProviderError{Op: op, Err: errors.Join(errs...)}
		}
		if status == fiber.StatusTooManyRequests || status >= fiber.StatusInternalServerError {
			return &ProviderError{Op: op, Status: status, Err: errors.New(string(respBody))}
		}
		if status >= fiber.StatusBadRequest {
			return backoff.Permanent(&ProviderError{Op: op, Status: status, Err: errors.New(string(respBody))})
		}
		body = respBody
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		s.log.Debug("retrying chat provider call", zap.String("op", op), zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil && !errors.Is(err, ErrProvider) {
		err = &ProviderError{Op: op, Err: err}
	}
	return body, err
}

// disabledProvider keeps the app usable without provider credentials.
type disabledProvider struct {
	log *zap.Logger
}

func (d *disabledProvider) CreateChannel(_ context.Context, channelID string, _ ChannelSpec) (string, error) {
	d.log.Debug("chat disabled, skipping channel creation", zap.String("channel", channelID))
	return channelID, nil
}

func (d *disabledProvider) AddMembers(_ context.Context, channelID string, userIDs []string) error {
	d.log.Debug("chat disabled, skipping add members", zap.String("channel", channelID), zap.Strings("users", userIDs))
	return nil
}

func (d *disabledProvider) RemoveMembers(_ context.Context, channelID string, userIDs []string) error {
	d.log.Debug("chat disabled, skipping remove members", zap.String("channel", channelID), zap.Strings("users", userIDs))
	return nil
}

func (d *disabledProvider) UpsertUser(context.Context, ChatUser) error {
	return nil
}

func (d *disabledProvider) CreateUserToken(string) (string, error) {
	return "", &ProviderError{Op: "create token", Err: errors.New("chat provider is not configured")}
}
