package chat

import (
	"context"
	"errors"
	"fmt"
)

// ErrProvider matches every failure reported by the chat provider binding.
var ErrProvider = errors.New("chat provider error")

// ProviderError describes a failed provider call.
type ProviderError struct {
	Op     string
	Status int
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("chat provider %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("chat provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ChannelSpec is the initial state of a provider channel.
type ChannelSpec struct {
	Name      string
	Image     string
	Members   []string
	CreatedBy string
}

// ChatUser is the provider-side projection of an account.
type ChatUser struct {
	ID    string
	Name  string
	Image string
}

// ChannelSyncAdapter mirrors group membership into provider channels. The provider is a
// cache of group membership, never the source of truth.
type ChannelSyncAdapter interface {
	CreateChannel(ctx context.Context, channelID string, spec ChannelSpec) (string, error)
	AddMembers(ctx context.Context, channelID string, userIDs []string) error
	RemoveMembers(ctx context.Context, channelID string, userIDs []string) error
}

// UserDirectory keeps provider user profiles in step with accounts.
type UserDirectory interface {
	UpsertUser(ctx context.Context, user ChatUser) error
}

// TokenIssuer mints client tokens for the provider's chat SDK.
type TokenIssuer interface {
	CreateUserToken(userID string) (string, error)
}

// Provider is everything the app needs from the chat provider.
type Provider interface {
	ChannelSyncAdapter
	UserDirectory
	TokenIssuer
}
