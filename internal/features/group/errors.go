package group

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindForbidden
	KindInvalidState
	KindUnsupportedAction
	KindAlreadyMember
	KindInvalidInput
	KindConflict
)

// Error is a validation failure raised by the membership rules.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches on Code so a sentinel matches copies carrying a different message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) withMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg}
}

var (
	ErrGroupNotFound     = &Error{KindNotFound, "group_not_found", "Group not found"}
	ErrInviteNotFound    = &Error{KindNotFound, "invite_not_found", "Invite not found"}
	ErrUserNotFound      = &Error{KindNotFound, "user_not_found", "User not found"}
	ErrNotAdmin          = &Error{KindForbidden, "not_admin", "Only admins can manage members and change group details"}
	ErrNotGroupMember    = &Error{KindForbidden, "not_group_member", "Only members can view this group's activity"}
	ErrCreatorMismatch   = &Error{KindForbidden, "creator_mismatch", "Groups can only be created on your own behalf"}
	ErrNotInvitee        = &Error{KindForbidden, "not_invitee", "Invite is addressed to another user"}
	ErrNotMember         = &Error{KindInvalidState, "not_member", "User is not a member of this group"}
	ErrDuplicatePending  = &Error{KindInvalidState, "duplicate_pending", "User already has a pending invite"}
	ErrAlreadyHandled    = &Error{KindInvalidState, "already_handled", "Invite already handled"}
	ErrUnsupportedAction = &Error{KindUnsupportedAction, "unsupported_action", "Invalid action type"}
	ErrDirectAdd         = &Error{KindUnsupportedAction, "direct_add", "Use invite system to add members."}
	ErrAlreadyMember     = &Error{KindAlreadyMember, "already_member", "User is already in the group"}
	ErrInvalidInput      = &Error{KindInvalidInput, "invalid_input", "Invalid request"}
	ErrVersionConflict   = &Error{KindConflict, "version_conflict", "Group was modified concurrently"}
)

// StatusFor maps an error to the HTTP status and message returned to the client.
func StatusFor(err error) (int, string) {
	var ge *Error
	if !errors.As(err, &ge) {
		return fiber.StatusInternalServerError, "Internal server error"
	}
	switch ge.Kind {
	case KindNotFound:
		return fiber.StatusNotFound, ge.Message
	case KindForbidden:
		return fiber.StatusForbidden, ge.Message
	case KindInvalidState, KindUnsupportedAction, KindAlreadyMember, KindInvalidInput:
		return fiber.StatusBadRequest, ge.Message
	case KindConflict:
		return fiber.StatusConflict, ge.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
