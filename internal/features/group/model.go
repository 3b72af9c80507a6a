package group

import (
	"time"

	"langlink-api/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a named set of learners sharing one chat channel.
type Group struct {
	ID              primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Image           string               `json:"image" bson:"image"`
	Members         []primitive.ObjectID `json:"members" bson:"members"`
	Admins          []primitive.ObjectID `json:"admins" bson:"admins"`
	StreamChannelID string               `json:"streamChannelId" bson:"stream_channel_id"`
	Version         int64                `json:"version" bson:"version"` // bumped on every write
	CreatedAt       time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updated_at"`
}

func (g *Group) IsMember(id primitive.ObjectID) bool {
	return containsID(g.Members, id)
}

func (g *Group) IsAdmin(id primitive.ObjectID) bool {
	return containsID(g.Admins, id)
}

func (g *Group) clone() *Group {
	cp := *g
	cp.Members = append([]primitive.ObjectID(nil), g.Members...)
	cp.Admins = append([]primitive.ObjectID(nil), g.Admins...)
	return &cp
}

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accept"
	InviteStatusDeclined InviteStatus = "decline"
)

// Invite is an admin's offer of membership to one user.
type Invite struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Group     primitive.ObjectID `json:"group" bson:"group"`
	For       primitive.ObjectID `json:"for" bson:"for"`
	InvitedBy primitive.ObjectID `json:"invitedBy" bson:"invited_by"`
	Status    InviteStatus       `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// GroupView is a group with members and admins resolved to user summaries.
type GroupView struct {
	ID              primitive.ObjectID `json:"_id"`
	Name            string             `json:"name"`
	Image           string             `json:"image"`
	Members         []user.Summary     `json:"members"`
	Admins          []user.Summary     `json:"admins"`
	StreamChannelID string             `json:"streamChannelId"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type InviteGroupSummary struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Image string             `json:"image"`
}

// InviteView is a pending invite as shown to its recipient.
type InviteView struct {
	ID        primitive.ObjectID `json:"_id"`
	Group     InviteGroupSummary `json:"group"`
	For       primitive.ObjectID `json:"for"`
	InvitedBy user.Summary       `json:"invitedBy"`
	Status    InviteStatus       `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	MemberIDs   []string `json:"memberIds"`
	Image       string   `json:"image"`
	CreatedByID string   `json:"createdById"`
}

type MemberActionRequest struct {
	UserID string `json:"userId"`
	Action string `json:"action"`
}

// DetailsPatch carries optional replacements for a group's name and image.
type DetailsPatch struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

type InviteRequest struct {
	UserID string `json:"userId"`
}

type RespondInviteRequest struct {
	Action string `json:"action"`
}

// MemberActionResult is either the updated group or a deletion notice.
type MemberActionResult struct {
	Group   *GroupView
	Deleted bool
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func withoutID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
