package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a persisted copy of a realtime event so clients that were
// offline can catch up.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Event     string             `bson:"event" json:"event"`
	Title     string             `bson:"title" json:"title"`
	Data      interface{}        `bson:"data,omitempty" json:"data,omitempty"`
	IsRead    bool               `bson:"is_read" json:"isRead"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"readAt,omitempty"`
}

// Message is the frame written to connected sockets.
type Message struct {
	ID    string      `json:"id,omitempty"`
	Event string      `json:"event"`
	Title string      `json:"title,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	At    time.Time   `json:"at"`
}

var titles = map[string]string{
	"group.invite.received":  "You have been invited to a group",
	"group.invite.responded": "Your group invite was answered",
	"group.member.removed":   "You were removed from a group",
}

func titleFor(event string) string {
	if t, ok := titles[event]; ok {
		return t
	}
	return event
}
