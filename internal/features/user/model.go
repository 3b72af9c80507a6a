package user

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already exists, please use a different email")
)

// User is a learner account.
type User struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email            string             `json:"email" bson:"email"`
	FullName         string             `json:"fullName" bson:"full_name"`
	Password         string             `json:"-" bson:"password"` // bcrypt hash
	Bio              string             `json:"bio" bson:"bio"`
	ProfilePic       string             `json:"profilePic" bson:"profile_pic"`
	NativeLanguage   string             `json:"nativeLanguage" bson:"native_language"`
	LearningLanguage string             `json:"learningLanguage" bson:"learning_language"`
	Location         string             `json:"location" bson:"location"`
	IsOnboarded      bool               `json:"isOnboarded" bson:"is_onboarded"`
	CreatedAt        time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Summary is the slice of a user embedded into group and invite responses.
type Summary struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	FullName   string             `json:"fullName" bson:"full_name"`
	ProfilePic string             `json:"profilePic" bson:"profile_pic"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}
