package auth

import (
	"errors"
	"strings"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError is a rejected request body; MissingFields lists empty required fields.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OnboardingRequest struct {
	FullName         string `json:"fullName"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
	ProfilePic       string `json:"profilePic"`
}

type EditProfileRequest struct {
	OnboardingRequest
	Email              string `json:"email"`
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (r *OnboardingRequest) missingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"fullName", r.FullName},
		{"bio", r.Bio},
		{"nativeLanguage", r.NativeLanguage},
		{"learningLanguage", r.LearningLanguage},
		{"location", r.Location},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
