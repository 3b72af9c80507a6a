package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	common_models "langlink-api/internal/common/models"
	"langlink-api/internal/config"
	"langlink-api/internal/features/audit"
	"langlink-api/internal/features/chat"
	"langlink-api/internal/features/user"
	"langlink-api/internal/logger"
	"langlink-api/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*user.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*user.User, string, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*user.User, error)
	Onboard(ctx context.Context, userID primitive.ObjectID, req OnboardingRequest) (*user.User, error)
	EditProfile(ctx context.Context, userID primitive.ObjectID, req EditProfileRequest) (*user.User, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	ChatUsers    chat.UserDirectory
	AuditService audit.AuditService
	Config       *config.Config
	Log          *zap.Logger
}

func NewAuthService(userRepo user.UserRepository, chatUsers chat.UserDirectory, auditService audit.AuditService, cfg *config.Config, log *zap.Logger) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		ChatUsers:    chatUsers,
		AuditService: auditService,
		Config:       cfg,
		Log:          log.Named("auth"),
	}
}

func (s *AuthServiceImpl) Signup(ctx context.Context, req SignupRequest) (*user.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || req.Password == "" || fullName == "" {
		return nil, "", invalid("All fields are required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", invalid(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if !emailPattern.MatchString(email) {
		return nil, "", invalid("Invalid email format")
	}

	if _, err := s.UserRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", invalid(user.ErrEmailTaken.Error())
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	newUser := &user.User{
		ID:         primitive.NewObjectID(),
		Email:      email,
		FullName:   fullName,
		Password:   string(hash),
		ProfilePic: fmt.Sprintf("https://robohash.org/%d.png", rand.Intn(100)+1),
	}
	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, "", invalid(err.Error())
		}
		return nil, "", err
	}

	s.syncChatUser(ctx, newUser)
	ctx = utils.WithClaims(ctx, &utils.UserClaims{UserID: newUser.ID.Hex()})
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "users", newUser.ID.Hex(), map[string]common_models.Change{
		"email": {New: newUser.Email},
	})

	token, err := utils.GenerateToken(newUser.ID)
	if err != nil {
		return nil, "", err
	}
	return newUser, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req LoginRequest) (*user.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", invalid("All fields are required")
	}

	found, err := s.UserRepo.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(req.Password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	ctx = utils.WithClaims(ctx, &utils.UserClaims{UserID: found.ID.Hex()})
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "users", found.ID.Hex(), nil)

	token, err := utils.GenerateToken(found.ID)
	if err != nil {
		return nil, "", err
	}
	return found, token, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID primitive.ObjectID) (*user.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) Onboard(ctx context.Context, userID primitive.ObjectID, req OnboardingRequest) (*user.User, error) {
	if missing := req.missingFields(); len(missing) > 0 {
		return nil, &ValidationError{Message: "All fields are required", MissingFields: missing}
	}

	current, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfile(current, req)
	current.IsOnboarded = true
	if err := s.UserRepo.Update(ctx, current); err != nil {
		return nil, err
	}

	s.syncChatUser(ctx, current)
	return current, nil
}

func (s *AuthServiceImpl) EditProfile(ctx context.Context, userID primitive.ObjectID, req EditProfileRequest) (*user.User, error) {
	if missing := req.missingFields(); len(missing) > 0 {
		return nil, &ValidationError{Message: "All required fields must be filled", MissingFields: missing}
	}

	current, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := *current

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != current.Email {
		if !emailPattern.MatchString(email) {
			return nil, invalid("Invalid email format")
		}
		if _, err := s.UserRepo.FindByEmail(ctx, email); err == nil {
			return nil, invalid("Email already in use")
		} else if !errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		current.Email = email
	}

	if req.NewPassword != "" {
		if req.OldPassword == "" || req.ConfirmNewPassword == "" {
			return nil, invalid("Password fields are incomplete")
		}
		if bcrypt.CompareHashAndPassword([]byte(current.Password), []byte(req.OldPassword)) != nil {
			return nil, invalid("Incorrect old password")
		}
		if req.NewPassword != req.ConfirmNewPassword {
			return nil, invalid("New passwords do not match")
		}
		if len(req.NewPassword) < minPasswordLength {
			return nil, invalid(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		current.Password = string(hash)
	}

	applyProfile(current, req.OnboardingRequest)
	if err := s.UserRepo.Update(ctx, current); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, invalid("Email already in use")
		}
		return nil, err
	}

	s.syncChatUser(ctx, current)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionProfile, "users", current.ID.Hex(), profileChanges(&before, current))
	return current, nil
}

func applyProfile(u *user.User, req OnboardingRequest) {
	u.FullName = strings.TrimSpace(req.FullName)
	u.Bio = strings.TrimSpace(req.Bio)
	u.NativeLanguage = strings.TrimSpace(req.NativeLanguage)
	u.LearningLanguage = strings.TrimSpace(req.LearningLanguage)
	u.Location = strings.TrimSpace(req.Location)
	if pic := strings.TrimSpace(req.ProfilePic); pic != "" {
		u.ProfilePic = pic
	}
}

func profileChanges(before, after *user.User) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	add := func(field, from, to string) {
		if from != to {
			changes[field] = common_models.Change{Old: from, New: to}
		}
	}
	add("email", before.Email, after.Email)
	add("fullName", before.FullName, after.FullName)
	add("bio", before.Bio, after.Bio)
	add("nativeLanguage", before.NativeLanguage, after.NativeLanguage)
	add("learningLanguage", before.LearningLanguage, after.LearningLanguage)
	add("location", before.Location, after.Location)
	add("profilePic", before.ProfilePic, after.ProfilePic)
	if before.Password != after.Password {
		changes["password"] = common_models.Change{Old: "***", New: "***"}
	}
	return changes
}

// syncChatUser mirrors the profile into the chat provider; failures only get logged.
func (s *AuthServiceImpl) syncChatUser(ctx context.Context, u *user.User) {
	syncCtx, cancel := context.WithTimeout(ctx, s.Config.SyncTimeout)
	defer cancel()

	err := s.ChatUsers.UpsertUser(syncCtx, chat.ChatUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Image: u.ProfilePic,
	})
	if err != nil {
		s.Log.Warn("failed to sync chat user", zap.String(logger.FieldUserID, u.ID.Hex()), zap.Error(err))
	}
}
