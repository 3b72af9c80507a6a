package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"

	"langlink-api/internal/config"
	"langlink-api/internal/database"
	"langlink-api/internal/features/audit"
	"langlink-api/internal/features/auth"
	"langlink-api/internal/features/chat"
	"langlink-api/internal/features/group"
	"langlink-api/internal/features/notification"
	"langlink-api/internal/features/user"
	"langlink-api/internal/logger"
	"langlink-api/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	usersPath      = "cmd/seed/data/users.json"
	demoGroupName  = "Morning Language Exchange"
	demoGroupImage = "https://robohash.org/langlink-exchange"
)

type seedUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	auth.OnboardingRequest
}

// Seed creates demo learners and one study group whose members joined through invites.
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	userRepo user.UserRepository,
	groupRepo group.GroupRepository,
	inviteRepo group.InviteRepository,
	authService auth.AuthService,
	groupService group.GroupService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx := context.Background()
				utils.SetSecret(cfg.JWTSecret)
				logger.Info("Starting database seeding")

				for name, ensure := range map[string]func(context.Context) error{
					"users":         userRepo.EnsureIndexes,
					"groups":        groupRepo.EnsureIndexes,
					"group_invites": inviteRepo.EnsureIndexes,
				} {
					if err := ensure(ctx); err != nil {
						logger.Fatal("Failed to ensure indexes", zap.String("collection", name), zap.Error(err))
					}
				}

				b, err := os.ReadFile(usersPath)
				if err != nil {
					logger.Fatal("Failed to read users.json", zap.Error(err))
				}
				var seeds []seedUser
				if err := json.Unmarshal(b, &seeds); err != nil {
					logger.Fatal("Failed to parse users.json", zap.Error(err))
				}

				var ids []primitive.ObjectID
				for _, s := range seeds {
					existing, err := userRepo.FindByEmail(ctx, s.Email)
					if err == nil {
						logger.Info("User exists, skipping", zap.String("email", s.Email))
						ids = append(ids, existing.ID)
						continue
					}
					if !errors.Is(err, user.ErrUserNotFound) {
						logger.Fatal("Failed to look up user", zap.String("email", s.Email), zap.Error(err))
					}

					u, _, err := authService.Signup(ctx, auth.SignupRequest{Email: s.Email, Password: s.Password, FullName: s.FullName})
					if err != nil {
						logger.Error("Failed to create user", zap.String("email", s.Email), zap.Error(err))
						continue
					}
					userCtx := utils.WithClaims(ctx, &utils.UserClaims{UserID: u.ID.Hex()})
					if _, err := authService.Onboard(userCtx, u.ID, s.OnboardingRequest); err != nil {
						logger.Error("Failed to onboard user", zap.String("email", s.Email), zap.Error(err))
					}
					logger.Info("User created", zap.String("email", s.Email))
					ids = append(ids, u.ID)
				}

				if len(ids) < 2 {
					logger.Warn("Not enough users for a demo group")
					return
				}

				owner := ids[0]
				existing, err := groupService.ListGroups(ctx, owner)
				if err != nil {
					logger.Fatal("Failed to list groups", zap.Error(err))
				}
				for _, g := range existing {
					if g.Name == demoGroupName {
						logger.Info("Demo group exists, skipping", zap.String("group", g.ID.Hex()))
						return
					}
				}

				memberIDs := make([]string, 0, len(ids)-1)
				for _, id := range ids[1:] {
					memberIDs = append(memberIDs, id.Hex())
				}
				ownerCtx := utils.WithClaims(ctx, &utils.UserClaims{UserID: owner.Hex()})
				created, err := groupService.CreateGroup(ownerCtx, owner, group.CreateGroupRequest{
					Name:      demoGroupName,
					Image:     demoGroupImage,
					MemberIDs: memberIDs,
				})
				if err != nil {
					logger.Fatal("Failed to create demo group", zap.Error(err))
				}
				logger.Info("Demo group created", zap.String("group", created.ID.Hex()))

				// Everyone but the last invitee accepts so the demo shows a pending invite too.
				for _, id := range ids[1 : len(ids)-1] {
					memberCtx := utils.WithClaims(ctx, &utils.UserClaims{UserID: id.Hex()})
					invites, err := groupService.ListInvites(memberCtx, id)
					if err != nil {
						logger.Error("Failed to list invites", zap.String("user", id.Hex()), zap.Error(err))
						continue
					}
					for _, inv := range invites {
						if inv.Group.ID != created.ID {
							continue
						}
						if _, err := groupService.RespondInvite(memberCtx, id, inv.ID, string(group.InviteStatusAccepted)); err != nil {
							logger.Error("Failed to accept invite", zap.String("invite", inv.ID.Hex()), zap.Error(err))
						}
					}
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			chat.NewProvider,
			func(p chat.Provider) chat.ChannelSyncAdapter { return p },
			func(p chat.Provider) chat.UserDirectory { return p },
			notification.NewHub,
			notification.NewNotificationRepository,
			notification.NewNotificationService,
			func(s notification.NotificationService) group.Notifier { return s },
			user.NewUserRepository,
			user.NewUserService,
			func(s user.UserService) audit.UserFinder { return s },
			audit.NewAuditRepository,
			audit.NewAuditService,
			auth.NewAuthService,
			group.NewGroupRepository,
			group.NewInviteRepository,
			group.NewGroupService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
