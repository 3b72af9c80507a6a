package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_api "langlink-api/internal/common/api"
	"langlink-api/internal/config"
	"langlink-api/internal/database"
	"langlink-api/internal/features/audit"
	"langlink-api/internal/features/auth"
	"langlink-api/internal/features/chat"
	"langlink-api/internal/features/group"
	"langlink-api/internal/features/media"
	"langlink-api/internal/features/notification"
	"langlink-api/internal/features/system"
	"langlink-api/internal/features/user"
	"langlink-api/internal/logger"
	"langlink-api/internal/middleware"
	"langlink-api/pkg/utils"

	_ "langlink-api/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Multipart overhead on top of the largest accepted image
		BodyLimit: (cfg.MaxImageSizeMB + 1) << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"message": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	log.Info("registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		log.Debug("setting up route", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	users user.UserRepository,
	groups group.GroupRepository,
	invites group.InviteRepository,
	notifications notification.NotificationRepository,
	log *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				for name, ensure := range map[string]func(context.Context) error{
					"users":         users.EnsureIndexes,
					"groups":        groups.EnsureIndexes,
					"group_invites": invites.EnsureIndexes,
					"notifications": notifications.EnsureIndexes,
				} {
					if err := ensure(ctx); err != nil {
						log.Error("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

// CloseHub drops open sockets before Fiber stops.
func CloseHub(lc fx.Lifecycle, hub *notification.Hub) {
	lc.Append(fx.StopHook(hub.Close))
}

// @title           LangLink API
// @version         1.0
// @description     Language exchange backend: accounts, profiles, chat tokens and study groups.

// @host            localhost:5001
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Chat provider
			chat.NewProvider,
			func(p chat.Provider) chat.ChannelSyncAdapter { return p },
			func(p chat.Provider) chat.UserDirectory { return p },
			func(p chat.Provider) chat.TokenIssuer { return p },

			// Media storage
			media.NewObjectStore,

			// Realtime
			notification.NewHub,

			// Initialize Repository
			audit.NewAuditRepository,
			user.NewUserRepository,
			group.NewGroupRepository,
			group.NewInviteRepository,
			notification.NewNotificationRepository,

			audit.NewAuditService,
			auth.NewAuthService,
			user.NewUserService,
			group.NewGroupService,
			media.NewMediaService,
			notification.NewNotificationService,
			group.NewInviteJanitor,

			// Interface Adapters
			func(s user.UserService) audit.UserFinder { return s },
			func(s notification.NotificationService) group.Notifier { return s },

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			chat.NewChatController,
			group.NewGroupController,
			media.NewMediaController,
			notification.NewNotificationController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(chat.NewChatApi),
			AsRoute(group.NewGroupApi),
			AsRoute(media.NewMediaApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			CloseHub,
			InitializeIndexes,
			group.RegisterInviteJanitor,
		),
	)

	app.Run()
}
