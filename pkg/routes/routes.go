package pkg

import (
	"context"
	"net/http"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/application"
	"CareerConnect/internal/auth"
	"CareerConnect/internal/bootstrap"
	"CareerConnect/internal/config"
	"CareerConnect/internal/job"
	"CareerConnect/internal/notification"
	"CareerConnect/internal/profile"
	"CareerConnect/internal/stats"
	"CareerConnect/internal/storage"
	"CareerConnect/pkg/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(
		config.NewServerConfig,
		config.NewAuthConfig,
		config.NewAdminSeed,
		config.NewNotificationConfig,
		config.NewStorageConfig,
		config.NewMongoDBConfig,
		config.NewMongoDBClient,
		config.NewEmailConfig,
		config.NewMailer,
		storage.NewStoreFromConfig,
		access.NewChecker,
		auth.NewTokens,
	),
	fx.Provide(
		fx.Annotate(auth.NewUserRepository,
			fx.As(fx.Self(), new(auth.UserStore), new(notification.RecipientLookup), new(stats.UserCounter))),
		fx.Annotate(profile.NewProfileRepository,
			fx.As(fx.Self(), new(profile.ProfileStore), new(stats.RecruiterCounter), new(job.RecruiterDirectory))),
		fx.Annotate(job.NewJobRepository,
			fx.As(fx.Self(), new(job.JobStore), new(application.JobLookup), new(stats.JobCounter))),
		fx.Annotate(application.NewApplicationRepository,
			fx.As(fx.Self(), new(application.ApplicationStore), new(stats.ApplicationCounter))),
		fx.Annotate(notification.NewNotificationRepository,
			fx.As(fx.Self(), new(notification.NotificationStore), new(notification.DispatchStore))),
	),
	fx.Provide(
		fx.Annotate(profile.NewProfileService,
			fx.As(fx.Self(), new(auth.ProfileInitializer), new(application.StudentDirectory))),
		fx.Annotate(notification.NewNotificationService,
			fx.As(fx.Self(), new(application.Notifier))),
		auth.NewUserService,
		job.NewJobService,
		application.NewLedgerService,
		stats.NewStatsService,
		notification.NewDispatcher,
	),
	fx.Provide(
		auth.NewAuthHandler,
		profile.NewProfileHandler,
		job.NewJobHandler,
		application.NewApplicationHandler,
		notification.NewNotificationHandler,
		stats.NewStatsHandler,
	),
	fx.Invoke(EnsureIndexes),
	fx.Invoke(SeedAdmin),
	fx.Invoke(notification.StartDispatcher),
	fx.Invoke(RegisterRoutes))

func NewEchoServer(lc fx.Lifecycle, cfg *config.ServerConfig, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger, cfg.Production)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	addr := ":" + cfg.Port
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Server running", zap.String("addr", addr))
			go func() {
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					logger.Fatal("Failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server ...")
			return e.Shutdown(ctx)
		},
	})
	return e
}

// EnsureIndexes creates every collection index before the server accepts traffic.
func EnsureIndexes(lc fx.Lifecycle, users *auth.UserRepository, profiles *profile.ProfileRepository, jobs *job.JobRepository,
	apps *application.ApplicationRepository, notifications *notification.NotificationRepository, cfg *config.NotificationConfig) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, ensure := range []func(context.Context) error{
				users.EnsureIndexes,
				profiles.EnsureIndexes,
				jobs.EnsureIndexes,
				apps.EnsureIndexes,
				func(ctx context.Context) error { return notifications.EnsureIndexes(ctx, cfg.RetentionDays) },
			} {
				if err := ensure(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

func SeedAdmin(lc fx.Lifecycle, users *auth.UserService, seed *config.AdminSeed) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return users.EnsureAdmin(ctx, seed)
		},
	})
}

type Handlers struct {
	fx.In

	Auth         *auth.AuthHandler
	Profile      *profile.ProfileHandler
	Job          *job.JobHandler
	Application  *application.ApplicationHandler
	Notification *notification.NotificationHandler
	Stats        *stats.StatsHandler
	Tokens       *auth.Tokens
	Storage      *config.StorageConfig
	Client       *config.MongoDBClient
	Logger       *zap.Logger
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", healthz(h.Client.Client))
	if h.Storage.Driver == config.StorageDriverLocal {
		e.Static("/uploads", h.Storage.UploadDir)
	}

	api := e.Group("/api")
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/jobs", h.Job.ListJobs)
	api.GET("/jobs/:id", h.Job.GetJob)

	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware(h.Tokens, h.Logger))

	protected.GET("/auth/me", h.Auth.Me)

	protected.GET("/jobs/recruiter/my-jobs", h.Job.MyJobs)
	protected.POST("/jobs", h.Job.CreateJob)
	protected.PUT("/jobs/:id", h.Job.UpdateJob)
	protected.DELETE("/jobs/:id", h.Job.DeleteJob)

	protected.POST("/applications/job/:jobId", h.Application.Apply)
	protected.GET("/applications/student/my-applications", h.Application.MyApplications)
	protected.GET("/applications/job/:jobId/applicants", h.Application.JobApplicants)
	protected.PUT("/applications/:id/status", h.Application.UpdateStatus)

	protected.GET("/notifications", h.Notification.List)
	protected.GET("/notifications/unread-count", h.Notification.UnreadCount)
	protected.PUT("/notifications/:id/read", h.Notification.MarkRead)
	protected.PUT("/notifications/mark-all-read", h.Notification.MarkAllRead)

	protected.GET("/users", h.Auth.ListUsers)
	protected.PUT("/users/:userId", h.Auth.UpdateProfile)
	protected.PUT("/users/:userId/block", h.Auth.BlockUser)
	protected.PUT("/users/:recruiterId/approve", h.Profile.ApproveRecruiter)
	protected.GET("/users/:userId/student-profile", h.Profile.GetStudentProfile)
	protected.PUT("/users/:userId/student-profile", h.Profile.UpdateStudentProfile)
	protected.POST("/users/:userId/student-profile/avatar", h.Profile.UploadAvatar)
	protected.POST("/users/:userId/student-profile/resume", h.Profile.UploadResume)
	protected.PUT("/users/:userId/recruiter-profile", h.Profile.UpdateRecruiterProfile)

	protected.GET("/stats/admin", h.Stats.Admin)
	protected.GET("/stats/recruiter", h.Stats.Recruiter)
	protected.GET("/stats/student", h.Stats.Student)
}

func healthz(client *mongo.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx, nil); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Options assembles the application: logger first, then the echo module.
func Options() fx.Option {
	return fx.Options(
		fx.Provide(bootstrap.NewLogger),
		fx.WithLogger(bootstrap.FxLogger),
		EchoModules,
	)
}
