package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"

	"github.com/eternalmoments/backend/internal/config"
	"github.com/eternalmoments/backend/internal/middleware"
	"github.com/eternalmoments/backend/internal/modules/handler"
	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
)

type RouterDeps struct {
	Config              *config.Config
	Log                 *zap.Logger
	AuthClient          auth.Client
	UserService         service.UserService
	UserHandler         *handler.UserHandler
	ProfileHandler      *handler.ProfileHandler
	ContactHandler      *handler.ContactHandler
	CapsuleHandler      *handler.CapsuleHandler
	MemoryHandler       *handler.MemoryHandler
	MediaHandler        *handler.MediaHandler
	ChatHandler         *handler.ChatHandler
	NotificationHandler *handler.NotificationHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// Cron-only surface, guarded by the shared secret instead of user
	// auth.
	r.POST("/run-scheduled-notifications",
		middleware.CronAuth(d.Config.Auth.CronSecret),
		d.NotificationHandler.RunScheduledNotifications)

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.UserAuth(d.AuthClient, d.UserService))

		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		// UserAuth already resolved (or created) the user row, so the
		// get-or-create surface just echoes the principal back.
		v1.POST("/users", d.UserHandler.Me)
		v1.GET("/me", d.UserHandler.Me)
		v1.POST("/avatar-upload", d.UserHandler.UploadAvatar)

		profiles := v1.Group("/profiles")
		{
			profiles.GET("", d.ProfileHandler.ListProfiles)
			profiles.POST("", d.ProfileHandler.CreateProfile)
			profiles.GET("/:profile_id", d.ProfileHandler.GetProfile)
		}

		contacts := v1.Group("/contacts")
		{
			contacts.GET("", d.ContactHandler.ListContacts)
			contacts.POST("", d.ContactHandler.CreateContact)
		}

		capsules := v1.Group("/capsules")
		{
			capsules.GET("", d.CapsuleHandler.ListCapsules)
			capsules.POST("", d.CapsuleHandler.CreateCapsule)
			capsules.GET("/:capsule_id", d.CapsuleHandler.GetCapsule)
			capsules.PUT("/:capsule_id", d.CapsuleHandler.UpdateCapsule)
		}

		memories := v1.Group("/memories")
		{
			memories.GET("", d.MemoryHandler.ListMemories)
			memories.POST("", d.MemoryHandler.CreateMemory)
			memories.PUT("/:memory_id", d.MemoryHandler.UpdateMemory)
		}

		mediaBank := v1.Group("/media-bank")
		{
			mediaBank.GET("", d.MediaHandler.ListMedia)
			mediaBank.POST("", d.MediaHandler.UploadMedia)
		}

		v1.POST("/chat", d.ChatHandler.Chat)

		v1.POST("/send-notification", d.NotificationHandler.ScheduleNotification)
	}
	return r
}
