package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eternalmoments/backend/internal/config"
	"github.com/eternalmoments/backend/internal/infra/ai"
	"github.com/eternalmoments/backend/internal/infra/blob"
	"github.com/eternalmoments/backend/internal/infra/cache"
	"github.com/eternalmoments/backend/internal/infra/db"
	"github.com/eternalmoments/backend/internal/infra/logger"
	"github.com/eternalmoments/backend/internal/infra/mail"
	mq "github.com/eternalmoments/backend/internal/infra/queue"
	"github.com/eternalmoments/backend/internal/infra/sms"
	"github.com/eternalmoments/backend/internal/modules/handler"
	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/eternalmoments/backend/internal/modules/service"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		gdb, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			_ = gdb.AutoMigrate(
				&model.User{},
				&model.Profile{},
				&model.Contact{},
				&model.Capsule{},
				&model.Memory{},
				&model.MediaAsset{},
				&model.CapsuleMedia{},
				&model.MemoryMedia{},
				&model.ScheduledNotification{},
				&model.ChatMessage{},
			)
		}
		if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
			_ = db.RegisterOpenTelemetryPlugin(gdb)
		}
		return gdb, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
			_ = cache.RegisterOpenTelemetryPlugin(rdb)
		}
		return rdb, nil
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return mq.NewDialFunc(cfg), nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		conn := do.MustInvoke[*amqp.Connection](i)
		log := do.MustInvoke[*zap.Logger](i)
		cfg := do.MustInvoke[*config.Config](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// Supabase auth
	do.Provide(inj, func(i *do.Injector) (auth.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := auth.New("", cfg.Auth.SupabaseKey)
		if cfg.Auth.SupabaseURL != "" {
			client = client.WithCustomAuthURL(cfg.Auth.SupabaseURL)
		}
		return client, nil
	})

	// Outbound clients
	do.Provide(inj, func(i *do.Injector) (*ai.OpenAIClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return ai.NewOpenAIClient(cfg), nil
	})
	do.Provide(inj, func(i *do.Injector) (*mail.SendGridSender, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return mail.NewSendGridSender(cfg), nil
	})
	do.Provide(inj, func(i *do.Injector) (*sms.TwilioSender, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return sms.NewTwilioSender(cfg), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProfileRepo, error) {
		return repo.NewProfileRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ContactRepo, error) {
		return repo.NewContactRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.MediaRepo, error) {
		return repo.NewMediaRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.CapsuleRepo, error) {
		return repo.NewCapsuleRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.MemoryRepo, error) {
		return repo.NewMemoryRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.NotificationRepo, error) {
		return repo.NewNotificationRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ChatRepo, error) {
		return repo.NewChatRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.MediaService, error) {
		return service.NewMediaService(
			do.MustInvoke[repo.MediaRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.CapsuleService, error) {
		return service.NewCapsuleService(
			do.MustInvoke[repo.CapsuleRepo](i),
			do.MustInvoke[service.MediaService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MemoryService, error) {
		return service.NewMemoryService(
			do.MustInvoke[repo.MemoryRepo](i),
			do.MustInvoke[service.MediaService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.NotificationService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewNotificationService(
			do.MustInvoke[repo.NotificationRepo](i),
			do.MustInvoke[repo.CapsuleRepo](i),
			do.MustInvoke[repo.MediaRepo](i),
			do.MustInvoke[*mail.SendGridSender](i),
			do.MustInvoke[*sms.TwilioSender](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*zap.Logger](i),
			cfg.Notify.DetailsBaseURL,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ChatService, error) {
		return service.NewChatService(
			do.MustInvoke[repo.ChatRepo](i),
			do.MustInvoke[repo.ProfileRepo](i),
			do.MustInvoke[*ai.OpenAIClient](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProfileService, error) {
		return service.NewProfileService(do.MustInvoke[repo.ProfileRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ContactService, error) {
		return service.NewContactService(do.MustInvoke[repo.ContactRepo](i)), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProfileHandler, error) {
		return handler.NewProfileHandler(do.MustInvoke[service.ProfileService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ContactHandler, error) {
		return handler.NewContactHandler(do.MustInvoke[service.ContactService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.CapsuleHandler, error) {
		return handler.NewCapsuleHandler(do.MustInvoke[service.CapsuleService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MemoryHandler, error) {
		return handler.NewMemoryHandler(do.MustInvoke[service.MemoryService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MediaHandler, error) {
		return handler.NewMediaHandler(do.MustInvoke[service.MediaService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ChatHandler, error) {
		return handler.NewChatHandler(do.MustInvoke[service.ChatService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.NotificationHandler, error) {
		return handler.NewNotificationHandler(do.MustInvoke[service.NotificationService](i)), nil
	})

	return inj
}
