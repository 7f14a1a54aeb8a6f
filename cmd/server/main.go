package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"

	"github.com/eternalmoments/backend/internal/bootstrap"
	"github.com/eternalmoments/backend/internal/config"
	"github.com/eternalmoments/backend/internal/modules/handler"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/eternalmoments/backend/internal/router"
	"github.com/eternalmoments/backend/internal/telemetry"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync() //nolint:errcheck

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Warn("tracing setup failed, continuing without it", zap.Error(err))
	} else if tp != nil {
		log.Info("tracing enabled", zap.String("endpoint", cfg.Telemetry.OtlpEndpoint))
	}

	engine := router.NewRouter(router.RouterDeps{
		Config:              cfg,
		Log:                 log,
		AuthClient:          do.MustInvoke[auth.Client](inj),
		UserService:         do.MustInvoke[service.UserService](inj),
		UserHandler:         do.MustInvoke[*handler.UserHandler](inj),
		ProfileHandler:      do.MustInvoke[*handler.ProfileHandler](inj),
		ContactHandler:      do.MustInvoke[*handler.ContactHandler](inj),
		CapsuleHandler:      do.MustInvoke[*handler.CapsuleHandler](inj),
		MemoryHandler:       do.MustInvoke[*handler.MemoryHandler](inj),
		MediaHandler:        do.MustInvoke[*handler.MediaHandler](inj),
		ChatHandler:         do.MustInvoke[*handler.ChatHandler](inj),
		NotificationHandler: do.MustInvoke[*handler.NotificationHandler](inj),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if conn, err := do.Invoke[*amqp.Connection](inj); err == nil && conn != nil {
		_ = conn.Close()
	}
	if rdb, err := do.Invoke[*redis.Client](inj); err == nil && rdb != nil {
		_ = rdb.Close()
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Error("tracing shutdown", zap.Error(err))
	}

	log.Info("bye")
}
