package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/eternalmoments/backend/internal/bootstrap"
	"github.com/eternalmoments/backend/internal/config"
	mq "github.com/eternalmoments/backend/internal/infra/queue"
)

// Worker that tails capsule.released events and writes an audit line
// per release. Runs alongside the API server.
func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync() //nolint:errcheck

	conn := do.MustInvoke[*amqp.Connection](inj)
	defer conn.Close()

	consumer, err := mq.NewConsumer(conn, cfg, "capsule-release-audit", "capsule.released", 10, log)
	if err != nil {
		log.Fatal("consumer setup failed", zap.Error(err))
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	log.Info("release audit worker consuming", zap.String("queue", "capsule-release-audit"))
	if err := consumer.Handle(ctx, func(body []byte) error {
		log.Info("capsule released", zap.ByteString("event", body))
		return nil
	}); err != nil && ctx.Err() == nil {
		log.Fatal("consume loop failed", zap.Error(err))
	}
}
