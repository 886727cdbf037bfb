package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/config"
	kafkax "github.com/graciacafe/cafe-orders/internal/kafka"
	"github.com/graciacafe/cafe-orders/internal/notify"
	"github.com/graciacafe/cafe-orders/internal/postgres"
	"github.com/graciacafe/cafe-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	engine := &notify.Engine{
		Store:       &cafe.Repo{DB: db},
		Redis:       rdb,
		Push:        notify.LogPusher{},
		ServiceName: cfg.ServiceName + "-notifier",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, cafe.OrderTopics(), cfg.NotifierWorkers)

	go func() {
		log.Info().Str("group", cfg.NotifierGroup).Int("workers", cfg.NotifierWorkers).Msg("notifier consumer started")
		if err := cons.Start(ctx, engine.HandleOrderEvent); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down notifier...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
