package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/graciacafe/cafe-orders/internal/cafe"
	"github.com/graciacafe/cafe-orders/internal/config"
	"github.com/graciacafe/cafe-orders/internal/httpx"
	kafkax "github.com/graciacafe/cafe-orders/internal/kafka"
	"github.com/graciacafe/cafe-orders/internal/migrations"
	"github.com/graciacafe/cafe-orders/internal/notify"
	"github.com/graciacafe/cafe-orders/internal/postgres"
	"github.com/graciacafe/cafe-orders/internal/realtime"
	"github.com/graciacafe/cafe-orders/internal/redisx"
	"github.com/graciacafe/cafe-orders/internal/stats"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// migrasi dulu lewat database/sql, baru pool pgx untuk runtime
	mdb, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open db for migrations")
	}
	if err := migrations.Run(mdb); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	_ = mdb.Close()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// satu producer per topic event order
	producers := map[string]*kafkax.Producer{}
	for _, topic := range cafe.OrderTopics() {
		p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024)
		p.Start(ctx)
		producers[topic] = p
	}

	repo := &cafe.Repo{DB: db}
	svc := &cafe.Service{
		Store:       repo,
		Events:      &notify.Publisher{Producers: producers, Redis: rdb},
		ServiceName: cfg.ServiceName,
	}

	hub := realtime.NewHub()
	go func() {
		if err := hub.Run(ctx, rdb); err != nil {
			log.Error().Err(err).Msg("realtime hub exit")
		}
	}()

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Service: svc, Repo: repo, Redis: rdb, JWTSecret: cfg.JWTSecret}).Register(router)
	(&httpx.NotificationsHandler{Repo: repo, JWTSecret: cfg.JWTSecret}).Register(router)
	(&httpx.StatsHandler{Aggregator: &stats.Aggregator{Source: repo}, JWTSecret: cfg.JWTSecret}).Register(router)
	(&httpx.WSHandler{Hub: hub, Service: svc, JWTSecret: cfg.JWTSecret}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range producers {
		p.Close() // tutup inbox -> flush & close writer
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed() // drain
	}
}
