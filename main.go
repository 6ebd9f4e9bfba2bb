package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hotelops/internal/app"
	"hotelops/internal/config"
	"hotelops/internal/infrastructure/clients"
)

func main() {
	log.Init(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	db, err := sqlx.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()

	watermillLogger := log.NewWatermill(logrus.NewEntry(logrus.StandardLogger()))

	a, err := app.NewApp(
		cfg,
		watermillLogger,
		redisClient,
		db,
		clients.NewLogNotifier(),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build application")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("application stopped with error")
	}
}
