package main

import (
	"context"
	"log"

	"pickleradar/cmd"
	"pickleradar/internal/data/repository"
	"pickleradar/internal/notify"
	"pickleradar/internal/wire"
	"pickleradar/pkg/cache"
	"pickleradar/pkg/database"
	"pickleradar/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Optional: court name lookups fall back to the database without it.
	rdb := cache.NewRedisClient(config.Redis)
	if rdb == nil {
		logger.Warn("Redis unavailable, court name cache disabled")
	} else {
		defer rdb.Close()
	}

	repos := repository.NewRepository(db, rdb, logger)

	dispatcher := notify.NewAMQPDispatcher(config.AMQP.URL, logger)
	defer dispatcher.Close()

	// Background worker for reminder and friend fan-out delivery.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	consumer := notify.NewConsumer(config.AMQP.URL, repos.Friend, logger)
	consumer.Run(consumerCtx)

	app := wire.Wiring(repos, dispatcher, config, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
