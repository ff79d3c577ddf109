package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chat_relay_service/internal/chat/app"
	"chat_relay_service/internal/chat/repository"
	"chat_relay_service/internal/chat/router"
	"chat_relay_service/pkg/config"
	"chat_relay_service/pkg/database"
	"chat_relay_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	env := config.LoadEnv()
	cfg, err := config.LoadConfig(env.ServiceName, env.YAMLPath)
	if err != nil {
		logger.Initialize(env.ServiceName, env.LogPath).Fatal("load config failed", zap.Error(err))
	}

	logDir := cfg.LogPath
	if env.LogPath != "" {
		logDir = env.LogPath
	}
	logger.Log = logger.Initialize(env.ServiceName, logDir)
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. message store
	var msgRepo repository.MessageRepository
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Log.Warn("using in-memory message store, history is lost on restart")
		msgRepo = repository.NewMemoryMessageRepository()
	default:
		mongo, err := database.NewMongoDB(ctx,
			database.Connection{
				ConnectStr:    cfg.MongoDB.URI,
				RetryCount:    cfg.MongoDB.RetryCount,
				RetryInterval: cfg.MongoDB.RetryInterval,
			},
			cfg.MongoDB.Database)
		if err != nil {
			logger.Log.Fatal("Unable to connect to mongoDB database after retries", zap.Error(err))
		}
		defer mongo.Close(context.Background())

		if err := repository.EnsureMessageIndexes(ctx, mongo.Database); err != nil {
			logger.Log.Warn("create message indexes failed", zap.Error(err))
		}
		msgRepo = repository.NewMongoMessageRepository(mongo.Database, cfg.StorageTimeout)
	}

	// 2. optional redis history cache
	if cfg.Redis.Enabled() {
		redisClient, err := database.NewRedisClient(ctx, database.RedisConnection{
			Addr:       cfg.Redis.Addr,
			MasterName: cfg.Redis.MasterName,
			Sentinels:  cfg.Redis.Sentinels,
			DB:         cfg.Redis.RedisDB,
		})
		if err != nil {
			logger.Log.Warn("redis unavailable, history cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			msgRepo = repository.NewRedisHistoryCache(redisClient, msgRepo, cfg.HistoryLimit, cfg.Redis.HistoryTTL)
		}
	}

	// 3. optional kafka message stream
	var publisher repository.MessagePublisher
	if cfg.Kafka.Enabled() {
		writer, err := database.NewKafkaWriterWithRetry(ctx, database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: cfg.Kafka.RetryInterval,
		})
		if err != nil {
			logger.Log.Warn("kafka unavailable, message stream disabled", zap.Error(err))
		} else {
			publisher = repository.NewKafkaMessagePublisher(writer)
			defer publisher.Close()
		}
	}

	// 4. gateway and transport
	gateway := app.NewChatGateway(msgRepo, publisher, app.GatewayOptions{
		HistoryLimit: cfg.HistoryLimit,
	})
	wsHandler := app.NewChatWebsocketHandler(gateway, app.HandlerOptions{
		OutboundBuffer: cfg.OutboundBuffer,
		PingInterval:   cfg.PingInterval,
	})

	r := fiber.New(fiber.Config{DisableStartupMessage: env.IsProduction()})
	r.Use(fiber_log.New())
	router.RegisterRoutes(ctx, r, wsHandler, router.Options{EnablePprof: !env.IsProduction()})

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down chat service")
		if err := r.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			logger.Log.Error("fiber shutdown failed", zap.Error(err))
		}
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Chat Service listening", zap.String("port", port), zap.String("storage", string(cfg.Storage.Driver)))
	if err := r.Listen(port); err != nil {
		logger.Log.Error("Failed to start Fiber", zap.Error(err))
	}
}
