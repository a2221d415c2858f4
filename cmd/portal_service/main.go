package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	apirouter "vendor_chat_portal/internal/api/router"

	"vendor_chat_portal/internal/api/handlers"
	chatapp "vendor_chat_portal/internal/chat/app"
	chatrepo "vendor_chat_portal/internal/chat/repository"
	chatrouter "vendor_chat_portal/internal/chat/router"
	vendorapp "vendor_chat_portal/internal/vendors/app"
	vendordomain "vendor_chat_portal/internal/vendors/domain"
	vendorrepo "vendor_chat_portal/internal/vendors/repository"
	"vendor_chat_portal/pkg/config"
	"vendor_chat_portal/pkg/database"
	"vendor_chat_portal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.PortalService, config.EnvConfig.PortalServiceLogPath)
	cfg := config.LoadConfig[config.Portal](config.EnvConfig.PortalService, config.EnvConfig.PortalServiceYAMLPath)

	ctx := context.Background()

	// PostgreSQL holds the vendor directory
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password,
		cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.PostgreSQL.Host, cfg.PostgreSQL.Port)),
			zap.Error(err),
		)
	}
	defer pgPool.Close()

	// MongoDB holds rooms, messages and typing slots
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    mongoURI,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", mongoURI)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// Redis carries sessions and the realtime pub/sub fanout
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// Kafka event feed is optional, skipped when no brokers are configured
	var events chatapp.EventWriter
	if len(cfg.Kafka.Brokers) > 0 {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal(fmt.Sprintf("connect kafka err : %v", err))
		}
		defer writer.Close()
		events = writer
	}

	vendorRepository := vendorrepo.NewVendorRepository(pgPool)
	sessionRepo := database.NewRedisRepository[vendordomain.Session](redisClient)
	roomRepo := chatrepo.NewMongoRoomRepository(mongo.Database)
	msgRepo := chatrepo.NewMongoMessageRepository(mongo.Database)
	typingRepo := chatrepo.NewMongoTypingRepository(mongo.Database)
	pubSub := chatrepo.NewRedisPubSub(redisClient)

	vendorUC := vendorapp.NewVendorUseCase(vendorRepository, sessionRepo, cfg.SessionTTL, cfg.BaseURL)
	roomUC := chatapp.NewRoomUseCase(roomRepo, vendorRepository, sessionRepo, pubSub, cfg.SessionTTL)
	sendMessageUC := chatapp.NewSendMessageUseCase(roomRepo, msgRepo, pubSub, events)
	typingUC := chatapp.NewTypingUseCase(typingRepo, pubSub)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.PortalServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	apirouter.RegisterRoutes(r,
		handlers.NewAdminHandler(vendorUC),
		handlers.NewVendorHandler(vendorUC, roomUC),
		handlers.NewChatHandler(vendorUC, roomUC),
	)
	chatrouter.RegisterRoutes(r, chatapp.NewChatWebsocketHandler(roomUC, sendMessageUC, typingUC))

	port := ":" + cfg.Port
	log.Printf("Portal Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
