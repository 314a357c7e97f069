package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dataroom-service/internal/access"
	"dataroom-service/internal/config"
	miniodb "dataroom-service/internal/database/minio"
	mongodb "dataroom-service/internal/database/mongo"
	redisdb "dataroom-service/internal/database/redis"
	"dataroom-service/internal/events"
	"dataroom-service/internal/handlers"
	"dataroom-service/internal/middleware"
	"dataroom-service/internal/repository"
	"dataroom-service/internal/repository/memory"
	"dataroom-service/internal/seed"
	"dataroom-service/internal/service"
	"dataroom-service/pkg/discovery"
	"dataroom-service/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to a .env file loaded before reading the environment")
	seedFile := pflag.String("seed-file", "", "YAML file of documents upserted by slug at startup")
	port := pflag.String("port", "", "HTTP port, overrides PORT")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	log, err := logger.NewLogger(cfg.Server.Environment, cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, *seedFile, log); err != nil {
		log.Fatal("Service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, seedFile string, log *zap.Logger) error {
	repos, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Optional infrastructure: each piece degrades to "off" when unavailable.
	var (
		cache   service.DocumentCache
		relay   events.Relay
		content service.ContentStore
	)

	redisClient, err := redisdb.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, document cache and realtime relay disabled", zap.Error(err))
	} else if redisClient != nil {
		defer redisClient.Close()
		redisRepo := repository.NewRedisRepo(redisClient)
		cache = repository.NewDocumentCache(redisRepo, cfg.Redis.DocumentCacheTTL)
		relay = events.NewPubSubRelay(redisRepo)
		log.Info("Connected to Redis", zap.String("address", cfg.Redis.Address))
	}

	if cfg.MinIO.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := miniodb.NewContentStore(ctx, &cfg.MinIO, log)
		cancel()
		if err != nil {
			log.Warn("MinIO unavailable, external document content disabled", zap.Error(err))
		} else {
			content = store
		}
	}

	publisher, err := events.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, log)
	if err != nil {
		log.Warn("Failed to initialize event publisher, events will be dropped", zap.Error(err))
		publisher, _ = events.NewEventPublisher("", cfg.RabbitMQ.Exchange, log)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Error closing event publisher", zap.Error(err))
		}
	}()

	policy := access.NewPolicy(cfg.Auth.AdminEmails)
	accessService := service.NewAccessService(repos, policy, publisher, relay, log)
	documentService := service.NewDocumentService(repos, policy, publisher, cache, content, log)
	inviteService := service.NewInviteService(repos, accessService, policy, publisher, service.InviteConfig{
		TTL:           cfg.Invite.TTL,
		PublicBaseURL: cfg.Invite.PublicBaseURL,
	}, log)
	notificationService := service.NewNotificationService(repos, log)

	consumer, err := events.NewNotificationConsumer(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.NotificationQueue, notificationService, log)
	if err != nil {
		log.Warn("Failed to initialize notification consumer", zap.Error(err))
	} else if err := consumer.Start(); err != nil {
		log.Warn("Failed to start notification consumer", zap.Error(err))
		consumer.Close()
	} else {
		defer consumer.Close()
	}

	if seedFile != "" {
		docs, err := seed.Load(seedFile)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		count, err := documentService.Seed(ctx, docs)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to seed documents: %w", err)
		}
		log.Info("Seeded documents", zap.Int("count", count), zap.String("file", seedFile))
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.ServiceName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(recoverer.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.NewAuthenticator(middleware.NewJWTVerifier(cfg.Auth.JWTSecret), cfg.Auth.TrustGatewayHeaders, log).Handler())

	handlers.RegisterSystemRoutes(app, cfg.Server.ServiceName)
	handlers.NewAccessHandler(accessService, log).RegisterRoutes(app)
	handlers.NewInviteHandler(inviteService, log).RegisterRoutes(app)
	handlers.NewDocumentHandler(documentService, log).RegisterRoutes(app)
	handlers.NewNotificationHandler(notificationService, log).RegisterRoutes(app)

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Enabled {
		registry, err = discovery.NewServiceRegistry(cfg, log)
		if err != nil {
			log.Warn("Service discovery unavailable", zap.Error(err))
		} else if err := registry.Register(); err != nil {
			log.Warn("Failed to register with Consul", zap.Error(err))
			registry = nil
		}
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		address := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Info("Starting server", zap.String("address", address), zap.String("store", cfg.Store.Driver))
		listenErr <- app.Listen(address)
	}()

	select {
	case <-shutdownChan:
		log.Info("Shutting down server")
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	}

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Warn("Error deregistering service", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("Error shutting down HTTP server", zap.Error(err))
	}

	log.Info("Server gracefully stopped")
	return nil
}

// openStore returns the repositories for the configured driver and a func
// releasing the underlying connection.
func openStore(cfg *config.Config, log *zap.Logger) (*repository.Repositories, func(), error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("Using in-memory store, data is lost on restart")
		return memory.NewRepositories(), func() {}, nil
	}

	client, db, err := mongodb.Connect(&cfg.MongoDB, log)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	repos, err := repository.NewMongoRepositories(ctx, db, log)
	if err != nil {
		mongodb.Disconnect(client, log)
		return nil, nil, fmt.Errorf("failed to prepare MongoDB: %w", err)
	}
	return repos, func() { mongodb.Disconnect(client, log) }, nil
}
