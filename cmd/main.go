package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"omgplace/internal/app/marketplace/config"
	"omgplace/internal/app/marketplace/handler"
	"omgplace/internal/app/marketplace/repository"
	"omgplace/internal/app/marketplace/service"
	"omgplace/internal/app/marketplace/util"
	"omgplace/internal/app/marketplace/worker"
	"omgplace/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("marketplace", cfg.Log.Level)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, "marketplace", cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	// === POSTGRESQL (GORM) ===
	// Основное хранилище: категории, товары, отзывы
	db, err := connectGorm(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	// === POSTGRESQL (PGX POOL) ===
	// Отдельный пул для хранилища пользователей
	userPool, err := connectUserPool(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect user pool to PostgreSQL")
	}
	defer userPool.Close()

	// === MONGODB ===
	// Журнал аудита мутаций
	mongoClient, err := connectMongo(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

	// === REDIS ===
	// Кеш списка активных категорий
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	// === KAFKA ===
	// Отдельные продюсеры на топики товаров и отзывов
	productProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ProductTopic)
	defer productProducer.Close()
	reviewProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ReviewTopic)
	defer reviewProducer.Close()
	logger.Info().
		Str("product_topic", cfg.Kafka.ProductTopic).
		Str("review_topic", cfg.Kafka.ReviewTopic).
		Msg("Initialized Kafka producers")

	// === РЕПОЗИТОРИИ ===
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(userPool)
	auditRepo := repository.NewAuditRepository(mongoClient.Database(cfg.Mongo.Database))
	txManager := repository.NewTxManager(db)

	// === СЕРВИСЫ ===
	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenDuration)
	authService := service.NewAuthService(userRepo, jwtManager)
	categoryService := service.NewCategoryService(categoryRepo, redisClient, auditRepo)
	productService := service.NewProductService(productRepo, categoryRepo, reviewRepo, productProducer, auditRepo)
	reviewService := service.NewReviewService(reviewRepo, productRepo, productService, txManager, reviewProducer, auditRepo)

	// === HTTP ===
	authMiddleware := handler.NewAuthMiddleware(jwtManager)
	authHandler := handler.NewAuthHandler(authService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	productHandler := handler.NewProductHandler(productService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	router := handler.SetupRoutes(authHandler, categoryHandler, productHandler, reviewHandler, authMiddleware)

	// === ФОНОВЫЙ ВОРКЕР ===
	// Периодическая сверка рейтингов активных товаров
	if cfg.Worker.Enabled {
		reconciler := worker.NewRatingReconciler(productRepo, productService)
		if err := reconciler.Start(context.Background(), cfg.Worker.CronSchedule); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start rating reconciler")
		}
		defer reconciler.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Marketplace Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Marketplace Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Marketplace Service stopped gracefully")
}

// connectGorm открывает gorm поверх PostgreSQL с повторными попытками
// При старте в Docker база может быть еще не готова
func connectGorm(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to PostgreSQL, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectUserPool открывает pgx connection pool для хранилища пользователей
func connectUserPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect user pool, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectMongo подключается к MongoDB с повторными попытками
func connectMongo(cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, clientOptions)
		cancel()
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = client.Ping(pingCtx, nil)
			pingCancel()
			if err == nil {
				return client, nil
			}
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
