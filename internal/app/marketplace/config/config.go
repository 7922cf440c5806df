package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки приложения Marketplace
// Включает конфигурацию для HTTP сервера, PostgreSQL, MongoDB, Redis, Kafka, JWT и воркера
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Worker   WorkerConfig
	Log      LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Хранит категории, товары, отзывы и пользователей
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MongoConfig - настройки MongoDB для журнала аудита
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig - настройки Redis для кеширования списка категорий
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для отправки доменных событий
type KafkaConfig struct {
	Brokers      []string
	ProductTopic string // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ReviewTopic  string // REVIEW_CREATED, REVIEW_DELETED
}

// JWTConfig - настройки выдачи и проверки JWT токенов
type JWTConfig struct {
	Secret              string
	AccessTokenDuration time.Duration
}

// WorkerConfig - настройки фонового воркера сверки рейтингов
type WorkerConfig struct {
	Enabled      bool
	CronSchedule string // cron-выражение, по умолчанию раз в час
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level        string
	LogstashAddr string // опционально, пустая строка отключает отправку в Logstash
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	accessDuration, err := time.ParseDuration(getEnv("JWT_ACCESS_DURATION", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_DURATION: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "marketplace"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "marketplace"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ProductTopic: getEnv("KAFKA_PRODUCT_TOPIC", "product_events"),
			ReviewTopic:  getEnv("KAFKA_REVIEW_TOPIC", "review_events"),
		},
		JWT: JWTConfig{
			Secret:              getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AccessTokenDuration: accessDuration,
		},
		Worker: WorkerConfig{
			Enabled:      getEnvBool("WORKER_ENABLED", true),
			CronSchedule: getEnv("WORKER_CRON_SCHEDULE", "0 * * * *"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает значение переменной окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool получает значение переменной окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
