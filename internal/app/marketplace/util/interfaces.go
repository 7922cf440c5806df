package util

import (
	"context"
	"time"

	"omgplace/internal/app/marketplace/entity"
)

// CategoryCache интерфейс кеша категорий
// Нужен для dependency injection и моков в тестах
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
