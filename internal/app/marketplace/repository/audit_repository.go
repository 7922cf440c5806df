package repository

import (
	"context"
	"fmt"
	"time"

	"omgplace/internal/app/marketplace/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"omgplace/pkg/logger"
)

type auditRepository struct {
	collection *mongo.Collection
}

// NewAuditRepository создает журнал изменений в MongoDB.
// Индекс по (entity, entity_id) для выборки истории конкретной сущности.
func NewAuditRepository(db *mongo.Database) AuditRepository {
	collection := db.Collection("audit_log")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "entity", Value: 1},
			{Key: "entity_id", Value: 1},
		},
		Options: options.Index().SetName("entity_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("failed to create audit_log index")
	}

	return &auditRepository{collection: collection}
}

// Insert добавляет запись в журнал
func (r *auditRepository) Insert(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}
