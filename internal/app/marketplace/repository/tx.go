package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// gormTxManager реализует TxManager поверх нативных транзакций gorm.
// Транзакционный handle кладется в контекст, репозитории достают его
// через dbFrom - внутри WithinTransaction все операции идут в одном commit.
type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager создает менеджер транзакций для gorm репозиториев
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithinTransaction выполняет fn в одной транзакции.
// Ошибка из fn откатывает все записи - либо обе записи durable, либо ни одной.
func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom возвращает транзакционный handle из контекста если он есть,
// иначе общий пул
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db
}

// active - единый предикат "только активные строки" для всех путей чтения.
// Soft delete реализован булевым флагом, неактивные строки невидимы везде.
func active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
