package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockedGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestTxManager_CommitsBothWrites(t *testing.T) {
	// Arrange
	db, mock := newMockedGorm(t)
	txManager := NewTxManager(db)
	reviewRepo := NewReviewRepository(db)
	productRepo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reviews" SET "is_active"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "rating"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := txManager.WithinTransaction(context.Background(), func(txCtx context.Context) error {
		if err := reviewRepo.Delete(txCtx, uuid.New()); err != nil {
			return err
		}
		return productRepo.UpdateRating(txCtx, uuid.New(), 0.0)
	})

	// Assert
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	// Arrange
	// Сбой второго шага откатывает первый: рейтинг и отзывы
	// не могут разойтись из-за частичной записи
	db, mock := newMockedGorm(t)
	txManager := NewTxManager(db)
	reviewRepo := NewReviewRepository(db)
	productRepo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reviews" SET "is_active"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "rating"=$1`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	// Act
	err := txManager.WithinTransaction(context.Background(), func(txCtx context.Context) error {
		if err := reviewRepo.Delete(txCtx, uuid.New()); err != nil {
			return err
		}
		return productRepo.UpdateRating(txCtx, uuid.New(), 0.0)
	})

	// Assert
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDbFrom_FallsBackToPool(t *testing.T) {
	// Arrange
	db, _ := newMockedGorm(t)

	// Act
	got := dbFrom(context.Background(), db)

	// Assert
	assert.Equal(t, db, got)
}
