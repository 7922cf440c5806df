package repository

import (
	"context"
	"errors"

	"omgplace/internal/app/marketplace/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create создает новый отзыв
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(review).Error
}

// GetByID получает активный отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var review entity.Review
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// GetAll получает все активные отзывы
func (r *reviewRepository) GetAll(ctx context.Context) ([]entity.Review, error) {
	var reviews []entity.Review
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).Order("comment_date DESC").Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetByProductID получает активные отзывы товара
// Это выборка по которой считается средний рейтинг
func (r *reviewRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	var reviews []entity.Review
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).
		Where("product_id = ?", productID).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// ExistsForUserProduct проверяет наличие активного отзыва пары (user, product)
func (r *reviewRepository) ExistsForUserProduct(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Review{}).
		Scopes(active).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete мягко удаляет отзыв.
// Состояние терминальное: пути реактивации нет.
func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Review{}).
		Scopes(active).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
