package repository

import (
	"context"
	"errors"

	"omgplace/internal/app/marketplace/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(category).Error
}

// GetByID получает активную категорию по ID
// Неактивные категории невидимы для всех lookup-ов
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetAll получает все активные категории отсортированные по имени
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Update перезаписывает изменяемые поля категории (полная перезапись, не merge)
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Category{}).
		Scopes(active).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":      category.Name,
			"parent_id": category.ParentID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete мягко удаляет категорию: строка остается, is_active = false.
// Повторное удаление попадает в RowsAffected == 0 и снова дает not found.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Category{}).
		Scopes(active).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// GetPage возвращает окно активных категорий с примененными фильтрами
// и общим количеством строк под фильтром
func (r *categoryRepository) GetPage(ctx context.Context, filter entity.CategoryFilter, params entity.PageParams) (*entity.CategoryPage, error) {
	params.Normalize()

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Category{}).Scopes(active)
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []entity.Category
	err := query.Order("name ASC").Offset(params.Offset()).Limit(params.Size).Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &entity.CategoryPage{
		Items: items,
		Total: total,
		Page:  params.Page,
		Size:  params.Size,
	}, nil
}
