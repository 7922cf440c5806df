package repository

import (
	"context"
	"errors"
	"strings"

	"omgplace/internal/app/marketplace/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Поля по которым разрешена сортировка order_by.
// Все остальное молча игнорируется, чтобы клиент не управлял SQL напрямую.
var productSortable = map[string]bool{
	"name":       true,
	"price":      true,
	"rating":     true,
	"stock":      true,
	"created_at": true,
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(product).Error
}

// GetByID получает активный товар по ID
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetAll получает все активные товары
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetByCategory получает активные товары категории
func (r *productRepository) GetByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	var products []entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetBySeller получает активный товар принадлежащий продавцу.
// Товар чужого продавца неотличим от отсутствующего.
func (r *productRepository) GetBySeller(ctx context.Context, productID, sellerID uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).
		Where("id = ? AND seller_id = ?", productID, sellerID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Update перезаписывает все изменяемые поля товара (полная перезапись)
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Product{}).
		Scopes(active).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"image_url":   product.ImageURL,
			"stock":       product.Stock,
			"category_id": product.CategoryID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// UpdateRating записывает пересчитанный рейтинг товара
func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Product{}).
		Scopes(active).
		Where("id = ?", id).
		Update("rating", rating)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete мягко удаляет товар
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Product{}).
		Scopes(active).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GetPage возвращает окно активных товаров: предикаты фильтра,
// сортировка order_by и пагинация применяются к одному базовому запросу
func (r *productRepository) GetPage(ctx context.Context, filter entity.ProductFilter, params entity.PageParams) (*entity.ProductPage, error) {
	params.Normalize()

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Product{}).Scopes(active)
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.PriceGTE != nil {
		query = query.Where("price >= ?", *filter.PriceGTE)
	}
	if filter.PriceLTE != nil {
		query = query.Where("price <= ?", *filter.PriceLTE)
	}
	if filter.RatingGT != nil {
		query = query.Where("rating > ?", *filter.RatingGT)
	}
	if filter.RatingLT != nil {
		query = query.Where("rating < ?", *filter.RatingLT)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	query = applyProductOrder(query, filter.OrderBy)

	var items []entity.Product
	err := query.Offset(params.Offset()).Limit(params.Size).Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &entity.ProductPage{
		Items: items,
		Total: total,
		Page:  params.Page,
		Size:  params.Size,
	}, nil
}

// applyProductOrder применяет order_by клаузы вида "price" / "-rating".
// Без order_by сортируем по дате создания, чтобы окно было стабильным.
func applyProductOrder(query *gorm.DB, orderBy []string) *gorm.DB {
	applied := false
	for _, field := range orderBy {
		desc := strings.HasPrefix(field, "-")
		name := strings.TrimPrefix(field, "-")
		if !productSortable[name] {
			continue
		}
		if desc {
			name += " DESC"
		}
		query = query.Order(name)
		applied = true
	}
	if !applied {
		query = query.Order("created_at DESC")
	}
	return query
}

// SearchByName ищет активные товары по подстроке имени без учета регистра
func (r *productRepository) SearchByName(ctx context.Context, name string) ([]entity.Product, error) {
	var products []entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).
		Where("name ILIKE ?", "%"+name+"%").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SearchByPrice ищет активные товары с ценой не выше заданной
func (r *productRepository) SearchByPrice(ctx context.Context, price float64) ([]entity.Product, error) {
	var products []entity.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).Scopes(active).
		Where("price <= ?", price).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetActiveIDs возвращает ID всех активных товаров для фоновой сверки рейтингов
func (r *productRepository) GetActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Product{}).
		Scopes(active).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
