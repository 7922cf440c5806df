package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/repository"
	"omgplace/internal/app/marketplace/util"
	"omgplace/pkg/logger"
	"omgplace/pkg/metrics"

	"github.com/google/uuid"
)

// ProductService обрабатывает бизнес-логику товаров.
// Здесь же живет пересчет рейтинга - единственная точка синхронизации
// поля rating с множеством активных отзывов.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	reviewRepo   repository.ReviewRepository
	publisher    util.MessagePublisher
	audit        repository.AuditRepository
}

// NewProductService создает новый сервис товаров с внедрением зависимостей
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	reviewRepo repository.ReviewRepository,
	publisher util.MessagePublisher,
	audit repository.AuditRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
		publisher:    publisher,
		audit:        audit,
	}
}

// CreateProduct создает новый товар
// Только seller и admin; категория обязана существовать и быть активной
func (s *ProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest, user entity.AuthUser) (*entity.Product, error) {
	if !user.Role.CanSell() {
		return nil, ErrAccessDenied
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		SellerID:    user.ID,
		Rating:      0, // рейтинг производный, у нового товара отзывов нет
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductsCreated.Inc()
	s.publishProductEvent(ctx, "PRODUCT_CREATED", product)
	s.writeAudit(ctx, product.ID, "create", user.ID)

	return product, nil
}

// FindActiveProduct находит активный товар
func (s *ProductService) FindActiveProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// FindProductsByCategory возвращает активные товары категории.
// Отсутствующая категория и категория без товаров - разные ошибки.
func (s *ProductService) FindProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	products, err := s.productRepo.GetByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by category: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}

	return products, nil
}

// GetFilteredProducts возвращает окно активных товаров
// с предикатами фильтра, сортировкой и пагинацией
func (s *ProductService) GetFilteredProducts(ctx context.Context, filter entity.ProductFilter, params entity.PageParams) (*entity.ProductPage, error) {
	page, err := s.productRepo.GetPage(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get products page: %w", err)
	}
	return page, nil
}

// GetProductBySearch выполняет два независимых подпоиска: по подстроке имени
// и по потолку цены. Каждый пустой результат фатален. Результаты
// конкатенируются без дедупликации - поведение исходной системы сохранено.
func (s *ProductService) GetProductBySearch(ctx context.Context, name string, price float64) ([]entity.Product, error) {
	byName, err := s.productRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name: %w", err)
	}
	if len(byName) == 0 {
		return nil, ErrProductNotFound
	}

	byPrice, err := s.productRepo.SearchByPrice(ctx, price)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by price: %w", err)
	}
	if len(byPrice) == 0 {
		return nil, ErrProductNotFound
	}

	return append(byName, byPrice...), nil
}

// GetProductByOwner возвращает товар если он принадлежит пользователю
func (s *ProductService) GetProductByOwner(ctx context.Context, productID uuid.UUID, user entity.AuthUser) (*entity.Product, error) {
	product, err := s.productRepo.GetBySeller(ctx, productID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductOwnership
		}
		return nil, fmt.Errorf("failed to get product by owner: %w", err)
	}
	return product, nil
}

// UpdateProduct обновляет товар: существование -> владение -> категория.
// Полная перезапись полей, после записи строка перечитывается.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest, user entity.AuthUser) (*entity.Product, error) {
	product, err := s.FindActiveProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(product, user); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.ImageURL = req.ImageURL
	product.Stock = req.Stock
	product.CategoryID = req.CategoryID

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Перечитываем обновленную строку из БД
	updated, err := s.FindActiveProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishProductEvent(ctx, "PRODUCT_UPDATED", updated)
	s.writeAudit(ctx, updated.ID, "update", user.ID)

	return updated, nil
}

// DeleteProduct мягко удаляет товар с теми же проверками что и update
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID, user entity.AuthUser) error {
	product, err := s.FindActiveProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.checkOwnership(product, user); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_DELETED", product)
	s.writeAudit(ctx, id, "delete", user.ID)

	return nil
}

// CalculateAvgRating считает средний рейтинг товара по активным отзывам.
// Ноль отзывов - это рейтинг 0.0, а не ошибка. Среднее округляется
// до 2 знаков, поэтому результат не зависит от порядка вставки отзывов.
func (s *ProductService) CalculateAvgRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to get product: %w", err)
	}

	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to get reviews: %w", err)
	}
	if len(reviews) == 0 {
		return 0.0, nil
	}

	total := 0
	for _, rev := range reviews {
		total += rev.Grade
	}
	avg := float64(total) / float64(len(reviews))

	return math.Round(avg*100) / 100, nil
}

// PushProductRating пересчитывает рейтинг и записывает его в товар.
// Вызывается после каждого создания и удаления отзыва (внутри той же
// транзакции) и фоновым воркером сверки.
func (s *ProductService) PushProductRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	rating, err := s.CalculateAvgRating(ctx, productID)
	if err != nil {
		return 0, err
	}

	if err := s.productRepo.UpdateRating(ctx, productID, rating); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to update product rating: %w", err)
	}

	metrics.RatingPushes.Inc()
	return rating, nil
}

// publishProductEvent отправляет событие о товаре в Kafka
// Товар уже записан, проблемы с Kafka не критичны для основной операции
func (s *ProductService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType: eventType,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Rating:    product.Rating,
		SellerID:  product.SellerID,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal product event")
		return
	}

	// Ключ - ProductID для сохранения порядка событий одного товара
	if err := s.publisher.PublishMessage(ctx, event.ProductID.String(), eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish product event")
	}
}

func (s *ProductService) checkOwnership(product *entity.Product, user entity.AuthUser) error {
	// Админ может изменять любые товары
	if user.Role.CanModerate() {
		return nil
	}
	if product.SellerID != user.ID {
		return ErrProductOwnership
	}
	return nil
}

func (s *ProductService) writeAudit(ctx context.Context, id uuid.UUID, action string, actorID uuid.UUID) {
	entry := &entity.AuditEntry{
		Entity:    "product",
		EntityID:  id.String(),
		Action:    action,
		ActorID:   actorID.String(),
		Timestamp: time.Now(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("product_id", id.String()).Msg("failed to write audit entry")
	}
}
