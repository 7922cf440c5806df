package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/repository"
	"omgplace/internal/app/marketplace/util"
	"omgplace/pkg/logger"

	"github.com/google/uuid"
)

const categoriesCacheTTL = time.Hour

// CategoryService обрабатывает бизнес-логику категорий
// Координирует репозиторий, Redis кеш и журнал изменений
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        util.CategoryCache
	audit        repository.AuditRepository
}

// NewCategoryService создает новый сервис категорий с внедрением зависимостей
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	cache util.CategoryCache,
	audit repository.AuditRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        cache,
		audit:        audit,
	}
}

// FindParentCategory находит активную родительскую категорию
func (s *CategoryService) FindParentCategory(ctx context.Context, parentID uuid.UUID) (*entity.Category, error) {
	parent, err := s.categoryRepo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get parent category: %w", err)
	}
	return parent, nil
}

// CreateCategory создает новую категорию
// Если указан parent_id, родитель обязан существовать и быть активным
func (s *CategoryService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	if req.ParentID != nil {
		if _, err := s.FindParentCategory(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &entity.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		ParentID:  req.ParentID,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCache(ctx)
	s.writeAudit(ctx, category.ID, "create")

	return category, nil
}

// UpdateCategory обновляет категорию: полная перезапись изменяемых полей.
// Новый parent_id перепроверяется так же как при создании.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.ParentID != nil {
		if _, err := s.FindParentCategory(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category.Name = req.Name
	category.ParentID = req.ParentID

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCache(ctx)
	s.writeAudit(ctx, category.ID, "update")

	return category, nil
}

// DeleteCategory мягко удаляет категорию.
// Повторное удаление снова дает not found - строка уже неактивна.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCache(ctx)
	s.writeAudit(ctx, id, "delete")

	return nil
}

// GetAllCategories получает все активные категории с кешированием в Redis
// Сначала проверяет кеш, при промахе загружает из БД и кеширует
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// GetPaginatedCategories возвращает отфильтрованное/пагинированное окно категорий
func (s *CategoryService) GetPaginatedCategories(ctx context.Context, filter entity.CategoryFilter, params entity.PageParams) (*entity.CategoryPage, error) {
	page, err := s.categoryRepo.GetPage(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories page: %w", err)
	}
	return page, nil
}

func (s *CategoryService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		// Категория уже записана, кеш истечет по TTL
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}

func (s *CategoryService) writeAudit(ctx context.Context, id uuid.UUID, action string) {
	entry := &entity.AuditEntry{
		Entity:    "category",
		EntityID:  id.String(),
		Action:    action,
		Timestamp: time.Now(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("category_id", id.String()).Msg("failed to write audit entry")
	}
}
