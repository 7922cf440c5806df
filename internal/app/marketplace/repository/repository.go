package repository

import (
	"context"
	"errors"

	"omgplace/internal/app/marketplace/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer.
	// Отсутствие строки (или строка с is_active = false) - это not found,
	// репозиторий сам никогда не решает фатально это или нет.
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// TxManager управляет границей транзакции: одна транзакция на запрос,
// репозитории внутри fn видят транзакционный handle через контекст
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetPage(ctx context.Context, filter entity.CategoryFilter, params entity.PageParams) (*entity.CategoryPage, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error)
	GetBySeller(ctx context.Context, productID, sellerID uuid.UUID) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetPage(ctx context.Context, filter entity.ProductFilter, params entity.PageParams) (*entity.ProductPage, error)
	SearchByName(ctx context.Context, name string) ([]entity.Product, error)
	SearchByPrice(ctx context.Context, price float64) ([]entity.Product, error)
	GetActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	GetAll(ctx context.Context) ([]entity.Review, error)
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]entity.Review, error)
	ExistsForUserProduct(ctx context.Context, productID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// AuditRepository - append-only журнал мутаций в MongoDB
type AuditRepository interface {
	Insert(ctx context.Context, entry *entity.AuditEntry) error
}
