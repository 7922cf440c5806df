package service

import (
	"context"

	"omgplace/internal/app/marketplace/entity"

	"github.com/google/uuid"
)

type CategoryServiceInterface interface {
	FindParentCategory(ctx context.Context, parentID uuid.UUID) (*entity.Category, error)
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	GetPaginatedCategories(ctx context.Context, filter entity.CategoryFilter, params entity.PageParams) (*entity.CategoryPage, error)
}

type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest, user entity.AuthUser) (*entity.Product, error)
	FindActiveProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	FindProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error)
	GetFilteredProducts(ctx context.Context, filter entity.ProductFilter, params entity.PageParams) (*entity.ProductPage, error)
	GetProductBySearch(ctx context.Context, name string, price float64) ([]entity.Product, error)
	GetProductByOwner(ctx context.Context, productID uuid.UUID, user entity.AuthUser) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest, user entity.AuthUser) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, user entity.AuthUser) error
	CalculateAvgRating(ctx context.Context, productID uuid.UUID) (float64, error)
	PushProductRating(ctx context.Context, productID uuid.UUID) (float64, error)
}

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, req *entity.CreateReviewRequest, user entity.AuthUser) (*entity.Review, error)
	UserAlreadyReviewedProduct(ctx context.Context, productID, userID uuid.UUID) (bool, error)
	DeleteReview(ctx context.Context, id uuid.UUID, user entity.AuthUser) error
	GetReviews(ctx context.Context) ([]entity.Review, error)
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error)
}

// RatingPusher - пересчет и запись рейтинга товара.
// Реализуется ProductService, нужен ReviewService чтобы дергать
// пересчет внутри своей транзакции.
type RatingPusher interface {
	PushProductRating(ctx context.Context, productID uuid.UUID) (float64, error)
}
