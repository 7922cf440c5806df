package entity

import "github.com/google/uuid"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=buyer seller admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // время жизни access token в секундах
}

type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=3,max=50"`
	ParentID *uuid.UUID `json:"parent_id" validate:"omitempty"`
}

// UpdateCategoryRequest намеренно совпадает с CreateCategoryRequest:
// обновление категории - полная перезапись изменяемых полей, не merge
type UpdateCategoryRequest = CreateCategoryRequest

type CreateProductRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,max=200"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
}

// UpdateProductRequest - тоже полная перезапись всех полей товара
type UpdateProductRequest = CreateProductRequest

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Comment   string    `json:"comment" validate:"omitempty,min=10,max=500"`
	Grade     int       `json:"grade" validate:"required,min=1,max=5"`
}

// CategoryFilter - предикаты фильтрации для списка категорий
// nil-поле означает "не фильтровать"
type CategoryFilter struct {
	ID       *uuid.UUID `form:"id"`
	Name     *string    `form:"name"`
	ParentID *uuid.UUID `form:"parent_id"`
}

// ProductFilter - предикаты и сортировка для списка товаров
type ProductFilter struct {
	Name     *string  `form:"name"`
	PriceGTE *float64 `form:"price__gte"`
	PriceLTE *float64 `form:"price__lte"`
	RatingGT *float64 `form:"rating__gt"`
	RatingLT *float64 `form:"rating__lt"`
	OrderBy  []string `form:"order_by"`
}

// PageParams - параметры окна пагинации
type PageParams struct {
	Page int `form:"page"`
	Size int `form:"size"`
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Normalize приводит параметры страницы к допустимому окну
func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

// Offset возвращает смещение окна для SQL запроса
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Size
}

// CategoryPage - страница категорий с общим количеством
type CategoryPage struct {
	Items []Category `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}

// ProductPage - страница товаров с общим количеством
type ProductPage struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}
