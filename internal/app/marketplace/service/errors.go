package service

import "errors"

// Ошибки бизнес-логики для обработки в handlers.
// Таксономия фиксирована: not found -> 404, нарушение роли/владения -> 403,
// повторный отзыв -> 400. Ошибки не транзиентны, ретраев нет.
var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrProductOwnership   = errors.New("you can modify only your own products")
	ErrSellerCannotReview = errors.New("seller cannot leave a review")
	ErrCanReviewOnlyOnce  = errors.New("you can review only once")
	ErrAccessDenied       = errors.New("access denied")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidRole        = errors.New("invalid role")
)
