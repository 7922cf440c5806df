package handler

import (
	"errors"
	"net/http"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// GetReviews обрабатывает GET /reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetReviews(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to get reviews"})
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// CreateReview обрабатывает POST /reviews
// Продавцы отзывы не оставляют, один активный отзыв на пару (user, product)
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), &req, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSellerCannotReview):
			c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Sellers cannot leave reviews"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Product not found"})
		case errors.Is(err, service.ErrCanReviewOnlyOnce):
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "You have already reviewed this product"})
		default:
			c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// DeleteReview обрабатывает DELETE /reviews/:review_id
// Мягкое удаление, только admin, рейтинг товара пересчитывается
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid review ID"})
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), reviewID, user); err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Access denied"})
		case errors.Is(err, service.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Review not found"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Product not found"})
		default:
			c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to delete review"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}
