package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, req *entity.CreateReviewRequest, user entity.AuthUser) (*entity.Review, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) UserAlreadyReviewedProduct(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, id uuid.UUID, user entity.AuthUser) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockReviewService) GetReviews(ctx context.Context) ([]entity.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withUser подменяет Authenticate: кладет пользователя в контекст напрямую
func withUser(user entity.AuthUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	}
}

func testBuyer() entity.AuthUser {
	return entity.AuthUser{ID: uuid.New(), Email: "buyer@omgplace.io", Role: entity.RoleBuyer}
}

func testAdmin() entity.AuthUser {
	return entity.AuthUser{ID: uuid.New(), Email: "admin@omgplace.io", Role: entity.RoleAdmin}
}

func TestGetReviewsHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	reviews := []entity.Review{
		{ID: uuid.New(), ProductID: uuid.New(), UserID: uuid.New(), Grade: 5, CommentDate: time.Now()},
		{ID: uuid.New(), ProductID: uuid.New(), UserID: uuid.New(), Grade: 3, CommentDate: time.Now()},
	}

	mockService := new(MockReviewService)
	mockService.On("GetReviews", mock.Anything).Return(reviews, nil)

	h := NewReviewHandler(mockService)
	router.GET("/reviews", h.GetReviews)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ReviewListResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 2, response.Total)
}

func TestCreateReviewHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	buyer := testBuyer()
	productID := uuid.New()

	created := &entity.Review{
		ID:        uuid.New(),
		UserID:    buyer.ID,
		ProductID: productID,
		Comment:   "Отличный товар, рекомендую",
		Grade:     5,
		IsActive:  true,
	}

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, mock.AnythingOfType("*entity.CreateReviewRequest"), buyer).
		Return(created, nil)

	h := NewReviewHandler(mockService)
	router.POST("/reviews", withUser(buyer), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{
		ProductID: productID,
		Comment:   "Отличный товар, рекомендую",
		Grade:     5,
	})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateReviewHandler_Unauthorized(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	mockService := new(MockReviewService)
	h := NewReviewHandler(mockService)
	router.POST("/reviews", h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{ProductID: uuid.New(), Grade: 5})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "CreateReview")
}

func TestCreateReviewHandler_SellerForbidden(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	seller := entity.AuthUser{ID: uuid.New(), Email: "seller@omgplace.io", Role: entity.RoleSeller}

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, mock.Anything, seller).
		Return(nil, service.ErrSellerCannotReview)

	h := NewReviewHandler(mockService)
	router.POST("/reviews", withUser(seller), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{ProductID: uuid.New(), Grade: 4})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateReviewHandler_ProductNotFound(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	buyer := testBuyer()

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, mock.Anything, buyer).
		Return(nil, service.ErrProductNotFound)

	h := NewReviewHandler(mockService)
	router.POST("/reviews", withUser(buyer), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{ProductID: uuid.New(), Grade: 4})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReviewHandler_DuplicateReview(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	buyer := testBuyer()

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, mock.Anything, buyer).
		Return(nil, service.ErrCanReviewOnlyOnce)

	h := NewReviewHandler(mockService)
	router.POST("/reviews", withUser(buyer), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{ProductID: uuid.New(), Grade: 4})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReviewHandler_GradeOutOfRange(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	buyer := testBuyer()

	mockService := new(MockReviewService)
	h := NewReviewHandler(mockService)
	router.POST("/reviews", withUser(buyer), h.CreateReview)

	body, _ := json.Marshal(entity.CreateReviewRequest{ProductID: uuid.New(), Grade: 6})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateReview")
}

func TestDeleteReviewHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	admin := testAdmin()
	reviewID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("DeleteReview", mock.Anything, reviewID, admin).Return(nil)

	h := NewReviewHandler(mockService)
	router.DELETE("/reviews/:review_id", withUser(admin), h.DeleteReview)

	// Act
	req, _ := http.NewRequest(http.MethodDelete, "/reviews/"+reviewID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestDeleteReviewHandler_NonAdminForbidden(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	buyer := testBuyer()
	reviewID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("DeleteReview", mock.Anything, reviewID, buyer).Return(service.ErrAccessDenied)

	h := NewReviewHandler(mockService)
	router.DELETE("/reviews/:review_id", withUser(buyer), h.DeleteReview)

	// Act
	req, _ := http.NewRequest(http.MethodDelete, "/reviews/"+reviewID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteReviewHandler_NotFound(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	admin := testAdmin()
	reviewID := uuid.New()

	mockService := new(MockReviewService)
	mockService.On("DeleteReview", mock.Anything, reviewID, admin).Return(service.ErrReviewNotFound)

	h := NewReviewHandler(mockService)
	router.DELETE("/reviews/:review_id", withUser(admin), h.DeleteReview)

	// Act
	req, _ := http.NewRequest(http.MethodDelete, "/reviews/"+reviewID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteReviewHandler_InvalidID(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	admin := testAdmin()

	mockService := new(MockReviewService)
	h := NewReviewHandler(mockService)
	router.DELETE("/reviews/:review_id", withUser(admin), h.DeleteReview)

	// Act
	req, _ := http.NewRequest(http.MethodDelete, "/reviews/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "DeleteReview")
}
