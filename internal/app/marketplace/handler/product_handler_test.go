package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest, user entity.AuthUser) (*entity.Product, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) FindActiveProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) FindProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductService) GetFilteredProducts(ctx context.Context, filter entity.ProductFilter, params entity.PageParams) (*entity.ProductPage, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductPage), args.Error(1)
}

func (m *MockProductService) GetProductBySearch(ctx context.Context, name string, price float64) ([]entity.Product, error) {
	args := m.Called(ctx, name, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductService) GetProductByOwner(ctx context.Context, productID uuid.UUID, user entity.AuthUser) (*entity.Product, error) {
	args := m.Called(ctx, productID, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest, user entity.AuthUser) (*entity.Product, error) {
	args := m.Called(ctx, id, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id uuid.UUID, user entity.AuthUser) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockProductService) CalculateAvgRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockProductService) PushProductRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(float64), args.Error(1)
}

func sampleProduct(sellerID uuid.UUID) *entity.Product {
	return &entity.Product{
		ID:         uuid.New(),
		Name:       "Механическая клавиатура",
		Price:      99.90,
		Stock:      12,
		CategoryID: uuid.New(),
		SellerID:   sellerID,
		IsActive:   true,
	}
}

func TestGetProductsHandler_PassesFilterAndPage(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	page := &entity.ProductPage{
		Items: []entity.Product{*sampleProduct(uuid.New())},
		Total: 1,
		Page:  2,
		Size:  10,
	}

	mockService := new(MockProductService)
	mockService.On("GetFilteredProducts", mock.Anything,
		mock.MatchedBy(func(f entity.ProductFilter) bool {
			return f.PriceGTE != nil && *f.PriceGTE == 10.0 && len(f.OrderBy) == 1 && f.OrderBy[0] == "-price"
		}),
		entity.PageParams{Page: 2, Size: 10},
	).Return(page, nil)

	h := NewProductHandler(mockService)
	router.GET("/products", h.GetProducts)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products?price__gte=10.0&order_by=-price&page=2&size=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetProductHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	product := sampleProduct(uuid.New())

	mockService := new(MockProductService)
	mockService.On("FindActiveProduct", mock.Anything, product.ID).Return(product, nil)

	h := NewProductHandler(mockService)
	router.GET("/products/:product_id", h.GetProduct)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products/"+product.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var got entity.Product
	json.Unmarshal(w.Body.Bytes(), &got)
	assert.Equal(t, product.ID, got.ID)
}

func TestGetProductHandler_NotFound(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	productID := uuid.New()

	mockService := new(MockProductService)
	mockService.On("FindActiveProduct", mock.Anything, productID).
		Return(nil, service.ErrProductNotFound)

	h := NewProductHandler(mockService)
	router.GET("/products/:product_id", h.GetProduct)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products/"+productID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProductHandler_InvalidID(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	mockService := new(MockProductService)
	h := NewProductHandler(mockService)
	router.GET("/products/:product_id", h.GetProduct)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "FindActiveProduct")
}

func TestGetProductsByCategoryHandler_EmptyCategoryIsNotFound(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	categoryID := uuid.New()

	mockService := new(MockProductService)
	mockService.On("FindProductsByCategory", mock.Anything, categoryID).
		Return(nil, service.ErrProductNotFound)

	h := NewProductHandler(mockService)
	router.GET("/products/category/:category_id", h.GetProductsByCategory)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products/category/"+categoryID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchProductsHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	products := []entity.Product{*sampleProduct(uuid.New()), *sampleProduct(uuid.New())}

	mockService := new(MockProductService)
	mockService.On("GetProductBySearch", mock.Anything, "клавиатура", 150.0).Return(products, nil)

	h := NewProductHandler(mockService)
	router.GET("/products/search", h.SearchProducts)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products/search?name=клавиатура&price=150", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ProductListResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 2, response.Total)
}

func TestSearchProductsHandler_MissingName(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	mockService := new(MockProductService)
	h := NewProductHandler(mockService)
	router.GET("/products/search", h.SearchProducts)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products/search?price=150", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetProductBySearch")
}

func TestSearchProductsHandler_InvalidPrice(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	mockService := new(MockProductService)
	h := NewProductHandler(mockService)
	router.GET("/products/search", h.SearchProducts)

	// Act
	req, _ := http.NewRequest(http.MethodGet, "/products/search?name=keyboard&price=cheap", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetProductBySearch")
}

func TestCreateProductHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	seller := entity.AuthUser{ID: uuid.New(), Email: "seller@omgplace.io", Role: entity.RoleSeller}
	created := sampleProduct(seller.ID)

	mockService := new(MockProductService)
	mockService.On("CreateProduct", mock.Anything, mock.AnythingOfType("*entity.CreateProductRequest"), seller).
		Return(created, nil)

	h := NewProductHandler(mockService)
	router.POST("/products", withUser(seller), h.CreateProduct)

	body, _ := json.Marshal(entity.CreateProductRequest{
		Name:       "Механическая клавиатура",
		Price:      99.90,
		Stock:      12,
		CategoryID: created.CategoryID,
	})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateProductHandler_BuyerForbidden(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	buyer := testBuyer()

	mockService := new(MockProductService)
	mockService.On("CreateProduct", mock.Anything, mock.Anything, buyer).
		Return(nil, service.ErrAccessDenied)

	h := NewProductHandler(mockService)
	router.POST("/products", withUser(buyer), h.CreateProduct)

	body, _ := json.Marshal(entity.CreateProductRequest{
		Name:       "Чехол для ноутбука",
		Price:      19.90,
		CategoryID: uuid.New(),
	})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateProductHandler_NegativePrice(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	seller := entity.AuthUser{ID: uuid.New(), Email: "seller@omgplace.io", Role: entity.RoleSeller}

	mockService := new(MockProductService)
	h := NewProductHandler(mockService)
	router.POST("/products", withUser(seller), h.CreateProduct)

	body, _ := json.Marshal(entity.CreateProductRequest{
		Name:       "Чехол для ноутбука",
		Price:      -1,
		CategoryID: uuid.New(),
	})

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateProduct")
}

func TestUpdateProductHandler_NotOwnerForbidden(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	seller := entity.AuthUser{ID: uuid.New(), Email: "other@omgplace.io", Role: entity.RoleSeller}
	productID := uuid.New()

	mockService := new(MockProductService)
	mockService.On("UpdateProduct", mock.Anything, productID, mock.Anything, seller).
		Return(nil, service.ErrProductOwnership)

	h := NewProductHandler(mockService)
	router.PUT("/products/:product_id", withUser(seller), h.UpdateProduct)

	body, _ := json.Marshal(entity.UpdateProductRequest{
		Name:       "Чужой товар",
		Price:      10,
		CategoryID: uuid.New(),
	})

	// Act
	req, _ := http.NewRequest(http.MethodPut, "/products/"+productID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteProductHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	seller := entity.AuthUser{ID: uuid.New(), Email: "seller@omgplace.io", Role: entity.RoleSeller}
	productID := uuid.New()

	mockService := new(MockProductService)
	mockService.On("DeleteProduct", mock.Anything, productID, seller).Return(nil)

	h := NewProductHandler(mockService)
	router.DELETE("/products/:product_id", withUser(seller), h.DeleteProduct)

	// Act
	req, _ := http.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestDeleteProductHandler_NotFound(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	seller := entity.AuthUser{ID: uuid.New(), Email: "seller@omgplace.io", Role: entity.RoleSeller}
	productID := uuid.New()

	mockService := new(MockProductService)
	mockService.On("DeleteProduct", mock.Anything, productID, seller).
		Return(service.ErrProductNotFound)

	h := NewProductHandler(mockService)
	router.DELETE("/products/:product_id", withUser(seller), h.DeleteProduct)

	// Act
	req, _ := http.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}
