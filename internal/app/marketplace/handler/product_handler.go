package handler

import (
	"errors"
	"net/http"
	"strconv"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ProductHandler struct {
	productService service.ProductServiceInterface
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

// GetProducts обрабатывает GET /products
// Фильтры (name, price__gte, price__lte, rating__gt, rating__lt),
// сортировка order_by и окно страницы приходят query-параметрами
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filter entity.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid filter parameters"})
		return
	}

	var params entity.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid pagination parameters"})
		return
	}

	page, err := h.productService.GetFilteredProducts(c.Request.Context(), filter, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to get products"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProduct обрабатывает GET /products/:product_id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	product, err := h.productService.FindActiveProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProductsByCategory обрабатывает GET /products/category/:category_id
// Пустой список активных товаров в категории отдается как 404
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid category ID"})
		return
	}

	products, err := h.productService.FindProductsByCategory(c.Request.Context(), categoryID)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Category not found"})
			return
		}
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "No products found in category"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to get products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// SearchProducts обрабатывает GET /products/search?name=&price=
// Результаты поиска по имени и по цене конкатенируются без дедупликации
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Search name is required"})
		return
	}

	price, err := strconv.ParseFloat(c.Query("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid search price"})
		return
	}

	products, err := h.productService.GetProductBySearch(c.Request.Context(), name, price)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "No products found"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to search products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// CreateProduct обрабатывает POST /products
// Только seller и admin
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req, user)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Category not found"})
			return
		}
		if errors.Is(err, service.ErrAccessDenied) {
			c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct обрабатывает PUT /products/:product_id
// Полная перезапись полей, только владелец или admin
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productID, &req, user)
	if err != nil {
		h.respondProductMutationError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/:product_id
// Мягкое удаление, только владелец или admin
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), productID, user); err != nil {
		h.respondProductMutationError(c, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product deleted successfully",
	})
}

// respondProductMutationError мапит ошибки мутации товара на статусы
func (h *ProductHandler) respondProductMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Product not found"})
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Category not found"})
	case errors.Is(err, service.ErrProductOwnership):
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "You do not own this product"})
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Access denied"})
	default:
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: fallback})
	}
}
