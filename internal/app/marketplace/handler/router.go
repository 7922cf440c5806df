package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/pkg/logger"
	"omgplace/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
// Чтение каталога публичное, мутации за JWT
func SetupRoutes(
	authHandler *AuthHandler,
	categoryHandler *CategoryHandler,
	productHandler *ProductHandler,
	reviewHandler *ReviewHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("marketplace"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "marketplace",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты аутентификации
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Categories: чтение публичное, мутации только seller и admin
	categories := router.Group("/categories")
	{
		categories.GET("", categoryHandler.GetAllCategories)
		categories.GET("/paginated", categoryHandler.GetPaginatedCategories)

		protected := categories.Group("")
		protected.Use(authMiddleware.Authenticate())
		protected.Use(authMiddleware.RequireRole(entity.RoleSeller, entity.RoleAdmin))
		{
			protected.POST("", categoryHandler.CreateCategory)
			protected.PUT("/:category_id", categoryHandler.UpdateCategory)
			protected.DELETE("/:category_id", categoryHandler.DeleteCategory)
		}
	}

	// Products: чтение публичное, мутации требуют JWT
	// Владение и роль проверяет сервисный слой
	products := router.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/search", productHandler.SearchProducts)
		products.GET("/category/:category_id", productHandler.GetProductsByCategory)
		products.GET("/:product_id", productHandler.GetProduct)

		protected := products.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", productHandler.CreateProduct)
			protected.PUT("/:product_id", productHandler.UpdateProduct)
			protected.DELETE("/:product_id", productHandler.DeleteProduct)
		}
	}

	// Reviews: список публичный, создание за JWT, удаление проверяет admin в сервисе
	reviews := router.Group("/reviews")
	{
		reviews.GET("", reviewHandler.GetReviews)

		protected := reviews.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", reviewHandler.CreateReview)
			protected.DELETE("/:review_id", reviewHandler.DeleteReview)
		}
	}

	return router
}
