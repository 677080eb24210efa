package routes

import (
	"github.com/gin-gonic/gin"

	"radiator-erp/internal/handlers"
	"radiator-erp/internal/middleware"
)

// SetupRoutes wires every endpoint of the API. Everything under /api/v1
// except auth requires a bearer token.
func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	purchaseHandler *handlers.PurchaseHandler,
	salesHandler *handlers.SalesHandler,
	productionHandler *handlers.ProductionHandler,
	costFileHandler *handlers.CostFileHandler,
	recordsHandler *handlers.RecordsHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthChecker *middleware.HealthChecker,
	authMiddleware gin.HandlerFunc,
) {
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		secured := v1.Group("")
		secured.Use(authMiddleware)

		purchases := secured.Group("/purchases")
		{
			purchases.GET("", purchaseHandler.List)
			purchases.POST("", purchaseHandler.Create)
			purchases.POST("/batch", purchaseHandler.CreateBatch)
			purchases.PUT("/:id", purchaseHandler.Update)
			purchases.DELETE("/:id", purchaseHandler.Delete)
			purchases.GET("/invoices/:id", purchaseHandler.InvoiceDetail)
			purchases.GET("/document-numbers", purchaseHandler.DocumentNumbers)
			purchases.GET("/date-range", purchaseHandler.DateRange)
			purchases.GET("/suppliers", purchaseHandler.Suppliers)
		}

		sales := secured.Group("/sales")
		{
			sales.GET("", salesHandler.List)
			sales.POST("", salesHandler.Create)
			sales.POST("/batch", salesHandler.CreateBatch)
			sales.PUT("/:id", salesHandler.Update)
			sales.DELETE("/:id", salesHandler.Delete)
			sales.GET("/invoices/:id", salesHandler.InvoiceDetail)
			sales.GET("/document-numbers", salesHandler.DocumentNumbers)
			sales.GET("/date-range", salesHandler.DateRange)
			sales.GET("/customers", salesHandler.Customers)
		}

		production := secured.Group("/production")
		{
			production.POST("/dispatches", productionHandler.CreateDispatch)
			production.GET("/dispatches", productionHandler.ListDispatches)
			production.GET("/dispatches/:id", productionHandler.DispatchDetail)
			production.DELETE("/dispatches/:id", productionHandler.DeleteDispatch)
			production.GET("/remaining-materials", productionHandler.RemainingMaterials)
			production.GET("/cost-summary", productionHandler.CostSummary)
			production.GET("/next-number", productionHandler.NextDocumentNo)
			production.GET("/materials", productionHandler.Materials)
			production.GET("/products", productionHandler.Products)
		}

		costFiles := secured.Group("/cost-files")
		{
			costFiles.GET("/products/:id", costFileHandler.GetByProduct)
			costFiles.PUT("/products/:id", costFileHandler.Replace)
			costFiles.POST("/products/:id/lines", costFileHandler.AddLine)
			costFiles.DELETE("/products/:id", costFileHandler.DeleteByProduct)
			costFiles.PUT("/lines/:id", costFileHandler.UpdateLine)
			costFiles.DELETE("/lines/:id", costFileHandler.DeleteLine)
		}

		records := secured.Group("/records")
		{
			records.GET("", recordsHandler.ListAll)
			records.GET("/dashboard", recordsHandler.Dashboard)
			records.GET("/:type", recordsHandler.ListByType)
			records.POST("/:type", recordsHandler.Create)
			records.GET("/:type/:id", recordsHandler.Detail)
			records.PUT("/:type/:id", recordsHandler.Update)
			records.DELETE("/:type/:id", recordsHandler.Delete)
		}

		monitoring := secured.Group("/monitoring")
		{
			monitoring.GET("/metrics", monitoringHandler.GetMetrics)
			monitoring.GET("/ws", monitoringHandler.StreamMetrics)
		}
	}

	router.GET("/health", healthChecker.HealthCheck)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Radiator ERP API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health":     "/health",
				"api":        "/api/v1",
				"purchases":  "/api/v1/purchases",
				"sales":      "/api/v1/sales",
				"production": "/api/v1/production/dispatches",
				"cost_files": "/api/v1/cost-files/products/:id",
				"records":    "/api/v1/records",
				"monitoring": "/api/v1/monitoring/metrics",
			},
		})
	})
}
