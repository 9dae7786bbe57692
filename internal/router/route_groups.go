package router

import (
	"bartab_backend/internal/handlers"
	"bartab_backend/internal/middleware"
	"bartab_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes sets up the user and guest account routes.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, userHandler *handlers.UserHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleBartender))
	{
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.GET("/:id", userHandler.GetUserByID)
		userRoutes.GET("/:id/guests", userHandler.GetGuests)
		userRoutes.PATCH("/:id", userHandler.UpdateUser)
	}

	// Scrubbing an account is destructive; admins only.
	authenticatedGroup.DELETE("/users/:id",
		middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.AnonymizeUser)

	guestRoutes := authenticatedGroup.Group("/guests")
	guestRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleBartender))
	{
		guestRoutes.POST("", userHandler.CreateGuest)
	}
}

// SetupProductRoutes sets up the catalog routes. Reads are open to all staff;
// catalog management is Admin only.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	readRoutes := authenticatedGroup.Group("")
	readRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleBartender))
	{
		readRoutes.GET("/products", productHandler.GetProducts)
		readRoutes.GET("/products/popular", productHandler.GetPopularProducts)
		readRoutes.GET("/products/:id", productHandler.GetProductByID)
		readRoutes.GET("/categories", productHandler.GetCategories)
	}

	writeRoutes := authenticatedGroup.Group("")
	writeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		writeRoutes.POST("/products", productHandler.CreateProduct)
		writeRoutes.PATCH("/products/:id", productHandler.UpdateProduct)
		writeRoutes.DELETE("/products/:id", productHandler.DeactivateProduct)

		writeRoutes.POST("/categories", productHandler.CreateCategory)
		writeRoutes.PATCH("/categories/:id", productHandler.UpdateCategory)
		writeRoutes.DELETE("/categories/:id", productHandler.DeleteCategory)
	}
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleBartender))
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.DELETE("/:id", orderHandler.DeleteOrder)
	}
}

// SetupRaiseRoutes sets up the balance top-up routes.
func SetupRaiseRoutes(authenticatedGroup *gin.RouterGroup, raiseHandler *handlers.RaiseHandler) {
	raiseRoutes := authenticatedGroup.Group("/raises")
	raiseRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleBartender))
	{
		raiseRoutes.POST("", raiseHandler.CreateRaise)
		raiseRoutes.GET("", raiseHandler.GetRaises)
		raiseRoutes.GET("/:id", raiseHandler.GetRaiseByID)
	}
}

// SetupPurchaseRoutes sets up the restock routes. Admin only.
func SetupPurchaseRoutes(authenticatedGroup *gin.RouterGroup, purchaseHandler *handlers.PurchaseHandler) {
	purchaseRoutes := authenticatedGroup.Group("/purchases")
	purchaseRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		purchaseRoutes.POST("", purchaseHandler.CreatePurchase)
		purchaseRoutes.GET("", purchaseHandler.GetPurchases)
	}
}

// SetupReportRoutes sets up the finance report routes. Admin only.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		reportRoutes.GET("/revenue", reportHandler.GetRevenueReport)
		reportRoutes.GET("/raises", reportHandler.GetRaiseReport)
		reportRoutes.GET("/low-stock", reportHandler.GetLowStockReport)
		reportRoutes.GET("/debtors", reportHandler.GetDebtors)
	}
}

// SetupAuditRoutes sets up the audit log routes. Admin only.
func SetupAuditRoutes(authenticatedGroup *gin.RouterGroup, auditHandler *handlers.AuditHandler) {
	auditRoutes := authenticatedGroup.Group("/audit-log")
	auditRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		auditRoutes.GET("", auditHandler.GetEntries)
	}
}

// SetupStaffRoutes sets up the staff management routes. Writes are Admin
// only; all staff can read the roster.
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler) {
	staffWriteRoutes := authenticatedGroup.Group("/staff")
	staffWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		staffWriteRoutes.POST("", staffHandler.CreateStaff)
		staffWriteRoutes.PATCH("/:id", staffHandler.UpdateStaff)
		staffWriteRoutes.DELETE("/:id", staffHandler.DeactivateStaff)
	}

	authenticatedGroup.GET("/staff",
		middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleBartender), staffHandler.GetStaffMembers)
	authenticatedGroup.GET("/staff/:id",
		middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleBartender), staffHandler.GetStaffByID)
}
