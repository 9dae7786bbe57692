package router

import (
	"database/sql"

	"bartab_backend/internal/cache"
	"bartab_backend/internal/config"
	"bartab_backend/internal/handlers"
	"bartab_backend/internal/middleware"
	"bartab_backend/internal/repositories"
	"bartab_backend/internal/services"
	"bartab_backend/internal/worker"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and registers all routes.
// It returns the popularity sweep worker so the caller controls its
// lifecycle.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config, ranking *cache.RankingCache) *worker.PopularitySweep {
	loc := cfg.Location()
	dbx := repositories.WrapDB(db)

	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	raiseRepo := repositories.NewRaiseRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	staffRepo := repositories.NewStaffRepository(db)

	// Initialize Services
	authService := services.NewAuthService(staffRepo)
	staffService := services.NewStaffService(staffRepo, dbx)
	userService := services.NewUserService(userRepo, auditRepo, dbx)
	productService := services.NewProductService(productRepo, ranking, dbx)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, auditRepo, ranking, dbx, loc, cfg.DayCutoffHour)
	raiseService := services.NewRaiseService(raiseRepo, userRepo, auditRepo, dbx)
	purchaseService := services.NewPurchaseService(purchaseRepo, productRepo, auditRepo, dbx, loc, cfg.DayCutoffHour)
	reportService := services.NewReportService(orderRepo, raiseRepo, productRepo, userRepo, cfg.TimeZone, cfg.DayCutoffHour)
	auditService := services.NewAuditService(auditRepo)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	staffHandler := handlers.NewStaffHandler(staffService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	raiseHandler := handlers.NewRaiseHandler(raiseService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	reportHandler := handlers.NewReportHandler(reportService)
	auditHandler := handlers.NewAuditHandler(auditService)

	apiV1 := engine.Group("/api/v1")

	// Public routes
	authPublic := apiV1.Group("/auth")
	{
		authPublic.POST("/login", authHandler.Login)
		authPublic.POST("/refresh-token", authHandler.RefreshToken)
	}

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		authenticated.GET("/auth/me", authHandler.GetProfile)

		SetupUserRoutes(authenticated, userHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupRaiseRoutes(authenticated, raiseHandler)
		SetupPurchaseRoutes(authenticated, purchaseHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupAuditRoutes(authenticated, auditHandler)
		SetupStaffRoutes(authenticated, staffHandler)
	}

	return worker.NewPopularitySweep(dbx, productRepo, ranking, cfg.PopularitySweepInterval())
}
