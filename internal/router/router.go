package router

import (
	"time"

	"tireshop/internal/config"
	"tireshop/internal/handler"
	"tireshop/internal/infra"
	"tireshop/internal/metrics"
	"tireshop/internal/middleware"
	"tireshop/internal/model"
	"tireshop/internal/repository"
	"tireshop/internal/service"
	"tireshop/internal/session"
	"tireshop/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.RateLimiter(cfg.RateLimit, time.Minute))

	// ── Infrastructure ───────────────────────────────────────────────────────
	issuer := session.NewIssuer(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationHours)*time.Hour,
		time.Duration(cfg.JWTRefreshHours)*time.Hour,
	)
	denylist := session.NewDenylist(rdb)
	dispatcher := worker.NewDispatcher(rdb)
	reportCache := infra.NewRedisCache(rdb, "reports:")

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	movementRepo := repository.NewInventoryMovementRepository(db)
	orderRepo := repository.NewServiceOrderRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, issuer, denylist)
	customerSvc := service.NewCustomerService(customerRepo)
	productSvc := service.NewProductService(productRepo, movementRepo)
	catalogSvc := service.NewCatalogService(serviceRepo)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo, dispatcher)
	orderSvc := service.NewServiceOrderService(orderRepo, customerRepo, productRepo, serviceRepo, dispatcher, cfg.ShopName)
	reportSvc := service.NewReportService(reportRepo, reportCache, time.Duration(cfg.ReportCacheTTLSeconds)*time.Second)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	productsH := handler.NewProductsHandler(productSvc)
	servicesH := handler.NewServicesHandler(catalogSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	ordersH := handler.NewServiceOrdersHandler(orderSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Both roles run the shop floor; catalog prices,
	// financial reports and user accounts are admin only.
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleAttendant)
	admin := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(issuer, denylist))
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		users := v1.Group("/users", admin)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
		}

		customers := v1.Group("/customers", staff)
		{
			customers.GET("", customersH.List)
			customers.POST("", customersH.Create)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Delete)
		}

		v1.GET("/products", staff, productsH.List)
		v1.GET("/products/low-stock", staff, productsH.LowStock)
		v1.GET("/products/:id", staff, productsH.Get)
		v1.POST("/products", admin, productsH.Create)
		v1.PUT("/products/:id", admin, productsH.Update)

		v1.GET("/services", staff, servicesH.List)
		v1.GET("/services/:id", staff, servicesH.Get)
		v1.POST("/services", admin, servicesH.Create)
		v1.PUT("/services/:id", admin, servicesH.Update)

		inv := v1.Group("/inventory", staff)
		{
			inv.GET("/movements", inventoryH.ListMovements)
			inv.POST("/movements", inventoryH.CreateMovement)
		}

		orders := v1.Group("/service-orders", staff)
		{
			orders.GET("", ordersH.List)
			orders.POST("", ordersH.Create)
			orders.GET("/:id", ordersH.Get)
			orders.PUT("/:id", ordersH.Update)
			orders.PATCH("/:id/status", ordersH.ChangeStatus)
			orders.GET("/:id/next-statuses", ordersH.NextStatuses)
			orders.GET("/:id/pdf", ordersH.PDF)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/dashboard", staff, reportsH.Dashboard)
			reports.GET("/revenue-by-date", staff, reportsH.RevenueByDate)
			reports.GET("/top-products", staff, reportsH.TopProducts)
			reports.GET("/top-services", staff, reportsH.TopServices)
			reports.GET("/recent-orders", staff, reportsH.RecentOrders)

			reports.GET("/financial", admin, reportsH.Financial)
			reports.GET("/revenue-breakdown", admin, reportsH.RevenueBreakdown)
			reports.GET("/service-orders/financial", admin, reportsH.ServiceOrdersFinancial)
			reports.GET("/service-orders", admin, reportsH.ServiceOrdersReport)
		}
	}

	// Swagger UI outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
