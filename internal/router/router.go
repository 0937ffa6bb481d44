package router

import (
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/authz"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/config"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/handler"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/infra"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/middleware"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/notify"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/service"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries everything the engine needs beyond its own wiring, so main can
// share the hub and dispatcher with the worker pool.
type Deps struct {
	Hub        *notify.Hub
	Dispatcher *worker.Dispatcher
	MailerCB   *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	emitter := notify.NewEmitter(rdb)

	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg)
	userSvc := service.NewUserService(userRepo, sessionRepo, emitter)
	productSvc := service.NewProductService(productRepo, stockRepo, rdb, emitter)
	ledgerSvc := service.NewLedgerService(stockRepo, movementRepo, productRepo, emitter)
	txSvc := service.NewTransactionService(txRepo, productRepo, stockRepo, ledgerSvc, deps.Dispatcher, emitter, cfg)
	reportSvc := service.NewReportService(reportRepo, stockRepo, movementRepo, txRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(userSvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(ledgerSvc)
	txH := handler.NewTransactionsHandler(txSvc, cfg.ReceiptStoragePath)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.MailerCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/logout", authH.Logout)
	}

	// Protected routes — permissions declared per endpoint
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog
		v1.GET("/products", middleware.RequirePermission(authz.ProductView), productsH.List)
		v1.GET("/products/categories", middleware.RequirePermission(authz.ProductView), productsH.Categories)
		v1.GET("/products/:id", middleware.RequirePermission(authz.ProductView), productsH.Get)
		v1.GET("/price/:sku", middleware.RequirePermission(authz.ProductView), productsH.PriceBySKU)
		prods := v1.Group("/products", middleware.RequirePermission(authz.ProductWrite))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		// Inventory ledger
		v1.GET("/inventory/movements", middleware.RequirePermission(authz.InventoryView), inventoryH.Movements)
		v1.GET("/inventory/low-stock", middleware.RequirePermission(authz.InventoryView), inventoryH.LowStock)
		v1.POST("/inventory/adjust", middleware.RequirePermission(authz.StockAdjust), inventoryH.Adjust)

		// Transactions
		v1.GET("/transactions", middleware.RequirePermission(authz.TxView), txH.List)
		v1.GET("/transactions/:id", middleware.RequirePermission(authz.TxView), txH.Get)
		v1.GET("/transactions/:id/receipt", middleware.RequirePermission(authz.TxView), txH.Receipt)
		v1.POST("/transactions", middleware.RequirePermission(authz.TxCreate), txH.Create)
		v1.PUT("/transactions/:id", middleware.RequirePermission(authz.TxUpdate), txH.Update)
		v1.PATCH("/transactions/:id/confirm", middleware.RequirePermission(authz.TxConfirm), txH.Confirm)
		v1.PATCH("/transactions/:id/complete", middleware.RequirePermission(authz.TxComplete), txH.Complete)
		v1.PATCH("/transactions/:id/cancel", middleware.RequirePermission(authz.TxCancel), txH.Cancel)
		v1.DELETE("/transactions/:id", middleware.RequirePermission(authz.TxDelete), txH.Delete)

		// Dashboard + reports
		v1.GET("/dashboard/stats", middleware.RequirePermission(authz.DashboardView), reportsH.Dashboard)
		v1.GET("/dashboard/low-stock-alerts", middleware.RequirePermission(authz.DashboardView), inventoryH.LowStock)
		reports := v1.Group("/reports", middleware.RequirePermission(authz.ReportView))
		{
			reports.GET("/sales", reportsH.Sales)
			reports.GET("/purchases", reportsH.Purchases)
			reports.GET("/inventory", reportsH.Inventory)
			reports.GET("/profit", reportsH.Profit)
			reports.GET("/activity", reportsH.Activity)
		}

		// Users
		users := v1.Group("/users", middleware.RequirePermission(authz.UserManage))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}

		// Change feed
		v1.GET("/ws", handler.WS(deps.Hub))
	}

	return r
}
