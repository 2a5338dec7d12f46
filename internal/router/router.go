// File: internal/router/router.go
package router

import (
	"invoice-ledger/internal/cache"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/handler"
	"invoice-ledger/internal/handler/admin"
	"invoice-ledger/internal/handler/auth"
	"invoice-ledger/internal/handler/invoices"
	"invoice-ledger/internal/metrics"
	"invoice-ledger/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Identity 由 *service.Auth 實作
type Identity interface {
	auth.Authenticator
	middleware.Identifier
}

// Deps 路由所需的服務
type Deps struct {
	DB        database.DB
	Cache     cache.Cache
	Auth      Identity
	Shops     auth.ShopLister
	Ledger    invoices.Ledger
	Query     invoices.Finder
	Directory admin.Directory
	Metrics   *metrics.Metrics
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")
	requireAuth := middleware.RequireAuth(d.Auth)

	// 健康檢查
	api.GET("/health", handler.HealthHandler(d.DB, d.Cache))

	// 身分與 session
	api.POST("/auth/token", auth.TokenHandler(d.Auth))
	api.POST("/auth/register", auth.RegisterHandler(d.Auth))
	apiAuth := api.Group("/auth", requireAuth)
	apiAuth.GET("/me", auth.MeHandler(d.Shops))
	apiAuth.POST("/change-password", auth.ChangePasswordHandler(d.Auth))
	apiAuth.POST("/context", auth.SwitchShopHandler(d.Auth))

	// 發票 (讀取/建立需商店成員資格，更新/刪除於服務層檢查權限)
	apiInvoices := api.Group("/invoices", requireAuth)
	apiInvoices.POST("", invoices.CreateHandler(d.Ledger))
	apiInvoices.GET("", invoices.ListHandler(d.Query))
	apiInvoices.GET("/last", invoices.LastHandler(d.Ledger))
	apiInvoices.GET("/stats/summary", invoices.StatsHandler(d.Query))
	apiInvoices.GET("/:id", invoices.GetHandler(d.Ledger))
	apiInvoices.PATCH("/:id", invoices.UpdateHandler(d.Ledger))
	apiInvoices.PATCH("/:id/status", invoices.StatusHandler(d.Ledger))
	apiInvoices.DELETE("/:id", invoices.DeleteHandler(d.Ledger))

	// 管理員專屬
	apiAdmin := api.Group("/admin", middleware.RequireAdmin(d.Auth))
	apiAdmin.GET("/users", admin.ListUsersHandler(d.Directory))
	apiAdmin.POST("/users", admin.CreateUserHandler(d.Directory))
	apiAdmin.DELETE("/users/:id", admin.DeleteUserHandler(d.Directory))
	apiAdmin.PUT("/users/:id/active", admin.SetUserActiveHandler(d.Directory))
	apiAdmin.GET("/shops", admin.ListShopsHandler(d.Directory))
	apiAdmin.POST("/shops", admin.CreateShopHandler(d.Directory))
	apiAdmin.DELETE("/shops/:id", admin.DeleteShopHandler(d.Directory))
	apiAdmin.PUT("/shops/:id/members/:user_id", admin.GrantHandler(d.Directory))
	apiAdmin.DELETE("/shops/:id/members/:user_id", admin.RevokeHandler(d.Directory))
}
