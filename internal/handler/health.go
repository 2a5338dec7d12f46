// File: internal/handler/health.go
package handler

import (
	"context"
	"net/http"
	"time"

	"invoice-ledger/internal/cache"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/dto"

	"github.com/labstack/echo/v4"
)

// HealthResponse 健康檢查回應模型
// swagger:model HealthResponse
type HealthResponse struct {
	// 回應訊息
	Message string `json:"message" example:"ok"`
}

// HealthHandler 健康檢查
// @Summary     Health Check
// @Description 檢查資料庫與 Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} HealthResponse
// @Failure     503 {object} dto.HTTPError
// @Router      /health [get]
func HealthHandler(db database.DB, c cache.Cache) echo.HandlerFunc {
	return func(ec echo.Context) error {
		ctx, cancel := context.WithTimeout(ec.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return ec.JSON(http.StatusServiceUnavailable, dto.HTTPError{Message: "database unhealthy", Kind: "internal"})
		}
		if c != nil {
			if err := cache.Ping(ctx, c); err != nil {
				return ec.JSON(http.StatusServiceUnavailable, dto.HTTPError{Message: "cache unhealthy", Kind: "internal"})
			}
		}
		return ec.JSON(http.StatusOK, HealthResponse{Message: "ok"})
	}
}
