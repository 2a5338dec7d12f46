package middleware

import (
	"context"
	"strings"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/handler"
	"invoice-ledger/internal/service"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "principal"

// Identifier 驗證 token 並載入使用者
type Identifier interface {
	Identify(ctx context.Context, token string) (*service.Principal, error)
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", apperr.Unauthenticated("missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthenticated("invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// RequireAuth 解析 Bearer token，將 *service.Principal 存入 context
func RequireAuth(id Identifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				return handler.WriteError(c, err)
			}
			p, err := id.Identify(c.Request().Context(), token)
			if err != nil {
				return handler.WriteError(c, err)
			}
			c.Set(ContextUserKey, p)
			return next(c)
		}
	}
}

// RequireAdmin 以資料庫中的 is_superuser 判斷，而非 token 內的旗標
func RequireAdmin(id Identifier) echo.MiddlewareFunc {
	auth := RequireAuth(id)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return auth(func(c echo.Context) error {
			p := PrincipalFrom(c)
			if p == nil || p.User == nil || !p.User.IsSuperuser {
				return handler.WriteError(c, apperr.Forbidden("admin privileges required"))
			}
			return next(c)
		})
	}
}

// PrincipalFrom 取出 RequireAuth 存入的 principal，未經驗證時回傳 nil
func PrincipalFrom(c echo.Context) *service.Principal {
	p, _ := c.Get(ContextUserKey).(*service.Principal)
	return p
}
