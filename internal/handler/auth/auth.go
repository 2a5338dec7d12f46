// File: internal/handler/auth/auth.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"invoice-ledger/internal/dto"
	"invoice-ledger/internal/handler"
	"invoice-ledger/internal/middleware"
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/service"

	"github.com/labstack/echo/v4"
)

// Authenticator 由 *service.Auth 實作
type Authenticator interface {
	Login(ctx context.Context, login, password string) (string, *service.SessionClaims, error)
	Register(ctx context.Context, in service.RegisterInput) (string, *model.User, error)
	ChangePassword(ctx context.Context, p *service.Principal, oldPassword, newPassword string) error
	SwitchShop(ctx context.Context, p *service.Principal, shopID int) (string, *service.SessionClaims, error)
}

// ShopLister 由 *service.Access 實作
type ShopLister interface {
	AccessibleShops(ctx context.Context, userID int) (service.ShopSet, error)
}

// TokenHandler 使用 Username/Password 驗證並回傳 JWT
// @Summary     取得存取令牌
// @Description 驗證帳密後回傳 token，token 內含使用者的第一個商店與最後一張發票
// @Tags        auth
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       username formData string true "使用者登入名稱"
// @Param       password formData string true "使用者密碼"
// @Success     200      {object} dto.TokenResponse
// @Failure     400      {object} dto.HTTPError
// @Failure     401      {object} dto.HTTPError
// @Failure     403      {object} dto.HTTPError
// @Failure     500      {object} dto.HTTPError
// @Router      /auth/token [post]
func TokenHandler(a Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.TokenRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		token, claims, err := a.Login(c.Request().Context(), req.Username, req.Password)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewTokenResponse(token, claims))
	}
}

// RegisterHandler 註冊一般使用者 (Email 會自動轉小寫)
// @Summary     註冊
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     dto.RegisterRequest true "註冊資料"
// @Success     201  {object} dto.RegisterResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Router      /auth/register [post]
func RegisterHandler(a Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.RegisterRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		token, user, err := a.Register(c.Request().Context(), service.RegisterInput{
			Login:    req.Login,
			Email:    strings.ToLower(req.Email),
			Phone:    req.Phone,
			Password: req.Password,
		})
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusCreated, dto.RegisterResponse{
			User:        dto.NewUserResponse(user),
			AccessToken: token,
			TokenType:   "Bearer",
		})
	}
}

// MeHandler 取得目前使用者與可存取商店
// @Summary     目前使用者
// @Tags        auth
// @Produce     json
// @Success     200 {object} dto.MeResponse
// @Failure     401 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /auth/me [get]
func MeHandler(shops ShopLister) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := middleware.PrincipalFrom(c)
		set, err := shops.AccessibleShops(c.Request().Context(), p.User.ID)
		if err != nil {
			return handler.WriteError(c, err)
		}
		ids := set.IDs()
		if ids == nil {
			ids = []int{}
		}
		return c.JSON(http.StatusOK, dto.MeResponse{
			User:          dto.NewUserResponse(p.User),
			ShopID:        p.Claims.ShopID,
			LastInvoiceID: p.Claims.LastInvoiceID,
			Shops:         ids,
		})
	}
}

// ChangePasswordHandler 變更自己的密碼
// @Summary     變更密碼
// @Tags        auth
// @Accept      json
// @Param       body body dto.ChangePasswordRequest true "舊密碼與新密碼"
// @Success     204
// @Failure     400 {object} dto.HTTPError
// @Failure     401 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /auth/change-password [post]
func ChangePasswordHandler(a Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.ChangePasswordRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		if err := a.ChangePassword(c.Request().Context(), middleware.PrincipalFrom(c), req.OldPassword, req.NewPassword); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// SwitchShopHandler 切換 session 的商店情境，回傳新的 token
// @Summary     切換商店
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     dto.SwitchShopRequest true "目標商店"
// @Success     200  {object} dto.TokenResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     403  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /auth/context [post]
func SwitchShopHandler(a Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.SwitchShopRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		token, claims, err := a.SwitchShop(c.Request().Context(), middleware.PrincipalFrom(c), req.ShopID)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewTokenResponse(token, claims))
	}
}
