// File: internal/handler/admin/admin.go
package admin

import (
	"context"
	"net/http"
	"strings"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/dto"
	"invoice-ledger/internal/handler"
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/service"

	"github.com/labstack/echo/v4"
)

// Directory 由 *service.Directory 實作
type Directory interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, userID int) error
	SetUserActive(ctx context.Context, userID int, active bool) error
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateShop(ctx context.Context, in service.CreateShopInput) (*model.Shop, error)
	DeleteShop(ctx context.Context, shopID int) error
	ListShops(ctx context.Context) ([]model.Shop, error)
	Grant(ctx context.Context, userID, shopID int) error
	Revoke(ctx context.Context, userID, shopID int) error
}

func pathInt(c echo.Context, name string) (int, error) {
	var v int
	if err := echo.PathParamsBinder(c).MustInt(name, &v).BindError(); err != nil {
		return 0, apperr.Validation("invalid " + name)
	}
	return v, nil
}

// ListUsersHandler 列出所有使用者
// @Summary     使用者列表
// @Tags        admin
// @Produce     json
// @Success     200 {array}  dto.UserResponse
// @Failure     403 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/users [get]
func ListUsersHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := d.ListUsers(c.Request().Context())
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponses(users))
	}
}

// CreateUserHandler 建立使用者並加入商店 (Email 會自動轉小寫)
// @Summary     建立使用者
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       body body     dto.CreateUserRequest true "使用者資料"
// @Success     201  {object} dto.UserResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/users [post]
func CreateUserHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateUserRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		user, err := d.CreateUser(c.Request().Context(), service.CreateUserInput{
			Login:       req.Login,
			Email:       strings.ToLower(req.Email),
			Phone:       req.Phone,
			Password:    req.Password,
			IsSuperuser: req.IsSuperuser,
			ShopIDs:     req.ShopIDs,
		})
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusCreated, dto.NewUserResponse(user))
	}
}

// DeleteUserHandler 刪除使用者 (其發票一併刪除)
// @Summary     刪除使用者
// @Tags        admin
// @Param       id path int true "使用者 ID"
// @Success     204
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/users/{id} [delete]
func DeleteUserHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathInt(c, "id")
		if err != nil {
			return handler.WriteError(c, err)
		}
		if err := d.DeleteUser(c.Request().Context(), id); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// SetUserActiveHandler 啟用或停用帳號
// @Summary     啟用/停用使用者
// @Tags        admin
// @Accept      json
// @Param       id   path int                  true "使用者 ID"
// @Param       body body dto.SetActiveRequest true "是否啟用"
// @Success     204
// @Failure     400 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/users/{id}/active [put]
func SetUserActiveHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathInt(c, "id")
		if err != nil {
			return handler.WriteError(c, err)
		}
		var req dto.SetActiveRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		if err := d.SetUserActive(c.Request().Context(), id, *req.IsActive); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// ListShopsHandler 列出所有商店
// @Summary     商店列表
// @Tags        admin
// @Produce     json
// @Success     200 {array}  model.Shop
// @Security    ApiKeyAuth
// @Router      /admin/shops [get]
func ListShopsHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		shops, err := d.ListShops(c.Request().Context())
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, shops)
	}
}

// CreateShopHandler 建立商店
// @Summary     建立商店
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       body body     dto.CreateShopRequest true "商店資料"
// @Success     201  {object} model.Shop
// @Failure     400  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/shops [post]
func CreateShopHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateShopRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		shop, err := d.CreateShop(c.Request().Context(), service.CreateShopInput{
			Name:           req.Name,
			Photo:          req.Photo,
			AdditionalInfo: req.AdditionalInfo,
		})
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusCreated, shop)
	}
}

// DeleteShopHandler 刪除商店 (成員資格與發票一併刪除)
// @Summary     刪除商店
// @Tags        admin
// @Param       id path int true "商店 ID"
// @Success     204
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/shops/{id} [delete]
func DeleteShopHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathInt(c, "id")
		if err != nil {
			return handler.WriteError(c, err)
		}
		if err := d.DeleteShop(c.Request().Context(), id); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func membership(c echo.Context) (userID, shopID int, err error) {
	if shopID, err = pathInt(c, "id"); err != nil {
		return 0, 0, err
	}
	if userID, err = pathInt(c, "user_id"); err != nil {
		return 0, 0, err
	}
	return userID, shopID, nil
}

// GrantHandler 將使用者加入商店 (重複加入不視為錯誤)
// @Summary     加入商店成員
// @Tags        admin
// @Param       id      path int true "商店 ID"
// @Param       user_id path int true "使用者 ID"
// @Success     204
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/shops/{id}/members/{user_id} [put]
func GrantHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, shopID, err := membership(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		if err := d.Grant(c.Request().Context(), userID, shopID); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// RevokeHandler 將使用者移出商店
// @Summary     移除商店成員
// @Tags        admin
// @Param       id      path int true "商店 ID"
// @Param       user_id path int true "使用者 ID"
// @Success     204
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /admin/shops/{id}/members/{user_id} [delete]
func RevokeHandler(d Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, shopID, err := membership(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		if err := d.Revoke(c.Request().Context(), userID, shopID); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
