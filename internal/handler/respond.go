// File: internal/handler/respond.go
package handler

import (
	"log/slog"
	"net/http"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/dto"

	"github.com/labstack/echo/v4"
)

// StatusOf 錯誤分類對應的 HTTP 狀態碼
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError 將服務層錯誤轉為 JSON 回應；Internal 錯誤只記錄不外洩
func WriteError(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)
	msg := apperr.MessageOf(err)
	if kind == apperr.KindInternal {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"err", err,
		)
		msg = "internal server error"
	}
	if kind == apperr.KindUnauthenticated {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}
	return c.JSON(status, dto.HTTPError{Message: msg, Kind: kind.String()})
}

// BadRequest 綁定或驗證失敗
func BadRequest(c echo.Context, msg string) error {
	return WriteError(c, apperr.Validation(msg))
}

// BindAndValidate 先 Bind 再以 go-playground/validator 驗證
func BindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, "無效的請求資料", err)
	}
	if err := c.Validate(req); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}
