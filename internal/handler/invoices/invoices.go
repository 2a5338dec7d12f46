// File: internal/handler/invoices/invoices.go
package invoices

import (
	"context"
	"net/http"
	"time"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/dto"
	"invoice-ledger/internal/handler"
	"invoice-ledger/internal/middleware"
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Ledger 由 *service.Ledger 實作
type Ledger interface {
	Create(ctx context.Context, p *service.Principal, in service.CreateInvoiceInput) (*service.CreateResult, error)
	Fetch(ctx context.Context, p *service.Principal, invoiceID int) (*model.Invoice, error)
	Last(ctx context.Context, p *service.Principal) (*model.Invoice, error)
	Update(ctx context.Context, p *service.Principal, invoiceID int, in service.UpdateInvoiceInput) (*model.Invoice, error)
	SetPaid(ctx context.Context, p *service.Principal, invoiceID int, paid bool) (*model.Invoice, error)
	Delete(ctx context.Context, p *service.Principal, invoiceID int) error
}

// Finder 由 *service.Query 實作
type Finder interface {
	List(ctx context.Context, p *service.Principal, f model.InvoiceFilter, skip, limit int) ([]model.Invoice, error)
	Stats(ctx context.Context, p *service.Principal, f model.InvoiceFilter) (*model.InvoiceStats, error)
}

func invoiceID(c echo.Context) (int, error) {
	var id int
	if err := echo.PathParamsBinder(c).MustInt("id", &id).BindError(); err != nil {
		return 0, apperr.Validation("invalid invoice id")
	}
	return id, nil
}

// parseFilter 讀取查詢參數；時間格式為 RFC3339
func parseFilter(c echo.Context) (model.InvoiceFilter, error) {
	var (
		f                    model.InvoiceFilter
		shopID               int
		paid                 bool
		after, before        time.Time
		minAmount, maxAmount decimal.Decimal
	)
	b := echo.QueryParamsBinder(c).
		Int("shop_id", &shopID).
		Bool("is_paid", &paid).
		Time("created_after", &after, time.RFC3339).
		Time("created_before", &before, time.RFC3339).
		CustomFunc("min_amount", decimalParam(&minAmount)).
		CustomFunc("max_amount", decimalParam(&maxAmount))
	if err := b.BindError(); err != nil {
		return f, apperr.Wrap(apperr.KindValidation, "invalid query parameter", err)
	}
	has := func(name string) bool { return c.QueryParam(name) != "" }
	if has("shop_id") {
		f.ShopID = &shopID
	}
	if has("is_paid") {
		f.IsPaid = &paid
	}
	if has("created_after") {
		f.CreatedAfter = &after
	}
	if has("created_before") {
		f.CreatedBefore = &before
	}
	if has("min_amount") {
		f.MinAmount = &minAmount
	}
	if has("max_amount") {
		f.MaxAmount = &maxAmount
	}
	return f, nil
}

func decimalParam(dst *decimal.Decimal) func([]string) []error {
	return func(values []string) []error {
		if values[0] == "" {
			return nil
		}
		d, err := decimal.NewFromString(values[0])
		if err != nil {
			return []error{err}
		}
		*dst = d
		return nil
	}
}

// CreateHandler 建立發票與品項
// @Summary     建立發票
// @Description shop_id 省略時使用 token 的商店情境；發票屬於 session 商店時回傳新的 token
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Param       body body     dto.CreateInvoiceRequest true "發票內容"
// @Success     201  {object} dto.CreateInvoiceResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     403  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices [post]
func CreateHandler(l Ledger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateInvoiceRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		res, err := l.Create(c.Request().Context(), middleware.PrincipalFrom(c), req.Input())
		if err != nil {
			return handler.WriteError(c, err)
		}
		resp := dto.CreateInvoiceResponse{Invoice: res.Invoice}
		if res.Token != "" {
			tok := dto.NewTokenResponse(res.Token, res.Claims)
			resp.NewToken = &tok
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

// ListHandler 列出可存取商店內的發票
// @Summary     發票列表
// @Tags        invoices
// @Produce     json
// @Param       shop_id        query int    false "商店"
// @Param       is_paid        query bool   false "付款狀態"
// @Param       created_after  query string false "RFC3339，含"
// @Param       created_before query string false "RFC3339，含"
// @Param       min_amount     query string false "最小總額，含"
// @Param       max_amount     query string false "最大總額，含"
// @Param       skip           query int    false "略過筆數"
// @Param       limit          query int    false "筆數上限 (預設與最大 100)"
// @Success     200 {array}  model.Invoice
// @Failure     400 {object} dto.HTTPError
// @Failure     403 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices [get]
func ListHandler(q Finder) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := parseFilter(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		skip, limit := 0, service.DefaultListLimit
		if err := echo.QueryParamsBinder(c).Int("skip", &skip).Int("limit", &limit).BindError(); err != nil {
			return handler.WriteError(c, apperr.Wrap(apperr.KindValidation, "invalid paging parameter", err))
		}
		list, err := q.List(c.Request().Context(), middleware.PrincipalFrom(c), f, skip, limit)
		if err != nil {
			return handler.WriteError(c, err)
		}
		if list == nil {
			list = []model.Invoice{}
		}
		return c.JSON(http.StatusOK, list)
	}
}

// StatsHandler 發票統計
// @Summary     發票統計
// @Description 未指定 shop_id 時使用 token 的商店情境，沒有則涵蓋所有可存取商店
// @Tags        invoices
// @Produce     json
// @Param       shop_id        query int    false "商店"
// @Param       is_paid        query bool   false "付款狀態"
// @Param       created_after  query string false "RFC3339"
// @Param       created_before query string false "RFC3339"
// @Success     200 {object} model.InvoiceStats
// @Failure     400 {object} dto.HTTPError
// @Failure     403 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices/stats/summary [get]
func StatsHandler(q Finder) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := parseFilter(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		st, err := q.Stats(c.Request().Context(), middleware.PrincipalFrom(c), f)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, st)
	}
}

// LastHandler token 內 last_invoice_id 指向的發票
// @Summary     最後一張發票
// @Tags        invoices
// @Produce     json
// @Success     200 {object} model.Invoice
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices/last [get]
func LastHandler(l Ledger) echo.HandlerFunc {
	return func(c echo.Context) error {
		inv, err := l.Last(c.Request().Context(), middleware.PrincipalFrom(c))
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, inv)
	}
}

// GetHandler 取得單張發票
// @Summary     取得發票
// @Tags        invoices
// @Produce     json
// @Param       id  path     int true "發票 ID"
// @Success     200 {object} model.Invoice
// @Failure     403 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices/{id} [get]
func GetHandler(l Ledger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := invoiceID(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		inv, err := l.Fetch(c.Request().Context(), middleware.PrincipalFrom(c), id)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, inv)
	}
}

// UpdateHandler 部分更新發票 (需管理員權限)
// @Summary     更新發票
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Param       id   path     int                      true "發票 ID"
// @Param       body body     dto.UpdateInvoiceRequest true "更新欄位"
// @Success     200  {object} model.Invoice
// @Failure     400  {object} dto.HTTPError
// @Failure     403  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices/{id} [patch]
func UpdateHandler(l Ledger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := invoiceID(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		var req dto.UpdateInvoiceRequest
		if err := handler.BindAndValidate(c, &req); err != nil {
			return handler.WriteError(c, err)
		}
		inv, err := l.Update(c.Request().Context(), middleware.PrincipalFrom(c), id, req.Input())
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, inv)
	}
}

// StatusHandler 切換付款狀態 (需管理員權限)
// @Summary     更新付款狀態
// @Tags        invoices
// @Produce     json
// @Param       id      path     int  true "發票 ID"
// @Param       is_paid query    bool true "付款狀態"
// @Success     200     {object} model.Invoice
// @Failure     400     {object} dto.HTTPError
// @Failure     403     {object} dto.HTTPError
// @Failure     404     {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices/{id}/status [patch]
func StatusHandler(l Ledger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := invoiceID(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		var paid bool
		if err := echo.QueryParamsBinder(c).MustBool("is_paid", &paid).BindError(); err != nil {
			return handler.BadRequest(c, "is_paid is required")
		}
		inv, err := l.SetPaid(c.Request().Context(), middleware.PrincipalFrom(c), id, paid)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, inv)
	}
}

// DeleteHandler 刪除發票 (需管理員權限)
// @Summary     刪除發票
// @Tags        invoices
// @Param       id path int true "發票 ID"
// @Success     204
// @Failure     403 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /invoices/{id} [delete]
func DeleteHandler(l Ledger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := invoiceID(c)
		if err != nil {
			return handler.WriteError(c, err)
		}
		if err := l.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
