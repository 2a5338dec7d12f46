package service

import (
	"context"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/model"

	"github.com/shopspring/decimal"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

type Query struct {
	db     database.DB
	access *Access
}

func NewQuery(db database.DB, access *Access) *Query {
	return &Query{db: db, access: access}
}

// NormalizeLimit: <=0 uses the default, larger values are clamped.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func validateRanges(f model.InvoiceFilter) error {
	if f.CreatedAfter != nil && f.CreatedBefore != nil && f.CreatedAfter.After(*f.CreatedBefore) {
		return apperr.Validation("created_after must not be later than created_before")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		return apperr.Validation("min_amount must not exceed max_amount")
	}
	return nil
}

// List 查詢結果永遠限縮在可存取商店內。
// 與 Stats 不同，未指定 shop_id 時不套用 session 商店，回傳全部可存取商店的發票。
func (qs *Query) List(ctx context.Context, p *Principal, f model.InvoiceFilter, skip, limit int) ([]model.Invoice, error) {
	if skip < 0 {
		return nil, apperr.Validation("skip must not be negative")
	}
	if err := validateRanges(f); err != nil {
		return nil, err
	}
	set, err := qs.access.MemberShops(ctx, p.User.ID)
	if err != nil {
		return nil, err
	}
	if f.ShopID != nil && !set.Contains(*f.ShopID) {
		return nil, apperr.Forbidden("no access to shop")
	}
	if set.Len() == 0 {
		return []model.Invoice{}, nil
	}
	f.ShopIDs = set.IDs()
	return listInvoices(ctx, qs.db, f, skip, NormalizeLimit(limit))
}

// Stats 未指定商店時以 session 商店為準，再退回全部可存取商店
func (qs *Query) Stats(ctx context.Context, p *Principal, f model.InvoiceFilter) (*model.InvoiceStats, error) {
	if err := validateRanges(f); err != nil {
		return nil, err
	}
	set, err := qs.access.MemberShops(ctx, p.User.ID)
	if err != nil {
		return nil, err
	}
	if f.ShopID == nil && p.Claims != nil {
		f.ShopID = intPtr(p.Claims.ShopID)
	}
	if f.ShopID != nil && !set.Contains(*f.ShopID) {
		return nil, apperr.Forbidden("no access to shop")
	}
	if set.Len() == 0 {
		return &model.InvoiceStats{TotalAmount: decimal.Zero, AverageAmount: decimal.Zero}, nil
	}
	f.ShopIDs = set.IDs()
	st, err := invoiceStats(ctx, qs.db, f)
	if err != nil {
		return nil, err
	}
	st.ShopID = intPtr(f.ShopID)
	return st, nil
}
