// File: internal/model/invoice.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	QuantityPlaces int32 = 3
	MoneyPlaces    int32 = 2
)

type Invoice struct {
	ID             int             `db:"id" json:"id"`
	ShopID         int             `db:"shop_id" json:"shop_id"`
	UserID         int             `db:"user_id" json:"user_id"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	ContactInfo    *string         `db:"contact_info" json:"contact_info"`
	AdditionalInfo *string         `db:"additional_info" json:"additional_info"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	IsPaid         bool            `db:"is_paid" json:"is_paid"`

	// hydrated relations
	Shop   *Shop         `json:"shop,omitempty"`
	Author *Author       `json:"author,omitempty"`
	Items  []InvoiceItem `json:"items"`
}

// Author 發票建立者摘要
type Author struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

type InvoiceItem struct {
	ID        int             `db:"id" json:"id"`
	InvoiceID int             `db:"invoice_id" json:"invoice_id"`
	Name      string          `db:"name" json:"name"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Total     decimal.Decimal `db:"total" json:"total"`
}

// NewInvoiceItem normalizes precision and derives the line total.
func NewInvoiceItem(name string, quantity, price decimal.Decimal) InvoiceItem {
	q := quantity.Round(QuantityPlaces)
	p := price.Round(MoneyPlaces)
	return InvoiceItem{
		Name:     name,
		Quantity: q,
		Price:    p,
		Total:    q.Mul(p).Round(MoneyPlaces),
	}
}

// SumItems returns Σ item.Total.
func SumItems(items []InvoiceItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total)
	}
	return sum.Round(MoneyPlaces)
}

// InvoiceUpdate 欄位為 nil 表示不更新
type InvoiceUpdate struct {
	ContactInfo    *string
	AdditionalInfo *string
	IsPaid         *bool
	TotalAmount    *decimal.Decimal
}

// InvoiceFilter 查詢條件；ShopIDs 為可存取商店範圍，永遠套用
type InvoiceFilter struct {
	ShopIDs       []int
	ShopID        *int
	IsPaid        *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}

type InvoiceStats struct {
	TotalInvoices  int             `json:"total_invoices"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AverageAmount  decimal.Decimal `json:"average_amount"`
	PaidInvoices   int             `json:"paid_invoices"`
	UnpaidInvoices int             `json:"unpaid_invoices"`
	ShopID         *int            `json:"shop_id"`
}
