// File: internal/dto/invoice.go
package dto

import (
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/service"

	"github.com/shopspring/decimal"
)

// swagger:model dto.InvoiceItemRequest
type InvoiceItemRequest struct {
	Name     string          `json:"name" validate:"required,max=255" example:"Coffee beans"`
	Quantity decimal.Decimal `json:"quantity" swaggertype:"string" example:"1.5"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"12.40"`
}

// CreateInvoiceRequest shop_id 省略時使用 token 的商店情境
// swagger:model dto.CreateInvoiceRequest
type CreateInvoiceRequest struct {
	ShopID         *int                 `json:"shop_id,omitempty" validate:"omitempty,gt=0" example:"1"`
	Items          []InvoiceItemRequest `json:"items" validate:"dive"`
	ContactInfo    *string              `json:"contact_info,omitempty"`
	AdditionalInfo *string              `json:"additional_info,omitempty"`
	TotalAmount    decimal.Decimal      `json:"total_amount" swaggertype:"string" example:"18.60"`
	IsPaid         bool                 `json:"is_paid" example:"false"`
}

// UpdateInvoiceRequest 欄位省略表示不變；items 給定 (含空陣列) 時整批取代
// swagger:model dto.UpdateInvoiceRequest
type UpdateInvoiceRequest struct {
	ContactInfo    *string              `json:"contact_info,omitempty"`
	AdditionalInfo *string              `json:"additional_info,omitempty"`
	IsPaid         *bool                `json:"is_paid,omitempty"`
	Items          []InvoiceItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

// swagger:model dto.CreateInvoiceResponse
type CreateInvoiceResponse struct {
	Invoice  *model.Invoice `json:"invoice"`
	NewToken *TokenResponse `json:"new_token,omitempty"`
}

func itemInputs(in []InvoiceItemRequest) []service.ItemInput {
	if in == nil {
		return nil
	}
	out := make([]service.ItemInput, 0, len(in))
	for _, it := range in {
		out = append(out, service.ItemInput{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return out
}

func (r CreateInvoiceRequest) Input() service.CreateInvoiceInput {
	return service.CreateInvoiceInput{
		ShopID:         r.ShopID,
		Items:          itemInputs(r.Items),
		ContactInfo:    r.ContactInfo,
		AdditionalInfo: r.AdditionalInfo,
		TotalAmount:    r.TotalAmount,
		IsPaid:         r.IsPaid,
	}
}

// Input keeps the nil/empty distinction of Items.
func (r UpdateInvoiceRequest) Input() service.UpdateInvoiceInput {
	return service.UpdateInvoiceInput{
		ContactInfo:    r.ContactInfo,
		AdditionalInfo: r.AdditionalInfo,
		IsPaid:         r.IsPaid,
		Items:          itemInputs(r.Items),
	}
}
