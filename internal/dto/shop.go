// File: internal/dto/shop.go
package dto

// swagger:model dto.CreateShopRequest
type CreateShopRequest struct {
	Name           string  `json:"name" validate:"required,max=100" example:"Main Street Bakery"`
	Photo          *string `json:"photo,omitempty" validate:"omitempty,max=255"`
	AdditionalInfo *string `json:"additional_info,omitempty"`
}
