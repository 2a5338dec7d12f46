// File: internal/dto/auth_request.go
package dto

// swagger:model dto.RegisterRequest
type RegisterRequest struct {
	Login    string  `json:"login" validate:"required,min=3,max=50" example:"alice"`
	Email    string  `json:"email" validate:"required,email" example:"alice@example.com"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20" example:"0912345678"`
	Password string  `json:"password" validate:"required,min=6" example:"Secret123!"`
}

// swagger:model dto.ChangePasswordRequest
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required" example:"Secret123!"`
	NewPassword string `json:"new_password" validate:"required,min=6" example:"NewSecret456!"`
}

// swagger:model dto.SwitchShopRequest
type SwitchShopRequest struct {
	ShopID int `json:"shop_id" validate:"required,gt=0" example:"2"`
}
