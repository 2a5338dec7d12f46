// File: internal/dto/user.go
package dto

import (
	"time"

	"invoice-ledger/internal/model"
)

// swagger:model dto.UserResponse
type UserResponse struct {
	ID          int       `json:"id" example:"1"`
	Login       string    `json:"login" example:"alice"`
	Email       string    `json:"email" example:"alice@example.com"`
	Phone       *string   `json:"phone,omitempty" example:"0912345678"`
	IsSuperuser bool      `json:"is_superuser" example:"false"`
	IsActive    bool      `json:"is_active" example:"true"`
	CreatedAt   time.Time `json:"created_at" example:"2025-05-01T15:04:05Z"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Login:       u.Login,
		Email:       u.Email,
		Phone:       u.Phone,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// MeResponse 目前使用者與 session 商店情境
// swagger:model dto.MeResponse
type MeResponse struct {
	User          UserResponse `json:"user"`
	ShopID        *int         `json:"user_shop_id" example:"1"`
	LastInvoiceID *int         `json:"last_invoice_id" example:"42"`
	Shops         []int        `json:"shops" example:"1,2"`
}

// swagger:model dto.CreateUserRequest
type CreateUserRequest struct {
	Login       string  `json:"login" validate:"required,min=3,max=50" example:"bob"`
	Email       string  `json:"email" validate:"required,email" example:"bob@example.com"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Password    string  `json:"password" validate:"required,min=6" example:"Secret123!"`
	IsSuperuser bool    `json:"is_superuser" example:"false"`
	ShopIDs     []int   `json:"shop_ids" validate:"dive,gt=0" example:"1,2"`
}

// swagger:model dto.SetActiveRequest
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required" example:"false"`
}
