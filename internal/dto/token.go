// File: internal/dto/token.go
package dto

import (
	"time"

	"invoice-ledger/internal/service"
)

// swagger:model dto.TokenRequest
type TokenRequest struct {
	Username string `form:"username" validate:"required" example:"alice"`
	Password string `form:"password" validate:"required" example:"Secret123!"`
}

// swagger:model dto.TokenResponse
type TokenResponse struct {
	AccessToken   string `json:"access_token" example:"..."`
	TokenType     string `json:"token_type" example:"Bearer"`
	ExpiresIn     int    `json:"expires_in" example:"900"`
	ShopID        *int   `json:"user_shop_id" example:"1"`
	LastInvoiceID *int   `json:"last_invoice_id" example:"42"`
}

// NewTokenResponse 由簽發後的 claims 計算剩餘秒數
func NewTokenResponse(token string, claims *service.SessionClaims) TokenResponse {
	resp := TokenResponse{AccessToken: token, TokenType: "Bearer"}
	if claims == nil {
		return resp
	}
	resp.ShopID = claims.ShopID
	resp.LastInvoiceID = claims.LastInvoiceID
	if claims.ExpiresAt != nil && claims.IssuedAt != nil {
		resp.ExpiresIn = int(claims.ExpiresAt.Sub(claims.IssuedAt.Time) / time.Second)
	}
	return resp
}

// swagger:model dto.RegisterResponse
type RegisterResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token" example:"..."`
	TokenType   string       `json:"token_type" example:"Bearer"`
}
