// File: internal/service/session.go
package service

import (
	"fmt"
	"time"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var parseWithClaims = jwt.ParseWithClaims

// SessionClaims 定義 JWT 負載內容；sub 為使用者 login
type SessionClaims struct {
	UserID        int  `json:"user_id"`
	IsSuperuser   bool `json:"is_superuser"`
	ShopID        *int `json:"user_shop_id"`
	LastInvoiceID *int `json:"last_invoice_id"`
	jwt.RegisteredClaims
}

func intPtr(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// WithShop returns a copy bound to shopID.
func (c SessionClaims) WithShop(shopID *int) SessionClaims {
	c.ShopID = intPtr(shopID)
	c.LastInvoiceID = intPtr(c.LastInvoiceID)
	return c
}

// WithLastInvoice returns a copy whose last_invoice_id is invoiceID.
func (c SessionClaims) WithLastInvoice(invoiceID *int) SessionClaims {
	c.ShopID = intPtr(c.ShopID)
	c.LastInvoiceID = intPtr(invoiceID)
	return c
}

// TokenIssuer 簽發與驗證 HMAC JWT，不保留任何伺服器端 session
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, algorithm string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not set")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing method: %q", algorithm)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}, nil
}

// Issue 依使用者與商店情境產生新 token
func (t *TokenIssuer) Issue(user *model.User, shopID, lastInvoiceID *int) (string, *SessionClaims, error) {
	return t.Reissue(SessionClaims{
		UserID:        user.ID,
		IsSuperuser:   user.IsSuperuser,
		ShopID:        intPtr(shopID),
		LastInvoiceID: intPtr(lastInvoiceID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.Login,
		},
	})
}

// Reissue signs claims with a fresh iat/exp.
func (t *TokenIssuer) Reissue(claims SessionClaims) (string, *SessionClaims, error) {
	now := t.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))

	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, &claims, nil
}

// Verify 驗證簽章、演算法與期限，任何錯誤一律視為未認證
func (t *TokenIssuer) Verify(tokenString string) (*SessionClaims, error) {
	token, err := parseWithClaims(tokenString, &SessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, "invalid or expired token", err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, apperr.Unauthenticated("invalid token")
	}
	return claims, nil
}
