// File: internal/service/authentication.go
package service

import (
	"context"
	"errors"
	"log/slog"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/metrics"
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/worker"
)

// Principal 已驗證的請求者：資料庫中的使用者與其 token 內容
type Principal struct {
	User   *model.User
	Claims *SessionClaims
}

type Auth struct {
	db      database.DB
	tokens  *TokenIssuer
	access  *Access
	pool    worker.Pool
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewAuth; pool and m may be nil.
func NewAuth(db database.DB, tokens *TokenIssuer, access *Access, pool worker.Pool, m *metrics.Metrics, log *slog.Logger) *Auth {
	if log == nil {
		log = slog.Default()
	}
	return &Auth{db: db, tokens: tokens, access: access, pool: pool, metrics: m, log: log}
}

var errBadCredentials = apperr.Unauthenticated("incorrect login or password")

// Authenticate 帳號不存在與密碼錯誤回傳相同錯誤
func (a *Auth) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := getUserByLogin(ctx, a.db, login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			a.metrics.ObserveAuth(metrics.OutcomeDenied)
			return nil, errBadCredentials
		}
		a.metrics.ObserveAuth(metrics.OutcomeError)
		return nil, err
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		a.metrics.ObserveAuth(metrics.OutcomeDenied)
		return nil, errBadCredentials
	}
	if !user.IsActive {
		a.metrics.ObserveAuth(metrics.OutcomeDenied)
		return nil, apperr.Forbidden("account disabled")
	}
	a.metrics.ObserveAuth(metrics.OutcomeOK)
	return user, nil
}

// Login 驗證帳密並以第一間商店與該店最新發票作為初始情境
func (a *Auth) Login(ctx context.Context, login, password string) (string, *SessionClaims, error) {
	user, err := a.Authenticate(ctx, login, password)
	if err != nil {
		return "", nil, err
	}
	shopID, err := firstUserShopID(ctx, a.db, user.ID)
	if err != nil {
		return "", nil, err
	}
	var lastID *int
	if shopID != nil {
		if lastID, err = latestInvoiceID(ctx, a.db, user.ID, *shopID); err != nil {
			return "", nil, err
		}
	}
	token, claims, err := a.tokens.Issue(user, shopID, lastID)
	if err != nil {
		return "", nil, err
	}
	a.warmShopCache(user.ID)
	a.log.Info("user logged in", "user_id", user.ID, "shop_id", shopID)
	return token, claims, nil
}

func (a *Auth) warmShopCache(userID int) {
	if a.pool == nil || a.access == nil {
		return
	}
	ok := a.pool.Submit(func() {
		if _, err := a.access.AccessibleShops(context.Background(), userID); err != nil {
			a.log.Warn("warm shop cache failed", "user_id", userID, "error", err)
		}
	})
	if !ok {
		a.log.Debug("warm shop cache dropped", "user_id", userID)
	}
}

// Identify 驗證 token 並重新載入使用者，特權判斷以資料庫為準
func (a *Auth) Identify(ctx context.Context, token string) (*Principal, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := getUserByID(ctx, a.db, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated("user no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("account disabled")
	}
	return &Principal{User: user, Claims: claims}, nil
}

type RegisterInput struct {
	Login    string
	Email    string
	Phone    *string
	Password string
}

// Register 建立一般使用者並回傳 token；login/email 重複回傳 Conflict
func (a *Auth) Register(ctx context.Context, in RegisterInput) (string, *model.User, error) {
	if in.Login == "" || in.Email == "" || in.Password == "" {
		return "", nil, apperr.Validation("login, email and password are required")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return "", nil, err
	}
	user, err := createUser(ctx, a.db, &model.User{
		Login:        in.Login,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		return "", nil, err
	}
	token, _, err := a.tokens.Issue(user, nil, nil)
	if err != nil {
		return "", nil, err
	}
	a.log.Info("user registered", "user_id", user.ID)
	return token, user, nil
}

func (a *Auth) ChangePassword(ctx context.Context, p *Principal, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("new password is required")
	}
	if err := ComparePassword(p.User.PasswordHash, oldPassword); err != nil {
		return apperr.Unauthenticated("current password is incorrect")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := updateUserPassword(ctx, a.db, p.User.ID, hash); err != nil {
		return err
	}
	p.User.PasswordHash = hash
	return nil
}

// SwitchShop 需為該商店成員，回傳綁定新商店情境的 token
func (a *Auth) SwitchShop(ctx context.Context, p *Principal, shopID int) (string, *SessionClaims, error) {
	ok, err := a.access.HasMembership(ctx, p.User.ID, shopID)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, apperr.Forbidden("no access to shop")
	}
	lastID, err := latestInvoiceID(ctx, a.db, p.User.ID, shopID)
	if err != nil {
		return "", nil, err
	}
	claims := p.Claims.WithShop(&shopID).WithLastInvoice(lastID)
	claims.IsSuperuser = p.User.IsSuperuser
	return a.tokens.Reissue(claims)
}
