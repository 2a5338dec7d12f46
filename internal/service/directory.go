package service

import (
	"context"
	"log/slog"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/model"
)

type CreateUserInput struct {
	Login       string
	Email       string
	Phone       *string
	Password    string
	IsSuperuser bool
	ShopIDs     []int
}

type CreateShopInput struct {
	Name           string
	Photo          *string
	AdditionalInfo *string
}

// Directory 管理使用者、商店與成員資格，供管理員 API 與 admin CLI 使用
type Directory struct {
	db     database.DB
	access *Access
	log    *slog.Logger
}

func NewDirectory(db database.DB, access *Access, log *slog.Logger) *Directory {
	if log == nil {
		log = slog.Default()
	}
	return &Directory{db: db, access: access, log: log}
}

func (d *Directory) invalidate(ctx context.Context, userIDs ...int) {
	if d.access != nil {
		d.access.Invalidate(ctx, userIDs...)
	}
}

// CreateUser 使用者與成員資格在同一交易內建立
func (d *Directory) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if in.Login == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("login, email and password are required")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	var user *model.User
	err = withTx(ctx, d.db, func(q database.Querier) error {
		u, err := createUser(ctx, q, &model.User{
			Login:        in.Login,
			Email:        in.Email,
			Phone:        in.Phone,
			PasswordHash: hash,
			IsSuperuser:  in.IsSuperuser,
			IsActive:     true,
		})
		if err != nil {
			return err
		}
		for _, shopID := range in.ShopIDs {
			if err := addMembership(ctx, q, u.ID, shopID); err != nil {
				return err
			}
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.invalidate(ctx, user.ID)
	d.log.Info("user created", "user_id", user.ID, "superuser", user.IsSuperuser, "shops", in.ShopIDs)
	return user, nil
}

func (d *Directory) DeleteUser(ctx context.Context, userID int) error {
	if err := deleteUser(ctx, d.db, userID); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	d.log.Info("user deleted", "user_id", userID)
	return nil
}

func (d *Directory) SetUserActive(ctx context.Context, userID int, active bool) error {
	if err := setUserActive(ctx, d.db, userID, active); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	d.log.Info("user active flag changed", "user_id", userID, "active", active)
	return nil
}

func (d *Directory) ListUsers(ctx context.Context) ([]model.User, error) {
	return listUsers(ctx, d.db)
}

func (d *Directory) CreateShop(ctx context.Context, in CreateShopInput) (*model.Shop, error) {
	if in.Name == "" {
		return nil, apperr.Validation("shop name is required")
	}
	shop, err := createShop(ctx, d.db, &model.Shop{
		Name:           in.Name,
		Photo:          in.Photo,
		AdditionalInfo: in.AdditionalInfo,
		IsActive:       true,
	})
	if err != nil {
		return nil, err
	}
	d.log.Info("shop created", "shop_id", shop.ID)
	return shop, nil
}

// DeleteShop 刪除商店 (成員資格與發票隨之級聯刪除)
func (d *Directory) DeleteShop(ctx context.Context, shopID int) error {
	members, err := listShopMemberIDs(ctx, d.db, shopID)
	if err != nil {
		return err
	}
	if err := deleteShop(ctx, d.db, shopID); err != nil {
		return err
	}
	d.invalidate(ctx, members...)
	d.log.Info("shop deleted", "shop_id", shopID, "members", len(members))
	return nil
}

func (d *Directory) ListShops(ctx context.Context) ([]model.Shop, error) {
	return listShops(ctx, d.db)
}

// Grant is idempotent.
func (d *Directory) Grant(ctx context.Context, userID, shopID int) error {
	if err := addMembership(ctx, d.db, userID, shopID); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	d.log.Info("membership granted", "user_id", userID, "shop_id", shopID)
	return nil
}

func (d *Directory) Revoke(ctx context.Context, userID, shopID int) error {
	if err := removeMembership(ctx, d.db, userID, shopID); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	d.log.Info("membership revoked", "user_id", userID, "shop_id", shopID)
	return nil
}
