package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/cache"
	"invoice-ledger/internal/database"
)

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

type Decision int

const (
	Deny Decision = iota
	Allow
)

// ShopSet 使用者可存取的商店集合，IDs 遞增排序
type ShopSet struct {
	ids []int
}

func NewShopSet(ids ...int) ShopSet {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return ShopSet{ids: out}
}

func (s ShopSet) Contains(shopID int) bool {
	i := sort.SearchInts(s.ids, shopID)
	return i < len(s.ids) && s.ids[i] == shopID
}

func (s ShopSet) IDs() []int {
	return append([]int(nil), s.ids...)
}

func (s ShopSet) Len() int { return len(s.ids) }

// Actor 發出請求的使用者；IsSuperuser 取自資料庫而非 token
type Actor struct {
	UserID      int
	IsSuperuser bool
	Shops       ShopSet
}

type Resource struct {
	ShopID int
}

// Authorize 是唯一的授權規則：
// 讀取與建立需要該商店的成員資格；修改與刪除只看特權旗標。
func Authorize(actor Actor, res Resource, action Action) Decision {
	switch action {
	case ActionRead, ActionCreate:
		if actor.Shops.Contains(res.ShopID) {
			return Allow
		}
	case ActionUpdate, ActionDelete:
		if actor.IsSuperuser {
			return Allow
		}
	}
	return Deny
}

// Require turns a Deny into a Forbidden error.
func Require(actor Actor, res Resource, action Action) error {
	if Authorize(actor, res, action) == Allow {
		return nil
	}
	switch action {
	case ActionUpdate, ActionDelete:
		return apperr.Forbidden(fmt.Sprintf("superuser privileges required to %s invoices", action))
	default:
		return apperr.Forbidden(fmt.Sprintf("no access to shop %d", res.ShopID))
	}
}

// Access 由 users_shops 推導可存取商店。
// 授權判斷一律直接查詢資料庫；redis 快取只供顯示用途 (如 /auth/me)。
type Access struct {
	db    database.DB
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewAccess; c may be nil to disable caching.
func NewAccess(db database.DB, c cache.Cache, ttl time.Duration, log *slog.Logger) *Access {
	if log == nil {
		log = slog.Default()
	}
	return &Access{db: db, cache: c, ttl: ttl, log: log}
}

// AccessibleShops 讀取快取的商店集合，可能落後於撤銷；不可用於授權
func (a *Access) AccessibleShops(ctx context.Context, userID int) (ShopSet, error) {
	if a.cache != nil {
		ids, ok, err := cache.GetShopSet(ctx, a.cache, userID)
		if err != nil {
			a.log.Warn("shop cache read failed", "user_id", userID, "error", err)
		} else if ok {
			return NewShopSet(ids...), nil
		}
	}

	ids, err := listUserShopIDs(ctx, a.db, userID)
	if err != nil {
		return ShopSet{}, err
	}
	if a.cache != nil {
		if err := cache.SetShopSet(ctx, a.cache, userID, ids, a.ttl); err != nil {
			a.log.Warn("shop cache write failed", "user_id", userID, "error", err)
		}
	}
	return NewShopSet(ids...), nil
}

// MemberShops 直接自 users_shops 讀取，作為授權範圍
func (a *Access) MemberShops(ctx context.Context, userID int) (ShopSet, error) {
	ids, err := listUserShopIDs(ctx, a.db, userID)
	if err != nil {
		return ShopSet{}, err
	}
	return NewShopSet(ids...), nil
}

// HasMembership 以 (user_id, shop_id) 複合鍵查詢是否存在
func (a *Access) HasMembership(ctx context.Context, userID, shopID int) (bool, error) {
	return hasMembership(ctx, a.db, userID, shopID)
}

// ActorFor 組出 Principal 的授權主體，商店集合取自資料庫
func (a *Access) ActorFor(ctx context.Context, p *Principal) (Actor, error) {
	set, err := a.MemberShops(ctx, p.User.ID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: p.User.ID, IsSuperuser: p.User.IsSuperuser, Shops: set}, nil
}

// Invalidate drops cached shop sets; failures are logged only.
func (a *Access) Invalidate(ctx context.Context, userIDs ...int) {
	if a.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := cache.InvalidateShopSets(ctx, a.cache, userIDs...); err != nil {
		a.log.Warn("shop cache invalidation failed", "user_ids", userIDs, "error", err)
	}
}
