package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"invoice-ledger/internal/cache"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/metrics"
	"invoice-ledger/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ms      *memStore
	db      *database.FakeDB
	tokens  *TokenIssuer
	access  *Access
	auth    *Auth
	ledger  *Ledger
	query   *Query
	dir     *Directory
	metrics *metrics.Metrics
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEnv 建立以記憶體資料為後端的完整服務組合
func newEnv(t *testing.T, c cache.Cache) *testEnv {
	t.Helper()
	t.Cleanup(restoreGlobals)
	ms := newMemStore()
	ms.install()
	db := ms.db()

	tokens, err := NewTokenIssuer("test-secret", "HS256", 15*time.Minute)
	require.NoError(t, err)
	log := discardLogger()
	m := metrics.New()
	access := NewAccess(db, c, time.Minute, log)
	return &testEnv{
		ms:      ms,
		db:      db,
		tokens:  tokens,
		access:  access,
		auth:    NewAuth(db, tokens, access, nil, m, log),
		ledger:  NewLedger(db, tokens, access, m, log),
		query:   NewQuery(db, access),
		dir:     NewDirectory(db, access, log),
		metrics: m,
	}
}

func (e *testEnv) shop(t *testing.T, name string) int {
	t.Helper()
	s, err := e.dir.CreateShop(context.Background(), CreateShopInput{Name: name})
	require.NoError(t, err)
	return s.ID
}

func (e *testEnv) user(t *testing.T, login string, superuser bool, shops ...int) *model.User {
	t.Helper()
	u, err := e.dir.CreateUser(context.Background(), CreateUserInput{
		Login:       login,
		Email:       login + "@example.com",
		Password:    "pw-" + login,
		IsSuperuser: superuser,
		ShopIDs:     shops,
	})
	require.NoError(t, err)
	return u
}

// login 走完整的 Login + Identify 流程
func (e *testEnv) login(t *testing.T, login string) *Principal {
	t.Helper()
	token, _, err := e.auth.Login(context.Background(), login, "pw-"+login)
	require.NoError(t, err)
	return e.identify(t, token)
}

func (e *testEnv) identify(t *testing.T, token string) *Principal {
	t.Helper()
	p, err := e.auth.Identify(context.Background(), token)
	require.NoError(t, err)
	return p
}

// createInvoice 以指定商店與總額建立發票 (無品項)
func (e *testEnv) createInvoice(t *testing.T, p *Principal, shopID int, total string, paid bool) *model.Invoice {
	t.Helper()
	res, err := e.ledger.Create(context.Background(), p, CreateInvoiceInput{
		ShopID:      &shopID,
		TotalAmount: dec(total),
		IsPaid:      paid,
	})
	require.NoError(t, err)
	return res.Invoice
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// memCache 以 map 模擬 redis
type memCache struct {
	cache.FakeCache
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	c := &memCache{data: map[string][]byte{}}
	c.GetFn = func(_ context.Context, key string) *redis.StringCmd {
		c.mu.Lock()
		defer c.mu.Unlock()
		v, ok := c.data[key]
		if !ok {
			return redis.NewStringResult("", redis.Nil)
		}
		return redis.NewStringResult(string(v), nil)
	}
	c.SetFn = func(_ context.Context, key string, val any, _ time.Duration) *redis.StatusCmd {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.data[key] = val.([]byte)
		return redis.NewStatusResult("OK", nil)
	}
	c.DelFn = func(_ context.Context, keys ...string) *redis.IntCmd {
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, k := range keys {
			delete(c.data, k)
		}
		return redis.NewIntResult(int64(len(keys)), nil)
	}
	return c
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
