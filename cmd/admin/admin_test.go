package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/cache"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/service"

	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func restoreGlobals() {
	newPgxPool = database.NewPgxPool
	newRedisClient = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	rollbackAllFn = database.RollbackAll
	readPassword = term.ReadPassword
	stdout = os.Stdout
	getenv = os.Getenv
	exitFunc = os.Exit
}

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Cleanup(restoreGlobals)
	buf := &bytes.Buffer{}
	stdout = buf
	return buf
}

type stubDir struct {
	err     error
	created service.CreateUserInput
	shop    service.CreateShopInput
	calls   []string
	args    []any
}

func (s *stubDir) rec(name string, args ...any) error {
	s.calls = append(s.calls, name)
	s.args = args
	return s.err
}

func (s *stubDir) CreateUser(_ context.Context, in service.CreateUserInput) (*model.User, error) {
	s.created = in
	if err := s.rec("CreateUser"); err != nil {
		return nil, err
	}
	return &model.User{ID: 11}, nil
}
func (s *stubDir) DeleteUser(_ context.Context, id int) error { return s.rec("DeleteUser", id) }
func (s *stubDir) SetUserActive(_ context.Context, id int, a bool) error {
	return s.rec("SetUserActive", id, a)
}
func (s *stubDir) ListUsers(context.Context) ([]model.User, error) {
	return []model.User{{ID: 1, Login: "root", Email: "root@example.com", IsSuperuser: true, IsActive: true}}, s.rec("ListUsers")
}
func (s *stubDir) CreateShop(_ context.Context, in service.CreateShopInput) (*model.Shop, error) {
	s.shop = in
	if err := s.rec("CreateShop"); err != nil {
		return nil, err
	}
	return &model.Shop{ID: 4, Name: in.Name}, nil
}
func (s *stubDir) DeleteShop(_ context.Context, id int) error { return s.rec("DeleteShop", id) }
func (s *stubDir) ListShops(context.Context) ([]model.Shop, error) {
	return []model.Shop{{ID: 4, Name: "Bakery", IsActive: true}}, s.rec("ListShops")
}
func (s *stubDir) Grant(_ context.Context, u, sh int) error  { return s.rec("Grant", u, sh) }
func (s *stubDir) Revoke(_ context.Context, u, sh int) error { return s.rec("Revoke", u, sh) }

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 1, 2,,3 ")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, ids)
	ids, err = parseIDs("")
	require.NoError(t, err)
	require.Nil(t, ids)
	_, err = parseIDs("1,x")
	require.Error(t, err)
	_, err = parseIDs("0")
	require.Error(t, err)
}

func TestCreateUserCommand(t *testing.T) {
	out := capture(t)
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	d := &stubDir{}
	ctx := context.Background()

	err := dispatch(ctx, d, "create-user", []string{"-login", "bob", "-email", "Bob@Example.com", "-superuser", "-shops", "1,2"})
	require.NoError(t, err)
	require.Equal(t, "bob", d.created.Login)
	require.Equal(t, "bob@example.com", d.created.Email)
	require.Equal(t, "s3cret", d.created.Password)
	require.True(t, d.created.IsSuperuser)
	require.Equal(t, []int{1, 2}, d.created.ShopIDs)
	require.Nil(t, d.created.Phone)
	require.Contains(t, out.String(), "user 11 created")

	require.Error(t, dispatch(ctx, d, "create-user", []string{"-login", "bob"}))

	readPassword = func(int) ([]byte, error) { return nil, nil }
	require.Error(t, dispatch(ctx, d, "create-user", []string{"-login", "bob", "-email", "b@x"}))

	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	require.Error(t, dispatch(ctx, d, "create-user", []string{"-login", "bob", "-email", "b@x"}))

	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }
	d.err = apperr.Conflict("already exists")
	require.ErrorIs(t, dispatch(ctx, d, "create-user", []string{"-login", "bob", "-email", "b@x"}), apperr.ErrConflict)
}

func TestDirectoryCommands(t *testing.T) {
	out := capture(t)
	d := &stubDir{}
	ctx := context.Background()

	require.NoError(t, dispatch(ctx, d, "deactivate", []string{"-id", "3"}))
	require.Equal(t, []any{3, false}, d.args)
	require.Contains(t, out.String(), "user 3 deactivated")

	require.NoError(t, dispatch(ctx, d, "activate", []string{"-id", "3"}))
	require.Equal(t, []any{3, true}, d.args)

	require.Error(t, dispatch(ctx, d, "delete-user", nil))
	require.NoError(t, dispatch(ctx, d, "delete-user", []string{"-id", "3"}))
	require.Equal(t, "DeleteUser", d.calls[len(d.calls)-1])

	require.NoError(t, dispatch(ctx, d, "create-shop", []string{"-name", "Bakery", "-info", "corner"}))
	require.Equal(t, "corner", *d.shop.AdditionalInfo)
	require.Nil(t, d.shop.Photo)

	require.NoError(t, dispatch(ctx, d, "delete-shop", []string{"-id", "4"}))
	require.Equal(t, []any{4}, d.args)

	require.Error(t, dispatch(ctx, d, "grant", []string{"-user", "2"}))
	require.NoError(t, dispatch(ctx, d, "grant", []string{"-user", "2", "-shop", "4"}))
	require.Equal(t, "Grant", d.calls[len(d.calls)-1])
	require.NoError(t, dispatch(ctx, d, "revoke", []string{"-user", "2", "-shop", "4"}))
	require.Equal(t, "Revoke", d.calls[len(d.calls)-1])
	require.Equal(t, []any{2, 4}, d.args)

	out.Reset()
	require.NoError(t, dispatch(ctx, d, "users", nil))
	require.Contains(t, out.String(), "root@example.com")
	out.Reset()
	require.NoError(t, dispatch(ctx, d, "shops", nil))
	require.Contains(t, out.String(), "Bakery")

	require.ErrorIs(t, dispatch(ctx, d, "bogus", nil), errUsage)
	require.ErrorIs(t, dispatch(ctx, d, "users", []string{"-nope"}), errUsage)
}

func TestMigrateCommand(t *testing.T) {
	out := capture(t)
	getenv = func(k string) string {
		if k == "DATABASE_URL" {
			return "postgres://x"
		}
		return ""
	}
	var up, down bool
	runMigrationsFn = func(url string) error { up = url == "postgres://x"; return nil }
	rollbackAllFn = func(string) error { down = true; return nil }

	require.NoError(t, run([]string{"migrate", "up"}))
	require.True(t, up)
	require.NoError(t, run([]string{"migrate", "down"}))
	require.True(t, down)
	require.Contains(t, out.String(), "migrate down: ok")

	require.ErrorIs(t, run([]string{"migrate"}), errUsage)
	require.ErrorIs(t, run([]string{"migrate", "sideways"}), errUsage)

	runMigrationsFn = func(string) error { return errors.New("dirty") }
	require.Error(t, run([]string{"migrate", "up"}))
}

func TestRunConnections(t *testing.T) {
	capture(t)
	vars := map[string]string{}
	getenv = func(k string) string { return vars[k] }

	require.ErrorIs(t, run(nil), errUsage)
	require.Error(t, run([]string{"users"}))

	vars["DATABASE_URL"] = "postgres://x"
	newPgxPool = func(context.Context, string) (database.DB, error) { return nil, errors.New("refused") }
	require.Error(t, run([]string{"users"}))

	closed := map[string]bool{}
	newPgxPool = func(context.Context, string) (database.DB, error) {
		return &database.FakeDB{CloseFn: func() { closed["db"] = true }}, nil
	}
	vars["REDIS_ADDR"] = "r:6379"
	newRedisClient = func(addr, _ string, _ int) (cache.Cache, error) {
		require.Equal(t, "r:6379", addr)
		return &cache.FakeCache{CloseFn: func() error { closed["redis"] = true; return nil }}, nil
	}
	// 未知指令在連線後才被拒絕
	require.ErrorIs(t, run([]string{"bogus"}), errUsage)
	require.True(t, closed["db"])
	require.True(t, closed["redis"])

	newRedisClient = func(string, string, int) (cache.Cache, error) { return nil, errors.New("down") }
	closed = map[string]bool{}
	require.ErrorIs(t, run([]string{"bogus"}), errUsage)
	require.True(t, closed["db"])
}

func TestMainExitCodes(t *testing.T) {
	capture(t)
	args := os.Args
	t.Cleanup(func() { os.Args = args })
	code := -1
	exitFunc = func(c int) { code = c }
	getenv = func(string) string { return "" }

	os.Args = []string{"admin"}
	main()
	require.Equal(t, 2, code)

	os.Args = []string{"admin", "users"}
	main()
	require.Equal(t, 1, code)
}
