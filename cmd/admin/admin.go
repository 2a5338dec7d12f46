// Command admin 以直接連線資料庫的方式管理使用者、商店與成員資格
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"invoice-ledger/internal/cache"
	"invoice-ledger/internal/config"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/logging"
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/service"

	"golang.org/x/term"
)

var (
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	rollbackAllFn   = database.RollbackAll
	// readPassword 測試時替換，避免碰觸終端機
	readPassword           = term.ReadPassword
	stdout       io.Writer = os.Stdout
	getenv                 = os.Getenv
	exitFunc               = os.Exit
)

const usage = `usage: admin <command> [flags]

commands:
  create-user  -login L -email E [-phone P] [-superuser] [-shops 1,2]
  delete-user  -id N
  activate     -id N
  deactivate   -id N
  users
  create-shop  -name N [-photo P] [-info I]
  delete-shop  -id N
  shops
  grant        -user N -shop N
  revoke       -user N -shop N
  migrate      up|down
`

var errUsage = errors.New("invalid usage")

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("無效的商店 ID: %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func promptPassword() (string, error) {
	fmt.Fprint(stdout, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("讀取密碼失敗: %w", err)
	}
	if len(pw) == 0 {
		return "", errors.New("密碼不可為空")
	}
	return string(pw), nil
}

func migrate(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	switch args[0] {
	case "up":
		if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("Migration 執行失敗: %v", err)
		}
	case "down":
		if err := rollbackAllFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("RollbackAll 失敗: %v", err)
		}
	default:
		return errUsage
	}
	fmt.Fprintf(stdout, "migrate %s: ok\n", args[0])
	return nil
}

// openCache Redis 未設定或無法連線時回傳 nil，快取會在 TTL 後自然過期
func openCache(cfg *config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	c, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn("redis unavailable, cache not invalidated", "err", err)
		return nil
	}
	return c
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cfg, err := config.LoadAdmin(getenv)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, cfg.LogLevel)

	cmd, rest := args[0], args[1:]
	if cmd == "migrate" {
		return migrate(cfg, rest)
	}

	ctx := context.Background()
	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	c := openCache(cfg, log)
	if c != nil {
		defer c.Close()
	}
	dir := service.NewDirectory(db, service.NewAccess(db, c, 0, log), log)
	return dispatch(ctx, dir, cmd, rest)
}

// directory 由 *service.Directory 實作
type directory interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, userID int) error
	SetUserActive(ctx context.Context, userID int, active bool) error
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateShop(ctx context.Context, in service.CreateShopInput) (*model.Shop, error)
	DeleteShop(ctx context.Context, shopID int) error
	ListShops(ctx context.Context) ([]model.Shop, error)
	Grant(ctx context.Context, userID, shopID int) error
	Revoke(ctx context.Context, userID, shopID int) error
}

func dispatch(ctx context.Context, dir directory, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		id        = fs.Int("id", 0, "使用者或商店 ID")
		login     = fs.String("login", "", "登入名稱")
		email     = fs.String("email", "", "Email")
		phone     = fs.String("phone", "", "電話")
		superuser = fs.Bool("superuser", false, "管理員權限")
		shops     = fs.String("shops", "", "以逗號分隔的商店 ID")
		name      = fs.String("name", "", "商店名稱")
		photo     = fs.String("photo", "", "商店圖片")
		info      = fs.String("info", "", "商店備註")
		userID    = fs.Int("user", 0, "使用者 ID")
		shopID    = fs.Int("shop", 0, "商店 ID")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	optional := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	needID := func() error {
		if *id <= 0 {
			return fmt.Errorf("%s: -id 為必填", cmd)
		}
		return nil
	}

	switch cmd {
	case "create-user":
		ids, err := parseIDs(*shops)
		if err != nil {
			return err
		}
		if *login == "" || *email == "" {
			return fmt.Errorf("create-user: -login 與 -email 為必填")
		}
		pw, err := promptPassword()
		if err != nil {
			return err
		}
		u, err := dir.CreateUser(ctx, service.CreateUserInput{
			Login:       *login,
			Email:       strings.ToLower(*email),
			Phone:       optional(*phone),
			Password:    pw,
			IsSuperuser: *superuser,
			ShopIDs:     ids,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "user %d created\n", u.ID)
	case "delete-user":
		if err := needID(); err != nil {
			return err
		}
		if err := dir.DeleteUser(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "user %d deleted\n", *id)
	case "activate", "deactivate":
		if err := needID(); err != nil {
			return err
		}
		if err := dir.SetUserActive(ctx, *id, cmd == "activate"); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "user %d %sd\n", *id, cmd)
	case "users":
		users, err := dir.ListUsers(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLOGIN\tEMAIL\tSUPERUSER\tACTIVE")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\n", u.ID, u.Login, u.Email, u.IsSuperuser, u.IsActive)
		}
		return tw.Flush()
	case "create-shop":
		s, err := dir.CreateShop(ctx, service.CreateShopInput{
			Name:           *name,
			Photo:          optional(*photo),
			AdditionalInfo: optional(*info),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "shop %d created\n", s.ID)
	case "delete-shop":
		if err := needID(); err != nil {
			return err
		}
		if err := dir.DeleteShop(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "shop %d deleted\n", *id)
	case "shops":
		list, err := dir.ListShops(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tACTIVE")
		for _, s := range list {
			fmt.Fprintf(tw, "%d\t%s\t%t\n", s.ID, s.Name, s.IsActive)
		}
		return tw.Flush()
	case "grant", "revoke":
		if *userID <= 0 || *shopID <= 0 {
			return fmt.Errorf("%s: -user 與 -shop 為必填", cmd)
		}
		op := dir.Grant
		if cmd == "revoke" {
			op = dir.Revoke
		}
		if err := op(ctx, *userID, *shopID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s user %d shop %d: ok\n", cmd, *userID, *shopID)
	default:
		return errUsage
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			exitFunc(2)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}
