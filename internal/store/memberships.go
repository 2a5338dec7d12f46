package store

import (
	"context"
	"errors"
	"fmt"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"

	"github.com/jackc/pgx/v5"
)

// AddMembership 重複授權不視為錯誤
func AddMembership(ctx context.Context, db database.Querier, userID, shopID int) error {
	_, err := db.Exec(ctx,
		`INSERT INTO users_shops (user_id, shop_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, shop_id) DO NOTHING`,
		userID,
		shopID,
	)
	if err != nil {
		return fmt.Errorf("AddMembership: %w", classify(err, "membership not found"))
	}
	return nil
}

func RemoveMembership(ctx context.Context, db database.Querier, userID, shopID int) error {
	tag, err := db.Exec(ctx,
		`DELETE FROM users_shops WHERE user_id = $1 AND shop_id = $2`,
		userID,
		shopID,
	)
	if err != nil {
		return fmt.Errorf("RemoveMembership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("RemoveMembership: %w", apperr.NotFound("membership not found"))
	}
	return nil
}

func HasMembership(ctx context.Context, db database.Querier, userID, shopID int) (bool, error) {
	var ok bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users_shops WHERE user_id = $1 AND shop_id = $2)`,
		userID,
		shopID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("HasMembership: %w", err)
	}
	return ok, nil
}

// ListUserShopIDs 依 shop_id 遞增排序
func ListUserShopIDs(ctx context.Context, db database.Querier, userID int) ([]int, error) {
	return listIDs(ctx, db, "ListUserShopIDs",
		`SELECT shop_id FROM users_shops WHERE user_id = $1 ORDER BY shop_id`, userID)
}

func ListShopMemberIDs(ctx context.Context, db database.Querier, shopID int) ([]int, error) {
	return listIDs(ctx, db, "ListShopMemberIDs",
		`SELECT user_id FROM users_shops WHERE shop_id = $1 ORDER BY user_id`, shopID)
}

// FirstUserShopID 回傳最小的 shop_id；沒有任何商店時回傳 nil
func FirstUserShopID(ctx context.Context, db database.Querier, userID int) (*int, error) {
	var id int
	err := db.QueryRow(ctx,
		`SELECT shop_id FROM users_shops WHERE user_id = $1 ORDER BY shop_id LIMIT 1`,
		userID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FirstUserShopID: %w", err)
	}
	return &id, nil
}

func listIDs(ctx context.Context, db database.Querier, op, sql string, arg int) ([]int, error) {
	rows, err := db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
