package store

import (
	"context"
	"fmt"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/model"
)

const shopColumns = `id, name, photo, additional_info, is_active, created_at`

func scanShop(row scanner) (*model.Shop, error) {
	s := &model.Shop{}
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Photo,
		&s.AdditionalInfo,
		&s.IsActive,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return s, nil
}

func CreateShop(ctx context.Context, db database.Querier, s *model.Shop) (*model.Shop, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO shops (name, photo, additional_info, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.Name,
		s.Photo,
		s.AdditionalInfo,
		s.IsActive,
	)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("CreateShop: %w", classify(err, "shop not found"))
	}
	return s, nil
}

func GetShop(ctx context.Context, db database.Querier, shopID int) (*model.Shop, error) {
	row := db.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, shopID)
	s, err := scanShop(row)
	if err != nil {
		return nil, fmt.Errorf("GetShop: %w", classify(err, "shop not found"))
	}
	return s, nil
}

func DeleteShop(ctx context.Context, db database.Querier, shopID int) error {
	tag, err := db.Exec(ctx, `DELETE FROM shops WHERE id = $1`, shopID)
	if err != nil {
		return fmt.Errorf("DeleteShop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteShop: %w", apperr.NotFound("shop not found"))
	}
	return nil
}

func ListShops(ctx context.Context, db database.Querier) ([]model.Shop, error) {
	rows, err := db.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListShops: %w", err)
	}
	defer rows.Close()

	shops := []model.Shop{}
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("ListShops: %w", err)
		}
		shops = append(shops, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListShops: %w", err)
	}
	return shops, nil
}
