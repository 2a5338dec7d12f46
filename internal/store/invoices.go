package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/model"

	"github.com/jackc/pgx/v5"
)

const invoiceColumns = `i.id, i.shop_id, i.user_id, i.created_at, i.contact_info, i.additional_info, i.total_amount, i.is_paid`

// hydrated select: invoice + shop + author
const invoiceSelect = `SELECT ` + invoiceColumns + `,
	s.id, s.name, s.photo, s.additional_info, s.is_active, s.created_at,
	u.id, u.login
	FROM invoices i
	JOIN shops s ON s.id = i.shop_id
	JOIN users u ON u.id = i.user_id`

func scanInvoice(row scanner) (*model.Invoice, error) {
	inv := &model.Invoice{}
	if err := row.Scan(
		&inv.ID,
		&inv.ShopID,
		&inv.UserID,
		&inv.CreatedAt,
		&inv.ContactInfo,
		&inv.AdditionalInfo,
		&inv.TotalAmount,
		&inv.IsPaid,
	); err != nil {
		return nil, err
	}
	return inv, nil
}

func scanHydratedInvoice(row scanner) (*model.Invoice, error) {
	inv := &model.Invoice{Shop: &model.Shop{}, Author: &model.Author{}, Items: []model.InvoiceItem{}}
	if err := row.Scan(
		&inv.ID,
		&inv.ShopID,
		&inv.UserID,
		&inv.CreatedAt,
		&inv.ContactInfo,
		&inv.AdditionalInfo,
		&inv.TotalAmount,
		&inv.IsPaid,
		&inv.Shop.ID,
		&inv.Shop.Name,
		&inv.Shop.Photo,
		&inv.Shop.AdditionalInfo,
		&inv.Shop.IsActive,
		&inv.Shop.CreatedAt,
		&inv.Author.ID,
		&inv.Author.Login,
	); err != nil {
		return nil, err
	}
	return inv, nil
}

// InsertInvoice 寫入發票表頭，total_amount 依呼叫端提供的值
func InsertInvoice(ctx context.Context, db database.Querier, inv *model.Invoice) (*model.Invoice, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO invoices (shop_id, user_id, contact_info, additional_info, total_amount, is_paid)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		inv.ShopID,
		inv.UserID,
		inv.ContactInfo,
		inv.AdditionalInfo,
		inv.TotalAmount,
		inv.IsPaid,
	)
	if err := row.Scan(&inv.ID, &inv.CreatedAt); err != nil {
		return nil, fmt.Errorf("InsertInvoice: %w", classify(err, "invoice not found"))
	}
	return inv, nil
}

func InsertItems(ctx context.Context, db database.Querier, invoiceID int, items []model.InvoiceItem) ([]model.InvoiceItem, error) {
	out := make([]model.InvoiceItem, 0, len(items))
	for _, it := range items {
		it.InvoiceID = invoiceID
		err := db.QueryRow(ctx,
			`INSERT INTO invoice_items (invoice_id, name, quantity, price, total)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			invoiceID,
			it.Name,
			it.Quantity,
			it.Price,
			it.Total,
		).Scan(&it.ID)
		if err != nil {
			return nil, fmt.Errorf("InsertItems: %w", classify(err, "invoice not found"))
		}
		out = append(out, it)
	}
	return out, nil
}

func DeleteItems(ctx context.Context, db database.Querier, invoiceID int) error {
	if _, err := db.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("DeleteItems: %w", err)
	}
	return nil
}

// LockInvoice 取得發票並加上列鎖，需在交易內呼叫
func LockInvoice(ctx context.Context, db database.Querier, invoiceID int) (*model.Invoice, error) {
	row := db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices i WHERE i.id = $1 FOR UPDATE`,
		invoiceID,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("LockInvoice: %w", classify(err, "invoice not found"))
	}
	return inv, nil
}

// UpdateInvoiceFields 只更新非 nil 欄位
func UpdateInvoiceFields(ctx context.Context, db database.Querier, invoiceID int, u model.InvoiceUpdate) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.ContactInfo != nil {
		add("contact_info", *u.ContactInfo)
	}
	if u.AdditionalInfo != nil {
		add("additional_info", *u.AdditionalInfo)
	}
	if u.IsPaid != nil {
		add("is_paid", *u.IsPaid)
	}
	if u.TotalAmount != nil {
		add("total_amount", *u.TotalAmount)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, invoiceID)
	sql := fmt.Sprintf(`UPDATE invoices SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("UpdateInvoiceFields: %w", classify(err, "invoice not found"))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateInvoiceFields: %w", apperr.NotFound("invoice not found"))
	}
	return nil
}

// GetInvoice 回傳含商店、作者與品項的發票
func GetInvoice(ctx context.Context, db database.Querier, invoiceID int) (*model.Invoice, error) {
	row := db.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, invoiceID)
	inv, err := scanHydratedInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("GetInvoice: %w", classify(err, "invoice not found"))
	}
	items, err := listItems(ctx, db, []int{inv.ID})
	if err != nil {
		return nil, fmt.Errorf("GetInvoice: %w", err)
	}
	inv.Items = append(inv.Items, items[inv.ID]...)
	return inv, nil
}

func DeleteInvoice(ctx context.Context, db database.Querier, invoiceID int) error {
	tag, err := db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("DeleteInvoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteInvoice: %w", apperr.NotFound("invoice not found"))
	}
	return nil
}

// LatestInvoiceID 使用者在該商店最新的一張發票；沒有時回傳 nil
func LatestInvoiceID(ctx context.Context, db database.Querier, userID, shopID int) (*int, error) {
	var id int
	err := db.QueryRow(ctx,
		`SELECT id FROM invoices WHERE user_id = $1 AND shop_id = $2
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID,
		shopID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestInvoiceID: %w", err)
	}
	return &id, nil
}

// invoiceWhere 組出 AND 條件；shop 範圍永遠套用
func invoiceWhere(f model.InvoiceFilter) (string, []any) {
	args := []any{f.ShopIDs}
	conds := []string{"i.shop_id = ANY($1)"}
	add := func(expr string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	if f.ShopID != nil {
		add("i.shop_id = $%d", *f.ShopID)
	}
	if f.IsPaid != nil {
		add("i.is_paid = $%d", *f.IsPaid)
	}
	if f.CreatedAfter != nil {
		add("i.created_at >= $%d", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		add("i.created_at <= $%d", *f.CreatedBefore)
	}
	if f.MinAmount != nil {
		add("i.total_amount >= $%d", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("i.total_amount <= $%d", *f.MaxAmount)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func ListInvoices(ctx context.Context, db database.Querier, f model.InvoiceFilter, skip, limit int) ([]model.Invoice, error) {
	where, args := invoiceWhere(f)
	args = append(args, limit, skip)
	sql := invoiceSelect + where +
		fmt.Sprintf(` ORDER BY i.created_at DESC, i.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ListInvoices: %w", err)
	}
	invoices := []model.Invoice{}
	for rows.Next() {
		inv, err := scanHydratedInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("ListInvoices: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListInvoices: %w", err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	ids := make([]int, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}
	items, err := listItems(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("ListInvoices: %w", err)
	}
	for i := range invoices {
		invoices[i].Items = append(invoices[i].Items, items[invoices[i].ID]...)
	}
	return invoices, nil
}

func InvoiceStats(ctx context.Context, db database.Querier, f model.InvoiceFilter) (*model.InvoiceStats, error) {
	where, args := invoiceWhere(f)
	row := db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(i.total_amount), 0),
		        COALESCE(AVG(i.total_amount), 0),
		        COUNT(*) FILTER (WHERE i.is_paid),
		        COUNT(*) FILTER (WHERE NOT i.is_paid)
		 FROM invoices i`+where,
		args...,
	)
	st := &model.InvoiceStats{}
	if err := row.Scan(
		&st.TotalInvoices,
		&st.TotalAmount,
		&st.AverageAmount,
		&st.PaidInvoices,
		&st.UnpaidInvoices,
	); err != nil {
		return nil, fmt.Errorf("InvoiceStats: %w", err)
	}
	st.AverageAmount = st.AverageAmount.Round(model.MoneyPlaces)
	return st, nil
}

// listItems 依 invoice_id 分組，組內依 id 排序
func listItems(ctx context.Context, db database.Querier, invoiceIDs []int) (map[int][]model.InvoiceItem, error) {
	rows, err := db.Query(ctx,
		`SELECT id, invoice_id, name, quantity, price, total
		 FROM invoice_items WHERE invoice_id = ANY($1)
		 ORDER BY invoice_id, id`,
		invoiceIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]model.InvoiceItem, len(invoiceIDs))
	for rows.Next() {
		var it model.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Name, &it.Quantity, &it.Price, &it.Total); err != nil {
			return nil, err
		}
		out[it.InvoiceID] = append(out[it.InvoiceID], it)
	}
	return out, rows.Err()
}
