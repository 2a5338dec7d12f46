package service

import (
	"context"
	"log/slog"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/metrics"
	"invoice-ledger/internal/model"

	"github.com/shopspring/decimal"
)

type ItemInput struct {
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

type CreateInvoiceInput struct {
	// ShopID 為 nil 時使用 session 的商店情境
	ShopID         *int
	Items          []ItemInput
	ContactInfo    *string
	AdditionalInfo *string
	TotalAmount    decimal.Decimal
	IsPaid         bool
}

// UpdateInvoiceInput: nil fields are left unchanged. A non-nil Items
// (including an empty slice) replaces every item and recomputes the total.
type UpdateInvoiceInput struct {
	ContactInfo    *string
	AdditionalInfo *string
	IsPaid         *bool
	Items          []ItemInput
}

// CreateResult.Token is empty when the session context did not change.
type CreateResult struct {
	Invoice *model.Invoice
	Token   string
	Claims  *SessionClaims
}

type Ledger struct {
	db      database.DB
	tokens  *TokenIssuer
	access  *Access
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewLedger(db database.DB, tokens *TokenIssuer, access *Access, m *metrics.Metrics, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{db: db, tokens: tokens, access: access, metrics: m, log: log}
}

func buildItems(in []ItemInput) ([]model.InvoiceItem, error) {
	items := make([]model.InvoiceItem, 0, len(in))
	for _, it := range in {
		if it.Name == "" {
			return nil, apperr.Validation("item name is required")
		}
		items = append(items, model.NewInvoiceItem(it.Name, it.Quantity, it.Price))
	}
	return items, nil
}

func (l *Ledger) observe(op string, err error) {
	switch {
	case err == nil:
		l.metrics.ObserveInvoice(op, metrics.OutcomeOK)
	case apperr.KindOf(err) == apperr.KindInternal:
		l.metrics.ObserveInvoice(op, metrics.OutcomeError)
	default:
		l.metrics.ObserveInvoice(op, metrics.OutcomeDenied)
	}
}

// Create 在單一交易內寫入發票與品項；total_amount 以呼叫端提供的值儲存
func (l *Ledger) Create(ctx context.Context, p *Principal, in CreateInvoiceInput) (res *CreateResult, err error) {
	defer func() { l.observe("create", err) }()

	var shopID int
	switch {
	case in.ShopID != nil:
		shopID = *in.ShopID
	case p.Claims.ShopID != nil:
		shopID = *p.Claims.ShopID
	default:
		return nil, apperr.Validation("shop_id is required")
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	actor, err := l.access.ActorFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := Require(actor, Resource{ShopID: shopID}, ActionCreate); err != nil {
		return nil, err
	}
	if _, err := getShop(ctx, l.db, shopID); err != nil {
		return nil, err
	}

	var invoiceID int
	err = withTx(ctx, l.db, func(q database.Querier) error {
		inv, err := insertInvoice(ctx, q, &model.Invoice{
			ShopID:         shopID,
			UserID:         p.User.ID,
			ContactInfo:    in.ContactInfo,
			AdditionalInfo: in.AdditionalInfo,
			TotalAmount:    in.TotalAmount.Round(model.MoneyPlaces),
			IsPaid:         in.IsPaid,
		})
		if err != nil {
			return err
		}
		invoiceID = inv.ID
		_, err = insertItems(ctx, q, inv.ID, items)
		return err
	})
	if err != nil {
		return nil, err
	}

	inv, err := getInvoice(ctx, l.db, invoiceID)
	if err != nil {
		return nil, err
	}
	res = &CreateResult{Invoice: inv}
	if p.Claims.ShopID != nil && *p.Claims.ShopID == shopID {
		res.Token, res.Claims, err = l.tokens.Reissue(p.Claims.WithLastInvoice(&invoiceID))
		if err != nil {
			return nil, err
		}
	}
	l.log.Info("invoice created", "invoice_id", invoiceID, "shop_id", shopID, "user_id", p.User.ID)
	return res, nil
}

// Fetch 不存在回傳 NotFound，非該商店成員回傳 Forbidden
func (l *Ledger) Fetch(ctx context.Context, p *Principal, invoiceID int) (*model.Invoice, error) {
	inv, err := getInvoice(ctx, l.db, invoiceID)
	if err != nil {
		return nil, err
	}
	actor, err := l.access.ActorFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := Require(actor, Resource{ShopID: inv.ShopID}, ActionRead); err != nil {
		return nil, err
	}
	return inv, nil
}

// Last fetches the invoice named by the session's last_invoice_id.
func (l *Ledger) Last(ctx context.Context, p *Principal) (*model.Invoice, error) {
	if p.Claims.LastInvoiceID == nil {
		return nil, apperr.NotFound("no recent invoice in session")
	}
	return l.Fetch(ctx, p, *p.Claims.LastInvoiceID)
}

// Update 先確認存在與特權，再於交易內鎖定該列並套用變更
func (l *Ledger) Update(ctx context.Context, p *Principal, invoiceID int, in UpdateInvoiceInput) (inv *model.Invoice, err error) {
	defer func() { l.observe("update", err) }()

	current, err := getInvoice(ctx, l.db, invoiceID)
	if err != nil {
		return nil, err
	}
	actor := Actor{UserID: p.User.ID, IsSuperuser: p.User.IsSuperuser}
	if err := Require(actor, Resource{ShopID: current.ShopID}, ActionUpdate); err != nil {
		return nil, err
	}

	var items []model.InvoiceItem
	if in.Items != nil {
		if items, err = buildItems(in.Items); err != nil {
			return nil, err
		}
	}

	err = withTx(ctx, l.db, func(q database.Querier) error {
		if _, err := lockInvoice(ctx, q, invoiceID); err != nil {
			return err
		}
		patch := model.InvoiceUpdate{
			ContactInfo:    in.ContactInfo,
			AdditionalInfo: in.AdditionalInfo,
			IsPaid:         in.IsPaid,
		}
		if in.Items != nil {
			if err := deleteItems(ctx, q, invoiceID); err != nil {
				return err
			}
			if _, err := insertItems(ctx, q, invoiceID, items); err != nil {
				return err
			}
			total := model.SumItems(items)
			patch.TotalAmount = &total
		}
		return updateInvoiceFields(ctx, q, invoiceID, patch)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("invoice updated", "invoice_id", invoiceID, "user_id", p.User.ID, "items_replaced", in.Items != nil)
	return getInvoice(ctx, l.db, invoiceID)
}

func (l *Ledger) SetPaid(ctx context.Context, p *Principal, invoiceID int, paid bool) (*model.Invoice, error) {
	return l.Update(ctx, p, invoiceID, UpdateInvoiceInput{IsPaid: &paid})
}

func (l *Ledger) Delete(ctx context.Context, p *Principal, invoiceID int) (err error) {
	defer func() { l.observe("delete", err) }()

	current, err := getInvoice(ctx, l.db, invoiceID)
	if err != nil {
		return err
	}
	actor := Actor{UserID: p.User.ID, IsSuperuser: p.User.IsSuperuser}
	if err := Require(actor, Resource{ShopID: current.ShopID}, ActionDelete); err != nil {
		return err
	}
	if err := deleteInvoice(ctx, l.db, invoiceID); err != nil {
		return err
	}
	l.log.Info("invoice deleted", "invoice_id", invoiceID, "user_id", p.User.ID)
	return nil
}
