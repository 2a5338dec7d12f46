package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"invoice-ledger/internal/apperr"
	"invoice-ledger/internal/database"
	"invoice-ledger/internal/model"
	"invoice-ledger/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

/* ---------- 記憶體版資料庫 ---------- */

type memData struct {
	users    map[int]model.User
	shops    map[int]model.Shop
	members  map[[2]int]bool
	invoices map[int]model.Invoice
	items    map[int][]model.InvoiceItem
	seq      map[string]int
	clock    time.Time
}

func (d memData) clone() memData {
	c := memData{
		users:    make(map[int]model.User, len(d.users)),
		shops:    make(map[int]model.Shop, len(d.shops)),
		members:  make(map[[2]int]bool, len(d.members)),
		invoices: make(map[int]model.Invoice, len(d.invoices)),
		items:    make(map[int][]model.InvoiceItem, len(d.items)),
		seq:      make(map[string]int, len(d.seq)),
		clock:    d.clock,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.shops {
		c.shops[k] = v
	}
	for k, v := range d.members {
		c.members[k] = v
	}
	for k, v := range d.invoices {
		c.invoices[k] = v
	}
	for k, v := range d.items {
		c.items[k] = append([]model.InvoiceItem(nil), v...)
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

type memStore struct {
	mu   sync.Mutex
	data memData
	// fail 依操作名稱注入錯誤
	fail map[string]error

	begun      int
	rolledBack int
}

func newMemStore() *memStore {
	return &memStore{
		data: memData{
			users:    map[int]model.User{},
			shops:    map[int]model.Shop{},
			members:  map[[2]int]bool{},
			invoices: map[int]model.Invoice{},
			items:    map[int][]model.InvoiceItem{},
			seq:      map[string]int{},
			clock:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		},
		fail: map[string]error{},
	}
}

func (m *memStore) next(table string) int {
	m.data.seq[table]++
	return m.data.seq[table]
}

func (m *memStore) tick() time.Time {
	m.data.clock = m.data.clock.Add(time.Minute)
	return m.data.clock
}

func (m *memStore) failed(op string) error {
	return m.fail[op]
}

func (m *memStore) db() *database.FakeDB {
	return &database.FakeDB{
		BeginFn: func(context.Context) (pgx.Tx, error) {
			m.mu.Lock()
			snap := m.data.clone()
			m.begun++
			m.mu.Unlock()
			return &database.FakeTx{RollbackFn: func(context.Context) error {
				m.mu.Lock()
				m.data = snap
				m.rolledBack++
				m.mu.Unlock()
				return nil
			}}, nil
		},
		PingFn: func(context.Context) error { return nil },
	}
}

func (m *memStore) hydrate(inv model.Invoice) *model.Invoice {
	shop := m.data.shops[inv.ShopID]
	author := m.data.users[inv.UserID]
	inv.Shop = &shop
	inv.Author = &model.Author{ID: author.ID, Login: author.Login}
	inv.Items = append([]model.InvoiceItem{}, m.data.items[inv.ID]...)
	return &inv
}

func (m *memStore) matches(inv model.Invoice, f model.InvoiceFilter) bool {
	in := false
	for _, id := range f.ShopIDs {
		if id == inv.ShopID {
			in = true
		}
	}
	switch {
	case !in:
		return false
	case f.ShopID != nil && *f.ShopID != inv.ShopID:
		return false
	case f.IsPaid != nil && *f.IsPaid != inv.IsPaid:
		return false
	case f.CreatedAfter != nil && inv.CreatedAt.Before(*f.CreatedAfter):
		return false
	case f.CreatedBefore != nil && inv.CreatedAt.After(*f.CreatedBefore):
		return false
	case f.MinAmount != nil && inv.TotalAmount.LessThan(*f.MinAmount):
		return false
	case f.MaxAmount != nil && inv.TotalAmount.GreaterThan(*f.MaxAmount):
		return false
	}
	return true
}

func (m *memStore) filtered(f model.InvoiceFilter) []model.Invoice {
	var out []model.Invoice
	for _, inv := range m.data.invoices {
		if m.matches(inv, f) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// install 以記憶體實作覆寫所有資料存取替換點
func (m *memStore) install() {
	bcryptGenerateFromPassword = func(p []byte, _ int) ([]byte, error) {
		return bcrypt.GenerateFromPassword(p, bcrypt.MinCost)
	}

	getUserByID = func(_ context.Context, _ database.Querier, id int) (*model.User, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("getUserByID"); err != nil {
			return nil, err
		}
		u, ok := m.data.users[id]
		if !ok {
			return nil, apperr.NotFound("user not found")
		}
		return &u, nil
	}
	getUserByLogin = func(_ context.Context, _ database.Querier, login string) (*model.User, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("getUserByLogin"); err != nil {
			return nil, err
		}
		for _, u := range m.data.users {
			if u.Login == login {
				return &u, nil
			}
		}
		return nil, apperr.NotFound("user not found")
	}
	createUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, other := range m.data.users {
			if other.Login == u.Login || other.Email == u.Email {
				return nil, apperr.Conflict("already exists")
			}
		}
		u.ID = m.next("users")
		u.CreatedAt = m.tick()
		m.data.users[u.ID] = *u
		return u, nil
	}
	updateUserPassword = func(_ context.Context, _ database.Querier, id int, hash string) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		u, ok := m.data.users[id]
		if !ok {
			return apperr.NotFound("user not found")
		}
		u.PasswordHash = hash
		m.data.users[id] = u
		return nil
	}
	setUserActive = func(_ context.Context, _ database.Querier, id int, active bool) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		u, ok := m.data.users[id]
		if !ok {
			return apperr.NotFound("user not found")
		}
		u.IsActive = active
		m.data.users[id] = u
		return nil
	}
	deleteUser = func(_ context.Context, _ database.Querier, id int) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.data.users[id]; !ok {
			return apperr.NotFound("user not found")
		}
		delete(m.data.users, id)
		for k := range m.data.members {
			if k[0] == id {
				delete(m.data.members, k)
			}
		}
		for invID, inv := range m.data.invoices {
			if inv.UserID == id {
				delete(m.data.invoices, invID)
				delete(m.data.items, invID)
			}
		}
		return nil
	}
	listUsers = func(context.Context, database.Querier) ([]model.User, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		out := []model.User{}
		for _, u := range m.data.users {
			out = append(out, u)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}

	createShop = func(_ context.Context, _ database.Querier, s *model.Shop) (*model.Shop, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		s.ID = m.next("shops")
		s.CreatedAt = m.tick()
		m.data.shops[s.ID] = *s
		return s, nil
	}
	getShop = func(_ context.Context, _ database.Querier, id int) (*model.Shop, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		s, ok := m.data.shops[id]
		if !ok {
			return nil, apperr.NotFound("shop not found")
		}
		return &s, nil
	}
	deleteShop = func(_ context.Context, _ database.Querier, id int) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.data.shops[id]; !ok {
			return apperr.NotFound("shop not found")
		}
		delete(m.data.shops, id)
		for k := range m.data.members {
			if k[1] == id {
				delete(m.data.members, k)
			}
		}
		for invID, inv := range m.data.invoices {
			if inv.ShopID == id {
				delete(m.data.invoices, invID)
				delete(m.data.items, invID)
			}
		}
		return nil
	}
	listShops = func(context.Context, database.Querier) ([]model.Shop, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		out := []model.Shop{}
		for _, s := range m.data.shops {
			out = append(out, s)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}

	addMembership = func(_ context.Context, _ database.Querier, userID, shopID int) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("addMembership"); err != nil {
			return err
		}
		_, uok := m.data.users[userID]
		_, sok := m.data.shops[shopID]
		if !uok || !sok {
			return apperr.NotFound("referenced record not found")
		}
		m.data.members[[2]int{userID, shopID}] = true
		return nil
	}
	removeMembership = func(_ context.Context, _ database.Querier, userID, shopID int) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		k := [2]int{userID, shopID}
		if !m.data.members[k] {
			return apperr.NotFound("membership not found")
		}
		delete(m.data.members, k)
		return nil
	}
	hasMembership = func(_ context.Context, _ database.Querier, userID, shopID int) (bool, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("hasMembership"); err != nil {
			return false, err
		}
		return m.data.members[[2]int{userID, shopID}], nil
	}
	listUserShopIDs = func(_ context.Context, _ database.Querier, userID int) ([]int, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("listUserShopIDs"); err != nil {
			return nil, err
		}
		ids := []int{}
		for k := range m.data.members {
			if k[0] == userID {
				ids = append(ids, k[1])
			}
		}
		sort.Ints(ids)
		return ids, nil
	}
	listShopMemberIDs = func(_ context.Context, _ database.Querier, shopID int) ([]int, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		ids := []int{}
		for k := range m.data.members {
			if k[1] == shopID {
				ids = append(ids, k[0])
			}
		}
		sort.Ints(ids)
		return ids, nil
	}
	firstUserShopID = func(ctx context.Context, q database.Querier, userID int) (*int, error) {
		ids, err := listUserShopIDs(ctx, q, userID)
		if err != nil || len(ids) == 0 {
			return nil, err
		}
		return &ids[0], nil
	}

	insertInvoice = func(_ context.Context, _ database.Querier, inv *model.Invoice) (*model.Invoice, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("insertInvoice"); err != nil {
			return nil, err
		}
		inv.ID = m.next("invoices")
		inv.CreatedAt = m.tick()
		m.data.invoices[inv.ID] = *inv
		return inv, nil
	}
	insertItems = func(_ context.Context, _ database.Querier, invoiceID int, items []model.InvoiceItem) ([]model.InvoiceItem, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("insertItems"); err != nil {
			return nil, err
		}
		out := make([]model.InvoiceItem, 0, len(items))
		for _, it := range items {
			it.ID = m.next("items")
			it.InvoiceID = invoiceID
			out = append(out, it)
		}
		m.data.items[invoiceID] = append(m.data.items[invoiceID], out...)
		return out, nil
	}
	deleteItems = func(_ context.Context, _ database.Querier, invoiceID int) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.data.items, invoiceID)
		return nil
	}
	lockInvoice = func(_ context.Context, _ database.Querier, id int) (*model.Invoice, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		inv, ok := m.data.invoices[id]
		if !ok {
			return nil, apperr.NotFound("invoice not found")
		}
		return &inv, nil
	}
	updateInvoiceFields = func(_ context.Context, _ database.Querier, id int, u model.InvoiceUpdate) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.failed("updateInvoiceFields"); err != nil {
			return err
		}
		inv, ok := m.data.invoices[id]
		if !ok {
			return apperr.NotFound("invoice not found")
		}
		if u.ContactInfo != nil {
			inv.ContactInfo = u.ContactInfo
		}
		if u.AdditionalInfo != nil {
			inv.AdditionalInfo = u.AdditionalInfo
		}
		if u.IsPaid != nil {
			inv.IsPaid = *u.IsPaid
		}
		if u.TotalAmount != nil {
			inv.TotalAmount = *u.TotalAmount
		}
		m.data.invoices[id] = inv
		return nil
	}
	getInvoice = func(_ context.Context, _ database.Querier, id int) (*model.Invoice, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		inv, ok := m.data.invoices[id]
		if !ok {
			return nil, apperr.NotFound("invoice not found")
		}
		return m.hydrate(inv), nil
	}
	deleteInvoice = func(_ context.Context, _ database.Querier, id int) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.data.invoices[id]; !ok {
			return apperr.NotFound("invoice not found")
		}
		delete(m.data.invoices, id)
		delete(m.data.items, id)
		return nil
	}
	latestInvoiceID = func(_ context.Context, _ database.Querier, userID, shopID int) (*int, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		var best *model.Invoice
		for _, inv := range m.data.invoices {
			if inv.UserID != userID || inv.ShopID != shopID {
				continue
			}
			if best == nil || inv.CreatedAt.After(best.CreatedAt) ||
				(inv.CreatedAt.Equal(best.CreatedAt) && inv.ID > best.ID) {
				inv := inv
				best = &inv
			}
		}
		if best == nil {
			return nil, nil
		}
		return &best.ID, nil
	}
	listInvoices = func(_ context.Context, _ database.Querier, f model.InvoiceFilter, skip, limit int) ([]model.Invoice, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		all := m.filtered(f)
		out := []model.Invoice{}
		for i := skip; i < len(all) && len(out) < limit; i++ {
			out = append(out, *m.hydrate(all[i]))
		}
		return out, nil
	}
	invoiceStats = func(_ context.Context, _ database.Querier, f model.InvoiceFilter) (*model.InvoiceStats, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		st := &model.InvoiceStats{TotalAmount: decimal.Zero, AverageAmount: decimal.Zero}
		for _, inv := range m.filtered(f) {
			st.TotalInvoices++
			st.TotalAmount = st.TotalAmount.Add(inv.TotalAmount)
			if inv.IsPaid {
				st.PaidInvoices++
			} else {
				st.UnpaidInvoices++
			}
		}
		if st.TotalInvoices > 0 {
			st.AverageAmount = st.TotalAmount.Div(decimal.NewFromInt(int64(st.TotalInvoices))).Round(model.MoneyPlaces)
		}
		return st, nil
	}
}

func restoreGlobals() {
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	parseWithClaims = jwt.ParseWithClaims
	withTx = database.WithTx

	getUserByID = store.GetUserByID
	getUserByLogin = store.GetUserByLogin
	createUser = store.CreateUser
	updateUserPassword = store.UpdateUserPassword
	setUserActive = store.SetUserActive
	deleteUser = store.DeleteUser
	listUsers = store.ListUsers

	createShop = store.CreateShop
	getShop = store.GetShop
	deleteShop = store.DeleteShop
	listShops = store.ListShops

	addMembership = store.AddMembership
	removeMembership = store.RemoveMembership
	hasMembership = store.HasMembership
	listUserShopIDs = store.ListUserShopIDs
	listShopMemberIDs = store.ListShopMemberIDs
	firstUserShopID = store.FirstUserShopID

	insertInvoice = store.InsertInvoice
	insertItems = store.InsertItems
	deleteItems = store.DeleteItems
	lockInvoice = store.LockInvoice
	updateInvoiceFields = store.UpdateInvoiceFields
	getInvoice = store.GetInvoice
	deleteInvoice = store.DeleteInvoice
	latestInvoiceID = store.LatestInvoiceID
	listInvoices = store.ListInvoices
	invoiceStats = store.InvoiceStats
}
