package service

import (
	"context"
	"sort"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/dto"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/model"
	"github.com/rai-pramana/NyankoGarage-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories for unit testing the service layer. DB() returns nil,
// which makes runTx call the closure directly and the Tx method variants
// ignore their *gorm.DB argument.

// stubProductRepo is an in-memory ProductRepository.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	return r.Create(context.Background(), p)
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListCategories(_ context.Context) ([]string, error) { return nil, nil }

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubStockRepo keeps balances keyed by product. The low-stock queries join
// against the product stub the same way the SQL implementation joins tables.
type stubStockRepo struct {
	stocks   map[uuid.UUID]*model.Stock
	products *stubProductRepo
}

func newStubStockRepo(products *stubProductRepo) *stubStockRepo {
	return &stubStockRepo{stocks: make(map[uuid.UUID]*model.Stock), products: products}
}

func (r *stubStockRepo) CreateTx(_ *gorm.DB, s *model.Stock) error {
	r.stocks[s.ProductID] = s
	return nil
}

func (r *stubStockRepo) FindByProduct(_ context.Context, productID uuid.UUID) (*model.Stock, error) {
	s, ok := r.stocks[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubStockRepo) FindByProductTx(_ *gorm.DB, productID uuid.UUID) (*model.Stock, error) {
	return r.FindByProduct(context.Background(), productID)
}

func (r *stubStockRepo) UpdateQuantityTx(_ *gorm.DB, productID uuid.UUID, quantity int, movedAt time.Time) error {
	s, ok := r.stocks[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Quantity = quantity
	s.LastMovementAt = &movedAt
	return nil
}

func (r *stubStockRepo) lowStockRows() []model.Stock {
	var rows []model.Stock
	for pid, s := range r.stocks {
		p, ok := r.products.products[pid]
		if !ok || !p.Active || s.Quantity > p.MinStockLevel {
			continue
		}
		row := *s
		row.Product = p
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity < rows[j].Quantity
		}
		return rows[i].Product.Name < rows[j].Product.Name
	})
	return rows
}

func (r *stubStockRepo) ListLowStock(_ context.Context) ([]model.Stock, error) {
	return r.lowStockRows(), nil
}

func (r *stubStockRepo) CountLowStock(_ context.Context) (int64, error) {
	return int64(len(r.lowStockRows())), nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockRepository = (*stubStockRepo)(nil)

// stubMovementRepo records movements append-only, newest last.
type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != "" && m.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.Type != "" && string(m.Type) != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) ListRecent(_ context.Context, limit int) ([]model.StockMovement, error) {
	n := len(r.movements)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]model.StockMovement, 0, n)
	for i := len(r.movements) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.movements[i])
	}
	return out, nil
}

// deltaSum returns the sum of all movement deltas for a product — the value
// the ledger invariant says the balance must equal.
func (r *stubMovementRepo) deltaSum(productID uuid.UUID) int {
	sum := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.Delta
		}
	}
	return sum
}

func (r *stubMovementRepo) countFor(productID uuid.UUID) int {
	n := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			n++
		}
	}
	return n
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

// stubTransactionRepo is an in-memory TransactionRepository with a fake
// code sequence.
type stubTransactionRepo struct {
	txs map[uuid.UUID]*model.Transaction
	seq int
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{txs: make(map[uuid.UUID]*model.Transaction)}
}

func (r *stubTransactionRepo) Create(_ context.Context, _ *gorm.DB, t *model.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now().UTC()
	for i := range t.Items {
		if t.Items[i].ID == uuid.Nil {
			t.Items[i].ID = uuid.New()
		}
		t.Items[i].TransactionID = t.ID
	}
	stored := *t
	r.txs[t.ID] = &stored
	return nil
}

func (r *stubTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.txs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	cp.Items = append([]model.TransactionItem(nil), t.Items...)
	return &cp, nil
}

func (r *stubTransactionRepo) List(_ context.Context, _ dto.TransactionFilter) ([]model.Transaction, int64, error) {
	out := make([]model.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransactionRepo) ListRecent(_ context.Context, _ int) ([]model.Transaction, error) {
	out, _, _ := r.List(context.Background(), dto.TransactionFilter{})
	return out, nil
}

func (r *stubTransactionRepo) Save(_ context.Context, t *model.Transaction) error {
	stored := *t
	r.txs[t.ID] = &stored
	return nil
}

func (r *stubTransactionRepo) ReplaceItems(_ context.Context, t *model.Transaction, items []model.TransactionItem) error {
	t.Items = items
	return r.Save(context.Background(), t)
}

func (r *stubTransactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.txs, id)
	return nil
}

func (r *stubTransactionRepo) NextCodeNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubTransactionRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from []model.TransactionStatus, to model.TransactionStatus, set map[string]interface{}) (int64, error) {
	t, ok := r.txs[id]
	if !ok {
		return 0, nil
	}
	eligible := false
	for _, f := range from {
		if t.Status == f {
			eligible = true
		}
	}
	if !eligible {
		return 0, nil
	}
	t.Status = to
	if v, ok := set["completed_at"].(time.Time); ok {
		t.CompletedAt = &v
	}
	if v, ok := set["confirmed_by_id"].(uuid.UUID); ok {
		t.ConfirmedByID = &v
	}
	return 1, nil
}

func (r *stubTransactionRepo) DB() *gorm.DB { return nil }

var _ repository.TransactionRepository = (*stubTransactionRepo)(nil)

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role && u.Active {
			n++
		}
	}
	return n, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// stubSessionRepo is an in-memory SessionRepository.
type stubSessionRepo struct {
	sessions map[uuid.UUID]*model.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, s *model.Session) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *stubSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *stubSessionRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

var _ repository.SessionRepository = (*stubSessionRepo)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedProduct(products *stubProductRepo, stocks *stubStockRepo, name, sku string, quantity, minLevel int) *model.Product {
	p := &model.Product{
		ID:            uuid.New(),
		SKU:           sku,
		Name:          name,
		Category:      "parts",
		Unit:          "unit",
		MinStockLevel: minLevel,
		Active:        true,
	}
	products.products[p.ID] = p
	stocks.stocks[p.ID] = &model.Stock{ProductID: p.ID, Quantity: quantity}
	return p
}
