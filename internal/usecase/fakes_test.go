package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memStore is an in-memory database. memUoW gives it transactions by
// serializing them and restoring a snapshot on error.
type memStore struct {
	mu  sync.Mutex
	seq int64

	categories   map[int64]domain.Category
	products     map[int64]domain.Product
	variations   map[int64]domain.ProductVariation
	stockLogs    []domain.StockLogEntry
	orders       map[int64]domain.Order
	lines        []domain.OrderLine
	preorders    map[int64]domain.Preorder
	preorderLogs []domain.PreorderStatusLog
	cart         map[int64]domain.CartItem
	payments     []domain.Payment

	// failAddLine, when set, is consulted before every order line insert.
	// It runs with mu held.
	failAddLine func(line domain.OrderLine, index int) error
	// failPayment, when set, is returned by every payment insert.
	failPayment error
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[int64]domain.Category{},
		products:   map[int64]domain.Product{},
		variations: map[int64]domain.ProductVariation{},
		orders:     map[int64]domain.Order{},
		preorders:  map[int64]domain.Preorder{},
		cart:       map[int64]domain.CartItem{},
	}
}

type memSnapshot struct {
	categories   map[int64]domain.Category
	products     map[int64]domain.Product
	variations   map[int64]domain.ProductVariation
	stockLogs    []domain.StockLogEntry
	orders       map[int64]domain.Order
	lines        []domain.OrderLine
	preorders    map[int64]domain.Preorder
	preorderLogs []domain.PreorderStatusLog
	cart         map[int64]domain.CartItem
	payments     []domain.Payment
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		categories:   copyMap(s.categories),
		products:     copyMap(s.products),
		variations:   copyMap(s.variations),
		stockLogs:    append([]domain.StockLogEntry(nil), s.stockLogs...),
		orders:       copyMap(s.orders),
		lines:        append([]domain.OrderLine(nil), s.lines...),
		preorders:    copyMap(s.preorders),
		preorderLogs: append([]domain.PreorderStatusLog(nil), s.preorderLogs...),
		cart:         copyMap(s.cart),
		payments:     append([]domain.Payment(nil), s.payments...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = snap.categories
	s.products = snap.products
	s.variations = snap.variations
	s.stockLogs = snap.stockLogs
	s.orders = snap.orders
	s.lines = snap.lines
	s.preorders = snap.preorders
	s.preorderLogs = snap.preorderLogs
	s.cart = snap.cart
	s.payments = snap.payments
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

type memTxKey struct{}

type memUoW struct {
	store *memStore
	txMu  sync.Mutex
	// commits counts outermost scopes that finished without error.
	commits int
}

func (u *memUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	u.txMu.Lock()
	defer u.txMu.Unlock()

	snap := u.store.snapshot()
	txCtx, hooks := domain.WithCommitHooks(ctx)
	if err := fn(context.WithValue(txCtx, memTxKey{}, true)); err != nil {
		u.store.restore(snap)
		return err
	}
	u.commits++
	hooks.Run(ctx)
	return nil
}

func notFoundErr(kind string, id int64) error {
	return fmt.Errorf("%s with id %d: %w", kind, id, domain.ErrNotFound)
}

// --- products and categories ---

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return nil, fmt.Errorf("category exists: %w", domain.ErrInvalidInput)
		}
	}
	c.ID = r.s.nextID()
	r.s.categories[c.ID] = *c
	return c, nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, notFoundErr("category", id)
	}
	return &c, nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return nil, notFoundErr("category", c.ID)
	}
	r.s.categories[c.ID] = *c
	return c, nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return notFoundErr("category", id)
	}
	delete(r.s.categories, id)
	return nil
}

func (r *memCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Category{}
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	p.CreatedAt = time.Now()
	r.s.products[p.ID] = *p
	return p, nil
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, notFoundErr("product", id)
	}
	return &p, nil
}

func (r *memProductRepo) Update(_ context.Context, id int64, u domain.ProductUpdate) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, notFoundErr("product", id)
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.ClearCategory {
		p.CategoryID = nil
	} else if u.CategoryID != nil {
		id := *u.CategoryID
		p.CategoryID = &id
	}
	if u.IsPreorder != nil {
		p.IsPreorder = *u.IsPreorder
	}
	if u.PreorderLeadTime != nil {
		p.PreorderLeadTime = *u.PreorderLeadTime
	}
	r.s.products[id] = p
	return &p, nil
}

func (r *memProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return notFoundErr("product", id)
	}
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Product{}
	for _, p := range r.s.products {
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), strings.ToLower(f.Keyword)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProductRepo) AddVariation(_ context.Context, v *domain.ProductVariation) (*domain.ProductVariation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[v.ProductID]; !ok {
		return nil, fmt.Errorf("product %d: %w", v.ProductID, domain.ErrInvalidInput)
	}
	v.ID = r.s.nextID()
	r.s.variations[v.ID] = *v
	return v, nil
}

func (r *memProductRepo) GetVariation(_ context.Context, productID, variationID int64) (*domain.ProductVariation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variations[variationID]
	if !ok || v.ProductID != productID {
		return nil, notFoundErr("variation", variationID)
	}
	return &v, nil
}

func (r *memProductRepo) ListVariations(_ context.Context, productID int64) ([]domain.ProductVariation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.ProductVariation{}
	for _, v := range r.s.variations {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- stock ---

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) quantityLocked(productID int64, variationID *int64) (int, error) {
	if variationID != nil {
		v, ok := r.s.variations[*variationID]
		if !ok || v.ProductID != productID {
			return 0, notFoundErr("variation", *variationID)
		}
		return v.Stock, nil
	}
	p, ok := r.s.products[productID]
	if !ok {
		return 0, notFoundErr("product", productID)
	}
	return p.Stock, nil
}

func (r *memStockRepo) GetQuantity(_ context.Context, productID int64, variationID *int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.quantityLocked(productID, variationID)
}

func (r *memStockRepo) ApplyDelta(_ context.Context, productID int64, variationID *int64, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, err := r.quantityLocked(productID, variationID)
	if err != nil {
		return 0, err
	}
	if current+delta < 0 {
		return 0, &domain.InsufficientStockError{ProductID: productID, VariationID: variationID, Requested: -delta, Available: current}
	}
	if variationID != nil {
		v := r.s.variations[*variationID]
		v.Stock += delta
		r.s.variations[*variationID] = v
		return v.Stock, nil
	}
	p := r.s.products[productID]
	p.Stock += delta
	r.s.products[productID] = p
	return p.Stock, nil
}

func (r *memStockRepo) AppendLog(_ context.Context, e *domain.StockLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID()
	e.CreatedAt = time.Now()
	r.s.stockLogs = append(r.s.stockLogs, *e)
	return nil
}

func (r *memStockRepo) ListLogs(_ context.Context, productID int64, limit int) ([]domain.StockLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.StockLogEntry{}
	for i := len(r.s.stockLogs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.s.stockLogs[i].ProductID == productID {
			out = append(out, r.s.stockLogs[i])
		}
	}
	return out, nil
}

// --- orders ---

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.nextID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Lines = nil
	r.s.orders[o.ID] = stored
	return o, nil
}

func (r *memOrderRepo) AddLine(_ context.Context, l *domain.OrderLine) (*domain.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAddLine != nil {
		index := 0
		for _, existing := range r.s.lines {
			if existing.OrderID == l.OrderID {
				index++
			}
		}
		if err := r.s.failAddLine(*l, index); err != nil {
			return nil, err
		}
	}
	l.ID = r.s.nextID()
	r.s.lines = append(r.s.lines, *l)
	return l, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, notFoundErr("order", id)
	}
	o.Lines = []domain.OrderLine{}
	for _, l := range r.s.lines {
		if l.OrderID != id {
			continue
		}
		for _, p := range r.s.preorders {
			if p.OrderItemID != nil && *p.OrderItemID == l.ID {
				pid := p.ID
				l.PreorderID = &pid
			}
		}
		o.Lines = append(o.Lines, l)
	}
	return &o, nil
}

func (r *memOrderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return notFoundErr("order", id)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o
	return nil
}

func (r *memOrderRepo) List(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.s.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- preorders ---

type memPreorderRepo struct{ s *memStore }

func (r *memPreorderRepo) Create(_ context.Context, p *domain.Preorder) (*domain.Preorder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	p.CreatedAt = time.Now()
	r.s.preorders[p.ID] = *p
	return p, nil
}

func (r *memPreorderRepo) GetByID(_ context.Context, id int64) (*domain.Preorder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.preorders[id]
	if !ok {
		return nil, notFoundErr("preorder", id)
	}
	return &p, nil
}

func (r *memPreorderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Preorder, error) {
	return r.GetByID(ctx, id)
}

func (r *memPreorderRepo) GetByOrderItem(_ context.Context, orderItemID int64) (*domain.Preorder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.preorders {
		if p.OrderItemID != nil && *p.OrderItemID == orderItemID {
			return &p, nil
		}
	}
	return nil, notFoundErr("preorder for order item", orderItemID)
}

func (r *memPreorderRepo) UpdateStatus(_ context.Context, id int64, status domain.PreorderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.preorders[id]
	if !ok {
		return notFoundErr("preorder", id)
	}
	p.Status = status
	r.s.preorders[id] = p
	return nil
}

func (r *memPreorderRepo) UpdateEstimatedDelivery(_ context.Context, id int64, date time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.preorders[id]
	if !ok {
		return notFoundErr("preorder", id)
	}
	p.EstimatedDelivery = date
	r.s.preorders[id] = p
	return nil
}

func (r *memPreorderRepo) List(_ context.Context, f domain.PreorderFilter) ([]domain.Preorder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Preorder{}
	for _, p := range r.s.preorders {
		if f.UserID != nil && p.UserID != *f.UserID {
			continue
		}
		if f.ProductID != nil && p.ProductID != *f.ProductID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memPreorderRepo) AppendStatusLog(_ context.Context, e *domain.PreorderStatusLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID()
	e.CreatedAt = time.Now()
	r.s.preorderLogs = append(r.s.preorderLogs, *e)
	return nil
}

// --- cart ---

type memCartRepo struct{ s *memStore }

func sameVariation(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *memCartRepo) FindItem(_ context.Context, userID, productID int64, variationID *int64) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.cart {
		if item.UserID == userID && item.ProductID == productID && sameVariation(item.VariationID, variationID) {
			return &item, nil
		}
	}
	return nil, notFoundErr("cart item for product", productID)
}

func (r *memCartRepo) GetItem(_ context.Context, itemID int64) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cart[itemID]
	if !ok {
		return nil, notFoundErr("cart item", itemID)
	}
	return &item, nil
}

func (r *memCartRepo) Insert(_ context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = r.s.nextID()
	item.CreatedAt = time.Now()
	r.s.cart[item.ID] = *item
	return item, nil
}

func (r *memCartRepo) SetQuantity(_ context.Context, itemID int64, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cart[itemID]
	if !ok {
		return notFoundErr("cart item", itemID)
	}
	item.Quantity = quantity
	r.s.cart[itemID] = item
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.cart, itemID)
	return nil
}

func (r *memCartRepo) DeleteMany(_ context.Context, userID int64, itemIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range itemIDs {
		if item, ok := r.s.cart[id]; ok && item.UserID == userID {
			delete(r.s.cart, id)
		}
	}
	return nil
}

func (r *memCartRepo) Clear(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, item := range r.s.cart {
		if item.UserID == userID {
			delete(r.s.cart, id)
		}
	}
	return nil
}

func (r *memCartRepo) ListLines(_ context.Context, userID int64) ([]domain.CartLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := []domain.CartItem{}
	for _, item := range r.s.cart {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	lines := []domain.CartLine{}
	for _, item := range items {
		p := r.s.products[item.ProductID]
		line := domain.CartLine{
			ItemID:          item.ID,
			ProductID:       item.ProductID,
			VariationID:     item.VariationID,
			Name:            p.Name,
			Quantity:        item.Quantity,
			BasePrice:       p.Price,
			PriceAdjustment: decimal.Zero,
			IsPreorder:      p.IsPreorder,
			LeadTime:        p.PreorderLeadTime,
			StockQuantity:   p.Stock,
		}
		if item.VariationID != nil {
			v := r.s.variations[*item.VariationID]
			line.PriceAdjustment = v.PriceAdjustment
			line.StockQuantity = v.Stock
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// --- payments ---

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failPayment != nil {
		return nil, r.s.failPayment
	}
	p.ID = r.s.nextID()
	p.CreatedAt = time.Now()
	r.s.payments = append(r.s.payments, *p)
	return p, nil
}

func (r *memPaymentRepo) GetByOrder(_ context.Context, orderID int64) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.payments) - 1; i >= 0; i-- {
		if r.s.payments[i].OrderID == orderID {
			p := r.s.payments[i]
			return &p, nil
		}
	}
	return nil, notFoundErr("payment for order", orderID)
}

// errInjected is a storage failure raised by test hooks.
var errInjected = domain.NewStorageError("injected", errors.New("disk on fire"))
