package pos_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/steadymonitor/pos-api/internal/application/pos"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con transacciones serializadas: cada RunInTx trabaja sobre
// una copia del estado y solo la publica si fn no devuelve error.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	products  map[string]entity.Product
	customers map[string]entity.Customer
	sales     map[string]entity.Sale
	items     map[string][]entity.SaleLineItem
	payments  []entity.Payment
}

func newMemState() *memState {
	return &memState{
		products:  map[string]entity.Product{},
		customers: map[string]entity.Customer{},
		sales:     map[string]entity.Sale{},
		items:     map[string][]entity.SaleLineItem{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.SaleLineItem(nil), v...)
	}
	c.payments = append([]entity.Payment(nil), s.payments...)
	return c
}

type memDB struct {
	mu    sync.Mutex
	state *memState
	// failCreateItem simula un fallo de persistencia a mitad de la venta.
	failCreateItem bool
	// beforeDecrement simula otra venta que cambia el stock entre la lectura y el descuento.
	beforeDecrement func(p *entity.Product)
	txCount         int
}

func newMemDB() *memDB { return &memDB{state: newMemState()} }

func (db *memDB) RunInTx(_ context.Context, fn func(pos.Repos) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.txCount++
	work := db.state.clone()
	repos := pos.Repos{
		Products:  &memProducts{tx: work, beforeDecrement: db.beforeDecrement},
		Customers: &memCustomers{tx: work},
		Sales:     &memSales{tx: work, failCreateItem: db.failCreateItem},
		Payments:  &memPayments{tx: work},
	}
	if err := fn(repos); err != nil {
		return err
	}
	db.state = work
	return nil
}

// Repos atados al "pool" (fuera de transacción).
func (db *memDB) sales() *memSales         { return &memSales{db: db} }
func (db *memDB) customers() *memCustomers { return &memCustomers{db: db} }
func (db *memDB) products() *memProducts   { return &memProducts{db: db} }

func (db *memDB) addProduct(p entity.Product) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.state.products[p.ID] = p
}

func (db *memDB) addCustomer(c entity.Customer) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.state.customers[c.ID] = c
}

func (db *memDB) product(id string) entity.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.products[id]
}

func (db *memDB) customer(id string) entity.Customer {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.customers[id]
}

func (db *memDB) saleCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.state.sales)
}

func (db *memDB) itemCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, v := range db.state.items {
		n += len(v)
	}
	return n
}

func (db *memDB) paymentCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.state.payments)
}

// access ejecuta fn sobre el estado de la tx o, fuera de ella, sobre el estado confirmado.
func access(db *memDB, tx *memState, fn func(s *memState)) {
	if tx != nil {
		fn(tx)
		return
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	fn(db.state)
}

// ── Products ─────────────────────────────────────────────────────────────────

type memProducts struct {
	db              *memDB
	tx              *memState
	beforeDecrement func(p *entity.Product)
}

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	var err error
	access(r.db, r.tx, func(s *memState) {
		for _, existing := range s.products {
			if existing.SKU == p.SKU {
				err = domain.ErrDuplicate
				return
			}
		}
		s.products[p.ID] = *p
	})
	return err
}

func (r *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	access(r.db, r.tx, func(s *memState) {
		if p, ok := s.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *memProducts) Update(_ context.Context, p *entity.Product) error {
	var err error
	access(r.db, r.tx, func(s *memState) {
		cur, ok := s.products[p.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		cur.Name, cur.UnitPrice, cur.ReorderThreshold, cur.Active, cur.UpdatedAt = p.Name, p.UnitPrice, p.ReorderThreshold, p.Active, p.UpdatedAt
		s.products[p.ID] = cur
	})
	return err
}

func (r *memProducts) ListByDepartment(_ context.Context, department string, onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	access(r.db, r.tx, func(s *memState) {
		for _, p := range s.products {
			if department != "" && p.Department != department {
				continue
			}
			if onlyActive && !p.Active {
				continue
			}
			cp := p
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memProducts) ListBelowReorder(ctx context.Context, department string) ([]*entity.Product, error) {
	all, err := r.ListByDepartment(ctx, department, true, 0, 0)
	if err != nil {
		return nil, err
	}
	var out []*entity.Product
	for _, p := range all {
		if p.NeedsReorder() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) DecrementStock(_ context.Context, id string, quantity int) (decimal.Decimal, bool, error) {
	var price decimal.Decimal
	var ok bool
	access(r.db, r.tx, func(s *memState) {
		p, found := s.products[id]
		if found && r.beforeDecrement != nil {
			r.beforeDecrement(&p)
			s.products[id] = p
		}
		if !found || p.StockQuantity < quantity {
			return
		}
		p.StockQuantity -= quantity
		s.products[id] = p
		price, ok = p.UnitPrice, true
	})
	return price, ok, nil
}

func (r *memProducts) AdjustStock(_ context.Context, id string, delta int) (int, bool, error) {
	var qty int
	var ok bool
	access(r.db, r.tx, func(s *memState) {
		p, found := s.products[id]
		if !found || p.StockQuantity+delta < 0 {
			return
		}
		p.StockQuantity += delta
		s.products[id] = p
		qty, ok = p.StockQuantity, true
	})
	return qty, ok, nil
}

// ── Customers ────────────────────────────────────────────────────────────────

type memCustomers struct {
	db *memDB
	tx *memState
}

func (r *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	access(r.db, r.tx, func(s *memState) { s.customers[c.ID] = *c })
	return nil
}

func (r *memCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	access(r.db, r.tx, func(s *memState) {
		if c, ok := s.customers[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *memCustomers) List(_ context.Context, department, search string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	access(r.db, r.tx, func(s *memState) {
		for _, c := range s.customers {
			if department != "" && c.Department != "" && c.Department != department {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(c.DisplayName), strings.ToLower(search)) {
				continue
			}
			cp := c
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (r *memCustomers) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	var bal decimal.Decimal
	var err error
	access(r.db, r.tx, func(s *memState) {
		c, ok := s.customers[id]
		if !ok {
			err = domain.ErrCustomerNotFound
			return
		}
		c.Balance = c.Balance.Add(delta)
		s.customers[id] = c
		bal = c.Balance
	})
	return bal, err
}

// ── Sales ────────────────────────────────────────────────────────────────────

type memSales struct {
	db             *memDB
	tx             *memState
	failCreateItem bool
}

func (r *memSales) Create(_ context.Context, sale *entity.Sale) error {
	var err error
	access(r.db, r.tx, func(s *memState) {
		if sale.IdempotencyKey != "" {
			for _, existing := range s.sales {
				if existing.IdempotencyKey == sale.IdempotencyKey {
					err = domain.ErrDuplicate
					return
				}
			}
		}
		cp := *sale
		cp.Items = nil
		s.sales[sale.ID] = cp
	})
	return err
}

func (r *memSales) CreateItem(_ context.Context, item *entity.SaleLineItem) error {
	if r.failCreateItem {
		return errors.New("insert sale item: conexión perdida")
	}
	access(r.db, r.tx, func(s *memState) {
		s.items[item.SaleID] = append(s.items[item.SaleID], *item)
	})
	return nil
}

func (r *memSales) load(s *memState, sale entity.Sale) *entity.Sale {
	for _, it := range s.items[sale.ID] {
		cp := it
		sale.Items = append(sale.Items, &cp)
	}
	return &sale
}

func (r *memSales) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	access(r.db, r.tx, func(s *memState) {
		if sale, ok := s.sales[id]; ok {
			out = r.load(s, sale)
		}
	})
	return out, nil
}

func (r *memSales) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *memSales) GetByIdempotencyKey(_ context.Context, key string) (*entity.Sale, error) {
	var out *entity.Sale
	access(r.db, r.tx, func(s *memState) {
		for _, sale := range s.sales {
			if sale.IdempotencyKey == key {
				out = r.load(s, sale)
				return
			}
		}
	})
	return out, nil
}

func (r *memSales) MarkVoided(_ context.Context, id, voidedBy string, at time.Time) error {
	var err error
	access(r.db, r.tx, func(s *memState) {
		sale, ok := s.sales[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		sale.Status = entity.SaleStatusVoided
		sale.VoidedBy = voidedBy
		sale.VoidedAt = &at
		s.sales[id] = sale
	})
	return err
}

// ── Payments ─────────────────────────────────────────────────────────────────

type memPayments struct {
	db *memDB
	tx *memState
}

func (r *memPayments) Create(_ context.Context, p *entity.Payment) error {
	access(r.db, r.tx, func(s *memState) { s.payments = append(s.payments, *p) })
	return nil
}

func (r *memPayments) ListByCustomer(_ context.Context, customerID string, limit int) ([]*entity.Payment, error) {
	var out []*entity.Payment
	access(r.db, r.tx, func(s *memState) {
		for _, p := range s.payments {
			if p.CustomerID == customerID {
				cp := p
				out = append(out, &cp)
			}
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
