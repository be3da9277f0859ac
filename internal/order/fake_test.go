// AngelaMos | 2026
// fake_test.go

package order

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type memSize struct {
	productID int64
	product   string
	label     string
	stock     int
}

type memState struct {
	nextID int64
	orders map[int64]Order
	items  []Item
	sizes  map[int64]memSize
	carts  map[int64]int
}

func (s *memState) clone() *memState {
	return &memState{
		nextID: s.nextID,
		orders: maps.Clone(s.orders),
		items:  slices.Clone(s.items),
		sizes:  maps.Clone(s.sizes),
		carts:  maps.Clone(s.carts),
	}
}

// memStore is a transactional in-memory store. A transaction holds the
// store lock, works on a private copy and publishes it only on success.
type memStore struct {
	mu    sync.Mutex
	state *memState

	failItemAt int
	takeOrder  []int64
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		orders: map[int64]Order{},
		sizes:  map[int64]memSize{},
		carts:  map[int64]int{},
	}}
}

func (s *memStore) addSize(id, productID int64, product, label string, stock int) {
	s.state.sizes[id] = memSize{productID: productID, product: product, label: label, stock: stock}
}

func (s *memStore) stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.sizes[id].stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.items)
}

func (s *memStore) cartLines(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.carts[userID]
}

type memRepo struct {
	store *memStore
	tx    *memState
	items int
}

func newMemRepo(store *memStore) *memRepo {
	return &memRepo{store: store}
}

func (r *memRepo) view(fn func(st *memState) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.state)
}

func (r *memRepo) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	txRepo := &memRepo{store: r.store, tx: r.store.state.clone()}
	if err := fn(txRepo); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.state = txRepo.tx
	return nil
}

func (r *memRepo) CreateOrder(_ context.Context, o *Order) error {
	return r.view(func(st *memState) error {
		st.nextID++
		o.ID = st.nextID
		o.CreatedAt = time.Now()
		o.UpdatedAt = o.CreatedAt
		st.orders[o.ID] = *o
		return nil
	})
}

func (r *memRepo) TakeStock(_ context.Context, productID, sizeID int64, qty int) (*Snapshot, bool, error) {
	var snap *Snapshot
	err := r.view(func(st *memState) error {
		r.store.takeOrder = append(r.store.takeOrder, sizeID)
		s, ok := st.sizes[sizeID]
		if !ok || s.productID != productID || s.stock < qty {
			return nil
		}
		s.stock -= qty
		st.sizes[sizeID] = s
		snap = &Snapshot{ProductName: s.product, Size: s.label}
		return nil
	})
	return snap, snap != nil, err
}

func (r *memRepo) AvailableStock(_ context.Context, productID, sizeID int64) (int, error) {
	var stock int
	err := r.view(func(st *memState) error {
		s, ok := st.sizes[sizeID]
		if !ok || s.productID != productID {
			return fmt.Errorf("available stock: %w", core.ErrNotFound)
		}
		stock = s.stock
		return nil
	})
	return stock, err
}

func (r *memRepo) CreateItem(_ context.Context, item *Item) error {
	r.items++
	if r.store.failItemAt > 0 && r.items == r.store.failItemAt {
		return errors.New("connection reset")
	}
	return r.view(func(st *memState) error {
		st.nextID++
		item.ID = st.nextID
		st.items = append(st.items, *item)
		return nil
	})
}

func (r *memRepo) ClearCart(_ context.Context, userID int64) error {
	return r.view(func(st *memState) error {
		delete(st.carts, userID)
		return nil
	})
}

func (r *memRepo) Get(_ context.Context, id int64) (*Order, error) {
	var out *Order
	err := r.view(func(st *memState) error {
		o, ok := st.orders[id]
		if !ok {
			return fmt.Errorf("get order: %w", core.ErrNotFound)
		}
		out = &o
		return nil
	})
	return out, err
}

func (r *memRepo) ListByUser(_ context.Context, userID int64) ([]Order, error) {
	out := []Order{}
	err := r.view(func(st *memState) error {
		for _, o := range st.orders {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
		slices.SortFunc(out, func(a, b Order) int { return int(b.ID - a.ID) })
		return nil
	})
	return out, err
}

func (r *memRepo) List(_ context.Context, p ListOrdersParams) ([]Order, int, error) {
	out := []Order{}
	err := r.view(func(st *memState) error {
		for _, o := range st.orders {
			if p.Status == "" || o.Status == p.Status {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, len(out), err
}

func (r *memRepo) ItemsByOrder(_ context.Context, ids []int64) (map[int64][]Item, error) {
	out := map[int64][]Item{}
	err := r.view(func(st *memState) error {
		for _, it := range st.items {
			if slices.Contains(ids, it.OrderID) {
				out[it.OrderID] = append(out[it.OrderID], it)
			}
		}
		return nil
	})
	return out, err
}

func (r *memRepo) UpdateStatus(_ context.Context, o *Order) error {
	return r.view(func(st *memState) error {
		existing, ok := st.orders[o.ID]
		if !ok {
			return core.ErrNotFound
		}
		existing.Status = o.Status
		existing.UpdatedAt = time.Now()
		st.orders[o.ID] = existing
		o.UpdatedAt = existing.UpdatedAt
		return nil
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
