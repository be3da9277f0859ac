// AngelaMos | 2026
// service_test.go

package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type sizeKey struct{ product, size int64 }

// memRepo keeps carts in memory. catalog maps a product/size pair to the
// product's current price.
type memRepo struct {
	mu      sync.Mutex
	nextID  int64
	carts   map[int64]int64
	lines   map[int64]*Line
	catalog map[sizeKey]decimal.Decimal
}

func newMemRepo() *memRepo {
	return &memRepo{
		carts: map[int64]int64{},
		lines: map[int64]*Line{},
		catalog: map[sizeKey]decimal.Decimal{
			{7, 2}: decimal.RequireFromString("10.00"),
			{7, 3}: decimal.RequireFromString("10.00"),
			{8, 4}: decimal.RequireFromString("4.50"),
		},
	}
}

func (m *memRepo) EnsureCart(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.carts[userID]; ok {
		return id, nil
	}
	m.nextID++
	m.carts[userID] = m.nextID
	return m.nextID, nil
}

func (m *memRepo) owner(cartID int64) int64 {
	for user, id := range m.carts {
		if id == cartID {
			return user
		}
	}
	return 0
}

func (m *memRepo) Lines(_ context.Context, userID int64) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Line{}
	for _, l := range m.lines {
		if m.owner(l.CartID) == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memRepo) AddLine(_ context.Context, line *Line, price decimal.NullDecimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.catalog[sizeKey{line.ProductID, line.SizeID}]
	if !ok {
		return core.ErrNotFound
	}
	for _, l := range m.lines {
		if l.CartID == line.CartID && l.ProductID == line.ProductID && l.SizeID == line.SizeID {
			l.Quantity += line.Quantity
			*line = *l
			return nil
		}
	}
	m.nextID++
	line.ID = m.nextID
	line.Price = current
	if price.Valid {
		line.Price = price.Decimal
	}
	cp := *line
	m.lines[line.ID] = &cp
	return nil
}

func (m *memRepo) UpdateLine(_ context.Context, userID, lineID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[lineID]
	if !ok || m.owner(l.CartID) != userID {
		return core.ErrNotFound
	}
	l.Quantity = quantity
	return nil
}

func (m *memRepo) RemoveLine(_ context.Context, userID, lineID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[lineID]
	if !ok || m.owner(l.CartID) != userID {
		return core.ErrNotFound
	}
	delete(m.lines, lineID)
	return nil
}

func (m *memRepo) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, l := range m.lines {
		if m.owner(l.CartID) == userID {
			delete(m.lines, id)
		}
	}
	return nil
}

func TestGetCartCreatesEmptyCart(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	lines, err := svc.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
	assert.Contains(t, repo.carts, int64(1))
}

func TestAddSameSizeTwiceSumsQuantity(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, 1, AddLineRequest{ProductID: 7, SizeID: 2, Quantity: 1})
	require.NoError(t, err)
	line, err := svc.AddLine(ctx, 1, AddLineRequest{ProductID: 7, SizeID: 2, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	_, err = svc.AddLine(ctx, 1, AddLineRequest{ProductID: 7, SizeID: 3, Quantity: 1})
	require.NoError(t, err)

	lines, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestAddLinePriceSnapshot(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	line, err := svc.AddLine(ctx, 1, AddLineRequest{ProductID: 8, SizeID: 4, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "4.50", line.Price.StringFixed(2))

	given := decimal.RequireFromString("3.999")
	line, err = svc.AddLine(ctx, 2, AddLineRequest{ProductID: 8, SizeID: 4, Quantity: 1, Price: &given})
	require.NoError(t, err)
	assert.Equal(t, "4.00", line.Price.StringFixed(2))

	negative := decimal.NewFromInt(-1)
	_, err = svc.AddLine(ctx, 2, AddLineRequest{ProductID: 8, SizeID: 4, Quantity: 1, Price: &negative})
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestAddLineSizeMustBelongToProduct(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.AddLine(context.Background(), 1, AddLineRequest{ProductID: 7, SizeID: 4, Quantity: 1})
	assert.ErrorIs(t, err, ErrUnknownSize)
}

func TestLineMutationChecksOwnership(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	line, err := svc.AddLine(ctx, 1, AddLineRequest{ProductID: 7, SizeID: 2, Quantity: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateLine(ctx, 2, line.ID, 5), core.ErrNotFound)
	assert.ErrorIs(t, svc.RemoveLine(ctx, 2, line.ID), core.ErrNotFound)

	require.NoError(t, svc.UpdateLine(ctx, 1, line.ID, 5))
	lines, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, lines[0].Quantity)

	require.NoError(t, svc.RemoveLine(ctx, 1, line.ID))
}

func TestClearOnlyTouchesCaller(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.AddLine(ctx, 1, AddLineRequest{ProductID: 7, SizeID: 2, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, 2, AddLineRequest{ProductID: 7, SizeID: 2, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, 1))

	mine, _ := svc.GetCart(ctx, 1)   //nolint:errcheck // in-memory
	theirs, _ := svc.GetCart(ctx, 2) //nolint:errcheck // in-memory
	assert.Empty(t, mine)
	assert.Len(t, theirs, 1)
}

func TestCartResponseTotal(t *testing.T) {
	resp := ToCartResponse([]Line{
		{ID: 1, Quantity: 3, Price: decimal.RequireFromString("10.00")},
		{ID: 2, Quantity: 2, Price: decimal.RequireFromString("0.25")},
	})

	assert.Equal(t, "30.50", resp.Total.StringFixed(2))
	assert.Equal(t, "30.00", resp.Items[0].Subtotal.StringFixed(2))
}
