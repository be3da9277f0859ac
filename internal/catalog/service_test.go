// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type memRepo struct {
	mu         sync.Mutex
	nextID     int64
	products   map[int64]*Product
	sizes      map[int64]*Size
	categories map[int64]*Category
}

func newMemRepo() *memRepo {
	return &memRepo{
		products:   map[int64]*Product{},
		sizes:      map[int64]*Size{},
		categories: map[int64]*Category{},
	}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) ListProducts(_ context.Context, _ ListProductsParams) ([]Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Product{}
	for _, p := range m.products {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Product) int { return int(a.ID - b.ID) })
	return out, len(out), nil
}

func (m *memRepo) GetProduct(_ context.Context, id int64) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	cp := *p
	cp.Sizes = nil
	if cp.CategoryID != nil {
		if c, ok := m.categories[*cp.CategoryID]; ok {
			cp.CategoryName = &c.Name
		}
	}
	return &cp, nil
}

func (m *memRepo) SizesByProduct(_ context.Context, ids []int64) (map[int64][]Size, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64][]Size{}
	for _, s := range m.sizes {
		if slices.Contains(ids, s.ProductID) {
			out[s.ProductID] = append(out[s.ProductID], *s)
		}
	}
	for _, list := range out {
		slices.SortFunc(list, func(a, b Size) int { return int(a.ID - b.ID) })
	}
	return out, nil
}

func (m *memRepo) CreateProduct(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.CategoryID != nil {
		if _, ok := m.categories[*p.CategoryID]; !ok {
			return fmt.Errorf("create product: %w", core.ErrForeignKey)
		}
	}
	p.ID = m.id()
	p.CreatedAt = time.Now()
	for i := range p.Sizes {
		p.Sizes[i].ID = m.id()
		p.Sizes[i].ProductID = p.ID
		s := p.Sizes[i]
		m.sizes[s.ID] = &s
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) UpdateProduct(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.CategoryID != nil {
		if _, ok := m.categories[*p.CategoryID]; !ok {
			return fmt.Errorf("update product: %w", core.ErrForeignKey)
		}
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return core.ErrNotFound
	}
	for sid, s := range m.sizes {
		if s.ProductID == id {
			delete(m.sizes, sid)
		}
	}
	delete(m.products, id)
	return nil
}

func (m *memRepo) CreateSize(_ context.Context, s *Size) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	cp := *s
	m.sizes[s.ID] = &cp
	return nil
}

func (m *memRepo) UpdateSize(
	_ context.Context,
	id int64,
	label *string,
	stock *int,
) (*Size, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sizes[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if label != nil {
		s.Label = *label
	}
	if stock != nil {
		s.Stock = *stock
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) DeleteSize(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sizes[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.sizes, id)
	return nil
}

func (m *memRepo) ListCategories(_ context.Context) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Category{}
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memRepo) CreateCategory(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
		}
	}
	c.ID = m.id()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memRepo) UpdateCategory(_ context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memRepo) DeleteCategory(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

func TestCreateProductJoinsCategoryAndSizes(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, " Shirts ")
	require.NoError(t, err)
	assert.Equal(t, "Shirts", cat.Name)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "Tee",
		Price:      price("10.005"),
		CategoryID: &cat.ID,
		Sizes: []SizeRequest{
			{Size: "S", Stock: intPtr(3)},
			{Size: "M", Stock: intPtr(0)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Shirts", *p.CategoryName)
	assert.Equal(t, "10.01", p.Price.StringFixed(2))
	require.Len(t, p.Sizes, 2)
	assert.Equal(t, "S", p.Sizes[0].Label)
	assert.Equal(t, 3, p.Sizes[0].Stock)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "x", Price: price("-1")})
	assert.ErrorIs(t, err, ErrNegativePrice)

	missing := int64(404)
	_, err = svc.CreateProduct(ctx, CreateProductRequest{
		Name:       "x",
		Price:      price("1"),
		CategoryID: &missing,
	})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestUpdateProductPartial(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Hats")
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name: "Cap", Description: "red", Price: price("5"), CategoryID: &cat.ID,
	})
	require.NoError(t, err)

	name := "Beanie"
	updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Beanie", updated.Name)
	assert.Equal(t, "red", updated.Description)
	assert.Equal(t, cat.ID, *updated.CategoryID)

	updated, err = svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{ClearCategory: true})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)

	_, err = svc.UpdateProduct(ctx, 999, UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteProductCascadesSizes(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name: "Tee", Price: price("10"),
		Sizes: []SizeRequest{{Size: "S", Stock: intPtr(1)}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.Empty(t, repo.sizes)

	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSizeLifecycle(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.AddSize(ctx, 42, SizeRequest{Size: "S", Stock: intPtr(1)})
	assert.ErrorIs(t, err, core.ErrNotFound)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Tee", Price: price("10")})
	require.NoError(t, err)

	sizes, err := svc.ListSizes(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, sizes)
	assert.Empty(t, sizes)

	size, err := svc.AddSize(ctx, p.ID, SizeRequest{Size: " XL ", Stock: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, "XL", size.Label)

	restocked, err := svc.UpdateSize(ctx, size.ID, UpdateSizeRequest{Stock: intPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, 25, restocked.Stock)
	assert.Equal(t, "XL", restocked.Label)

	_, err = svc.UpdateSize(ctx, size.ID, UpdateSizeRequest{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	require.NoError(t, svc.DeleteSize(ctx, size.ID))
	assert.ErrorIs(t, svc.DeleteSize(ctx, size.ID), core.ErrNotFound)
}

func TestUpdateSizeLabelLeavesStockToStore(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Tee", Price: price("10")})
	require.NoError(t, err)
	size, err := svc.AddSize(ctx, p.ID, SizeRequest{Size: "M", Stock: intPtr(10)})
	require.NoError(t, err)

	// a checkout commits between the admin loading the form and saving it
	repo.mu.Lock()
	repo.sizes[size.ID].Stock = 7
	repo.mu.Unlock()

	renamed, err := svc.UpdateSize(ctx, size.ID, UpdateSizeRequest{Size: strPtr(" L ")})
	require.NoError(t, err)
	assert.Equal(t, "L", renamed.Label)
	assert.Equal(t, 7, renamed.Stock)
}

func TestListProductsAttachesSizes(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		_, err := svc.CreateProduct(ctx, CreateProductRequest{
			Name: name, Price: price("1"),
			Sizes: []SizeRequest{{Size: "One", Stock: intPtr(9)}},
		})
		require.NoError(t, err)
	}

	products, total, err := svc.ListProducts(ctx, ListProductsParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range products {
		assert.Len(t, p.Sizes, 1)
	}
}

func TestCategoryDuplicateAndMissing(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Shoes")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = svc.RenameCategory(ctx, 77, "Boots")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, 77), core.ErrNotFound)
}
