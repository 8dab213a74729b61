package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/order"
	"github.com/MikeMC777/vnb-store/internal/product"
)

func seed(t *testing.T) (*Store, *product.Category, *product.Product) {
	t.Helper()
	s := New()
	ctx := context.Background()
	c := &product.Category{Name: "Shoes", IsActive: true}
	require.NoError(t, s.Products().CreateCategory(ctx, c))
	p := &product.Product{CategoryID: c.ID, Name: "Cedar Sandal", Price: decimal.RequireFromString("89.00"), StockQuantity: 3, IsActive: true}
	require.NoError(t, s.Products().Create(ctx, p))
	return s, c, p
}

func TestTxRollbackDiscardsWrites(t *testing.T) {
	s, _, p := seed(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Orders().InTx(ctx, func(ctx context.Context, tx order.Tx) error {
		ok, err := tx.DecrementStock(ctx, p.ID, 2)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)

	require.NoError(t, s.Orders().InTx(ctx, func(ctx context.Context, tx order.Tx) error {
		ok, err := tx.DecrementStock(ctx, p.ID, 4)
		require.NoError(t, err)
		assert.False(t, ok, "cannot go below zero")
		ok, err = tx.DecrementStock(ctx, p.ID, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	}))
	got, _ = s.Products().GetByID(ctx, p.ID)
	assert.Equal(t, 0, got.StockQuantity)
}

func TestProductListFiltersAndOrdering(t *testing.T) {
	s, c, p := seed(t)
	ctx := context.Background()
	other := &product.Category{Name: "Bags", IsActive: true}
	require.NoError(t, s.Products().CreateCategory(ctx, other))
	for _, np := range []*product.Product{
		{CategoryID: other.ID, Name: "Fig Tote", Price: decimal.RequireFromString("45.00"), IsActive: true, IsFeatured: true},
		{CategoryID: other.ID, Name: "Hidden Tote", Price: decimal.RequireFromString("5.00"), IsActive: false},
		{CategoryID: c.ID, Name: "Olive Clog", Price: decimal.RequireFromString("120.00"), IsActive: true, IsFeatured: true},
	} {
		require.NoError(t, s.Products().Create(ctx, np))
	}

	all, err := s.Products().List(ctx, product.Query{Ordering: "price"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Fig Tote", all[0].Name)
	assert.Equal(t, "Olive Clog", all[2].Name)

	yes := true
	feat, err := s.Products().List(ctx, product.Query{Featured: &yes, Ordering: "-price"})
	require.NoError(t, err)
	require.Len(t, feat, 2)
	assert.Equal(t, "Olive Clog", feat[0].Name)

	shoes, err := s.Products().List(ctx, product.Query{CategorySlug: c.Slug})
	require.NoError(t, err)
	assert.Len(t, shoes, 2)

	found, err := s.Products().List(ctx, product.Query{Q: "cedar"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)

	dup := &product.Product{CategoryID: c.ID, Name: "Cedar Sandal", Price: decimal.NewFromInt(1), IsActive: true}
	require.ErrorIs(t, s.Products().Create(ctx, dup), product.ErrAlreadyExist)
	bad := &product.Product{CategoryID: "nope", Name: "Orphan", Price: decimal.NewFromInt(1)}
	require.ErrorIs(t, s.Products().Create(ctx, bad), product.ErrCategoryNotFound)
}

func TestDeleteProductDetachesLines(t *testing.T) {
	s, _, p := seed(t)
	ctx := context.Background()

	c, err := s.Carts().GetOrCreate(ctx, cart.Owner{SessionKey: "x"})
	require.NoError(t, err)
	_, err = s.Carts().AddQuantity(ctx, c.ID, p.ID, "", "", 1)
	require.NoError(t, err)

	ok, err := s.Products().Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	lines, err := s.Carts().Lines(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	ok, err = s.Products().Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetBySlugIncludesAttachments(t *testing.T) {
	s, c, p := seed(t)
	s.Products().SetAttachments(p.ID,
		[]product.Image{{URL: "b.jpg", Position: 2}, {URL: "a.jpg", Position: 1, IsPrimary: true}},
		[]product.Color{{Name: "Tan", HexCode: "#d2b48c", IsAvailable: true}},
		[]product.Size{{Size: "9", IsAvailable: true}},
		[]string{"Vegetable-tanned leather"})

	d, err := s.Products().GetBySlug(context.Background(), p.Slug)
	require.NoError(t, err)
	assert.Equal(t, c.ID, d.Category.ID)
	require.Len(t, d.Images, 2)
	assert.Equal(t, "a.jpg", d.Images[0].URL)
	assert.Len(t, d.Colors, 1)
	assert.Len(t, d.Sizes, 1)
	assert.Equal(t, []string{"Vegetable-tanned leather"}, d.Details)

	_, err = s.Products().GetBySlug(context.Background(), "nope")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestCartMutationsBumpUpdatedAt(t *testing.T) {
	s, _, p := seed(t)
	ctx := context.Background()
	clock := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	carts := s.Carts()
	updatedAt := func(id string) time.Time {
		c, err := carts.GetOrCreate(ctx, cart.Owner{SessionKey: "tick"})
		require.NoError(t, err)
		require.Equal(t, id, c.ID)
		return c.UpdatedAt
	}

	c, err := carts.GetOrCreate(ctx, cart.Owner{SessionKey: "tick"})
	require.NoError(t, err)
	it, err := carts.AddQuantity(ctx, c.ID, p.ID, "", "", 1)
	require.NoError(t, err)
	last := updatedAt(c.ID)
	assert.True(t, last.After(c.UpdatedAt))

	require.NoError(t, carts.SetQuantity(ctx, c.ID, it.ID, 2))
	next := updatedAt(c.ID)
	assert.True(t, next.After(last))
	last = next

	ok, err := carts.DeleteItem(ctx, c.ID, it.ID)
	require.NoError(t, err)
	require.True(t, ok)
	next = updatedAt(c.ID)
	assert.True(t, next.After(last))
	last = next

	require.NoError(t, carts.Clear(ctx, c.ID))
	assert.True(t, updatedAt(c.ID).After(last))
}
