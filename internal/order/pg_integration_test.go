package order_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/db"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/order"
	"github.com/MikeMC777/vnb-store/internal/product"
)

// Runs against a real database: VNB_TEST_POSTGRES_DSN=postgres://... go test ./internal/order
func TestPG_ConcurrentCheckoutNeverOversells(t *testing.T) {
	dsn := os.Getenv("VNB_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VNB_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	log := logx.Nop()

	pool, err := db.Connect(ctx, dsn, 16, log)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.Migrate(ctx, pool))

	products := product.NewPGRepo(pool)
	suffix := uuid.NewString()[:8]
	cat := &product.Category{Name: "it-" + suffix, IsActive: true}
	require.NoError(t, products.CreateCategory(ctx, cat))
	p := &product.Product{
		CategoryID: cat.ID, Name: "Last Pair " + suffix, Price: decimal.RequireFromString("10.00"),
		StockQuantity: 3, IsActive: true,
	}
	require.NoError(t, products.Create(ctx, p))
	t.Cleanup(func() {
		_, _ = products.Delete(context.Background(), p.ID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM categories WHERE id=$1`, cat.ID)
	})

	carts := cart.NewService(cart.NewPGRepo(pool), products, log)
	orders := order.NewService(order.NewPGRepo(pool), carts, nil, log)

	const buyers = 6
	owners := make([]cart.Owner, buyers)
	for i := range owners {
		owners[i] = cart.Owner{SessionKey: "it-" + suffix + "-" + uuid.NewString()}
		_, err := carts.AddItem(ctx, owners[i], cart.AddItemInput{ProductID: p.ID, Quantity: 1})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for _, o := range owners {
		wg.Add(1)
		go func(o cart.Owner) {
			defer wg.Done()
			_, _, err := orders.Checkout(ctx, order.CheckoutInput{Owner: o, Customer: customer()})
			results <- err
		}(o)
	}
	wg.Wait()
	close(results)

	placed := 0
	for err := range results {
		if err == nil {
			placed++
		}
	}
	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	// serialization retries can give up under contention, but every placed
	// order took exactly one unit
	assert.GreaterOrEqual(t, got.StockQuantity, 0)
	assert.Equal(t, 3, placed+got.StockQuantity)
	assert.GreaterOrEqual(t, placed, 1)
}
