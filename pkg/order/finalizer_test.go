package order_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmem "menuflow/pkg/cart/memory"
	"menuflow/pkg/catalog"
	catalogmem "menuflow/pkg/catalog/memory"
	"menuflow/pkg/order"
	ordermem "menuflow/pkg/order/memory"
)

func newFinalizer() (*catalogmem.Repository, *cartmem.Store, *ordermem.Repository, *order.Finalizer) {
	cat := catalogmem.New()
	cat.AddProduct(catalog.Product{ID: "p1", Name: "Margherita", Price: decimal.NewFromInt(9), Stock: 5})
	carts := cartmem.New()
	repo := ordermem.New(cat)
	return cat, carts, repo, order.NewFinalizer(repo, carts)
}

func TestPlaceOrderClearsCart(t *testing.T) {
	ctx := context.Background()
	_, carts, repo, fin := newFinalizer()

	c, _ := carts.Load(ctx, "sid")
	require.NoError(t, c.Add("p1", 2))
	require.NoError(t, carts.Save(ctx, "sid", c))

	o, err := fin.PlaceOrder(ctx, "alice", "sid")
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(18)))

	after, err := carts.Load(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, after.IsEmpty(), "cart must be cleared after checkout")

	orders, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	ctx := context.Background()
	_, _, repo, fin := newFinalizer()

	_, err := fin.PlaceOrder(ctx, "alice", "sid")
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	orders, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	_, carts, _, fin := newFinalizer()

	c, _ := carts.Load(ctx, "sid")
	require.NoError(t, c.Add("p1", 6)) // only 5 in stock
	require.NoError(t, carts.Save(ctx, "sid", c))

	_, err := fin.PlaceOrder(ctx, "alice", "sid")
	var se *order.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "p1", se.ProductID)

	after, err := carts.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Len(t, after.Lines, 1, "failed checkout must keep the cart so the user can correct it")
}
