package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"menuflow/pkg/cart"
	"menuflow/pkg/catalog"
	catalogmem "menuflow/pkg/catalog/memory"
	"menuflow/pkg/order"
)

func newFixture() (*catalogmem.Repository, *Repository) {
	cat := catalogmem.New()
	cat.AddCategory(catalog.Category{ID: "c1", Name: "Mains"})
	cat.AddProduct(catalog.Product{ID: "p1", CategoryID: "c1", Name: "Margherita", Price: decimal.NewFromInt(9), Stock: 5})
	cat.AddProduct(catalog.Product{ID: "p2", CategoryID: "c1", Name: "Carbonara", Price: decimal.NewFromInt(11), Stock: 2})
	return cat, New(cat)
}

func TestPlace(t *testing.T) {
	ctx := context.Background()
	cat, repo := newFixture()

	o, err := repo.Place(ctx, "alice", []cart.Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(o.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(o.Items))
	}
	if o.Status != order.StatusPlaced {
		t.Fatalf("unexpected status %q", o.Status)
	}
	want := decimal.NewFromInt(29) // 2*9 + 1*11
	if !o.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, o.Total)
	}

	p1, _ := cat.GetProduct(ctx, "p1")
	p2, _ := cat.GetProduct(ctx, "p2")
	if p1.Stock != 3 || p2.Stock != 1 {
		t.Fatalf("expected stock 3/1, got %d/%d", p1.Stock, p2.Stock)
	}
}

func TestPlaceEmptyCart(t *testing.T) {
	ctx := context.Background()
	_, repo := newFixture()

	if _, err := repo.Place(ctx, "alice", nil); !errors.Is(err, order.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	orders, _ := repo.ListByUser(ctx, "alice")
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestPlaceInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	cat, repo := newFixture()

	// Second line overdraws; the first line's decrement must be undone.
	_, err := repo.Place(ctx, "alice", []cart.Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	})
	var se *order.InsufficientStockError
	if !errors.As(err, &se) || se.ProductID != "p2" {
		t.Fatalf("expected InsufficientStockError for p2, got %v", err)
	}

	p1, _ := cat.GetProduct(ctx, "p1")
	p2, _ := cat.GetProduct(ctx, "p2")
	if p1.Stock != 5 || p2.Stock != 2 {
		t.Fatalf("expected stock restored to 5/2, got %d/%d", p1.Stock, p2.Stock)
	}
	orders, _ := repo.ListByUser(ctx, "alice")
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestPlaceUnknownProduct(t *testing.T) {
	ctx := context.Background()
	cat, repo := newFixture()

	_, err := repo.Place(ctx, "alice", []cart.Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "ghost", Quantity: 1},
	})
	if !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	p1, _ := cat.GetProduct(ctx, "p1")
	if p1.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %d", p1.Stock)
	}
}

func TestCapturedPriceSurvivesCatalogEdit(t *testing.T) {
	ctx := context.Background()
	cat, repo := newFixture()

	o, err := repo.Place(ctx, "alice", []cart.Line{{ProductID: "p1", Quantity: 2}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	p1, _ := cat.GetProduct(ctx, "p1")
	p1.Price = decimal.NewFromInt(99)
	cat.AddProduct(p1)

	got, err := repo.GetForUser(ctx, o.ID, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Items[0].UnitPrice.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("captured price changed: %s", got.Items[0].UnitPrice)
	}
	if !got.Total.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("total changed: %s", got.Total)
	}
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx := context.Background()
	cat, repo := newFixture()

	// Stock 5, two checkouts of 3 each: exactly one succeeds, stock ends at 2.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Place(ctx, "alice", []cart.Line{{ProductID: "p1", Quantity: 3}})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		var se *order.InsufficientStockError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &se):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || short != 1 {
		t.Fatalf("expected one success and one shortfall, got ok=%d short=%d", ok, short)
	}

	p1, _ := cat.GetProduct(ctx, "p1")
	if p1.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", p1.Stock)
	}
}

func TestHistoryOrderingAndScoping(t *testing.T) {
	ctx := context.Background()
	_, repo := newFixture()

	first, err := repo.Place(ctx, "alice", []cart.Line{{ProductID: "p1", Quantity: 1}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	second, err := repo.Place(ctx, "alice", []cart.Line{{ProductID: "p2", Quantity: 1}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := repo.Place(ctx, "bob", []cart.Line{{ProductID: "p1", Quantity: 1}}); err != nil {
		t.Fatalf("place: %v", err)
	}

	orders, err := repo.ListByUser(ctx, "alice")
	if err != nil || len(orders) != 2 {
		t.Fatalf("list: %v len=%d", err, len(orders))
	}
	if orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Fatal("expected most recent order first")
	}

	got, err := repo.GetForUser(ctx, first.ID, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected items on detail read, got %d", len(got.Items))
	}

	// Another user's order id must look like it does not exist.
	if _, err := repo.GetForUser(ctx, first.ID, "bob"); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetForUser(ctx, "ghost", "alice"); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
