package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"menuflow/pkg/catalog"
)

func seed(r *Repository) {
	r.AddCategory(catalog.Category{ID: "c1", Name: "Mains"})
	r.AddCategory(catalog.Category{ID: "c2", Name: "Drinks"})
	r.AddProduct(catalog.Product{ID: "p1", CategoryID: "c1", Name: "Margherita", Price: decimal.NewFromInt(9), Stock: 5})
	r.AddProduct(catalog.Product{ID: "p2", CategoryID: "c1", Name: "Carbonara", Price: decimal.NewFromInt(11), Stock: 3})
	r.AddProduct(catalog.Product{ID: "p3", CategoryID: "c2", Name: "Lemonade", Price: decimal.NewFromInt(3), Stock: 20})
	r.AddIngredient(catalog.Ingredient{ID: "i1", Name: "Tomato", Stock: decimal.NewFromInt(40), Unit: "kg"})
	r.AddIngredient(catalog.Ingredient{ID: "i2", Name: "Mozzarella", Stock: decimal.NewFromInt(12), Unit: "kg"})
	r.LinkIngredient(catalog.ProductIngredient{ProductID: "p1", IngredientID: "i1", Amount: decimal.NewFromFloat(0.2)})
	r.LinkIngredient(catalog.ProductIngredient{ProductID: "p1", IngredientID: "i2", Amount: decimal.NewFromFloat(0.1)})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	r := New()
	seed(r)

	cats, err := r.ListCategories(ctx)
	if err != nil || len(cats) != 2 {
		t.Fatalf("categories: %v len=%d", err, len(cats))
	}
	if cats[0].Name != "Drinks" {
		t.Fatalf("expected name order, got %s first", cats[0].Name)
	}

	mains, err := r.ListProductsByCategory(ctx, "c1")
	if err != nil || len(mains) != 2 {
		t.Fatalf("by category: %v len=%d", err, len(mains))
	}
	if mains[0].Name != "Carbonara" {
		t.Fatalf("expected name order, got %s first", mains[0].Name)
	}

	p, err := r.GetProduct(ctx, "p1")
	if err != nil || p.Name != "Margherita" {
		t.Fatalf("get product: %v %+v", err, p)
	}
	if _, err := r.GetProduct(ctx, "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ings, err := r.ListIngredientsForProduct(ctx, "p1")
	if err != nil || len(ings) != 2 {
		t.Fatalf("ingredients: %v len=%d", err, len(ings))
	}
	if _, err := r.ListIngredientsForProduct(ctx, "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecrementStock(t *testing.T) {
	ctx := context.Background()
	r := New()
	seed(r)

	if err := r.DecrementStock(ctx, "p1", 3); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	p, _ := r.GetProduct(ctx, "p1")
	if p.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", p.Stock)
	}

	err := r.DecrementStock(ctx, "p1", 3)
	var se *catalog.StockError
	if !errors.As(err, &se) || se.ProductID != "p1" {
		t.Fatalf("expected StockError for p1, got %v", err)
	}
	p, _ = r.GetProduct(ctx, "p1")
	if p.Stock != 2 {
		t.Fatalf("failed decrement changed stock to %d", p.Stock)
	}

	if err := r.DecrementStock(ctx, "nope", 1); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := r.AddStock(ctx, "p1", 3); err != nil {
		t.Fatalf("add stock: %v", err)
	}
	p, _ = r.GetProduct(ctx, "p1")
	if p.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", p.Stock)
	}
}
