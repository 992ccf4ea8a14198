// Package catalog holds the read-mostly menu data: categories, products,
// ingredients and the product-ingredient association.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Category groups products on the menu.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a single menu item. Stock is counted in servings.
type Product struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Ingredient is a raw ingredient tracked in the given unit.
type Ingredient struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Stock decimal.Decimal `json:"stock"`
	Unit  string          `json:"unit"`
}

// ProductIngredient links a product to one ingredient with the amount
// used per serving. It has no identity of its own.
type ProductIngredient struct {
	ProductID    string          `json:"product_id"`
	IngredientID string          `json:"ingredient_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// Repository defines the typed catalog queries. One explicit function per
// access path; no generic query layer.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	ListIngredientsForProduct(ctx context.Context, productID string) ([]Ingredient, error)
}

// ErrNotFound indicates the requested catalog entity does not exist.
var ErrNotFound = errors.New("catalog: not found")

// StockError reports a product whose stock cannot cover a requested decrement.
type StockError struct {
	ProductID string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("catalog: insufficient stock for product %s", e.ProductID)
}
