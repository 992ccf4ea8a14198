// Package memory implements an in-memory catalog repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"menuflow/pkg/catalog"
)

// Repository provides an in-memory implementation of catalog.Repository.
type Repository struct {
	mu          sync.RWMutex
	categories  map[string]catalog.Category
	products    map[string]catalog.Product
	ingredients map[string]catalog.Ingredient
	links       map[string][]catalog.ProductIngredient
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{
		categories:  make(map[string]catalog.Category),
		products:    make(map[string]catalog.Product),
		ingredients: make(map[string]catalog.Ingredient),
		links:       make(map[string][]catalog.ProductIngredient),
	}
}

// AddCategory stores a category.
func (r *Repository) AddCategory(c catalog.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = c
}

// AddProduct stores a product.
func (r *Repository) AddProduct(p catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

// AddIngredient stores an ingredient.
func (r *Repository) AddIngredient(i catalog.Ingredient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingredients[i.ID] = i
}

// LinkIngredient associates an ingredient with a product.
func (r *Repository) LinkIngredient(pi catalog.ProductIngredient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[pi.ProductID] = append(r.links[pi.ProductID], pi)
}

// ListCategories returns all categories sorted by name.
func (r *Repository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListProducts returns all products sorted by name.
func (r *Repository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListProductsByCategory returns the category's products sorted by name.
func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []catalog.Product
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

// ListIngredientsForProduct returns the product's ingredients.
func (r *Repository) ListIngredientsForProduct(ctx context.Context, productID string) ([]catalog.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.products[productID]; !ok {
		return nil, catalog.ErrNotFound
	}
	var out []catalog.Ingredient
	for _, link := range r.links[productID] {
		if ing, ok := r.ingredients[link.IngredientID]; ok {
			out = append(out, ing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DecrementStock subtracts qty from the product's stock only when the stock
// covers it. The check and the write happen under one lock.
func (r *Repository) DecrementStock(ctx context.Context, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return catalog.ErrNotFound
	}
	if p.Stock < qty {
		return &catalog.StockError{ProductID: productID}
	}
	p.Stock -= qty
	r.products[productID] = p
	return nil
}

// AddStock returns qty units to the product's stock.
func (r *Repository) AddStock(ctx context.Context, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return catalog.ErrNotFound
	}
	p.Stock += qty
	r.products[productID] = p
	return nil
}
