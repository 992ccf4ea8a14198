// Package postgres implements the catalog repository over PostgreSQL.
package postgres

import (
	"context"
	"database/sql"

	"menuflow/pkg/catalog"
)

// Repository reads catalog data from PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the catalog tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS categories (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			category_id TEXT NOT NULL REFERENCES categories(id),
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       NUMERIC(10,2) NOT NULL,
			stock       INT NOT NULL DEFAULT 0,
			image_url   TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS ingredients (
			id    TEXT PRIMARY KEY,
			name  TEXT NOT NULL,
			stock NUMERIC(10,2) NOT NULL DEFAULT 0,
			unit  TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS product_ingredients (
			product_id    TEXT NOT NULL REFERENCES products(id),
			ingredient_id TEXT NOT NULL REFERENCES ingredients(id),
			amount        NUMERIC(10,2) NOT NULL,
			PRIMARY KEY (product_id, ingredient_id)
		);`)
	return err
}

// ListCategories returns all categories sorted by name.
func (r *Repository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProducts returns all products sorted by name.
func (r *Repository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, category_id, name, description, price, stock, image_url FROM products ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListProductsByCategory returns the category's products sorted by name.
func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, category_id, name, description, price, stock, image_url FROM products WHERE category_id=$1 ORDER BY name",
		categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := r.db.QueryRowContext(ctx,
		"SELECT id, category_id, name, description, price, stock, image_url FROM products WHERE id=$1", id).
		Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL)
	if err == sql.ErrNoRows {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, err
}

// ListIngredientsForProduct returns the product's ingredients sorted by name.
func (r *Repository) ListIngredientsForProduct(ctx context.Context, productID string) ([]catalog.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, i.stock, i.unit
		FROM ingredients i
		JOIN product_ingredients pi ON pi.ingredient_id = i.id
		WHERE pi.product_id = $1
		ORDER BY i.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []catalog.Ingredient
	for rows.Next() {
		var ing catalog.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Stock, &ing.Unit); err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func scanProducts(rows *sql.Rows) ([]catalog.Product, error) {
	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
