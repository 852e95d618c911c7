package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pescastur/storefront/internal/domain/product"
)

const productColumns = `uid, name, description, brand, model, category,
		price, cost, discount, stock, ratings, comments, image`

const (
	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY uid`

	getProductByUIDSQL = `SELECT ` + productColumns + ` FROM products WHERE uid = $1`

	getProductsByUIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE uid = ANY($1)`

	upsertProductSQL = `INSERT INTO products
		(uid, name, description, brand, model, category, price, cost, discount, stock, ratings, comments, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			cost = EXCLUDED.cost,
			discount = EXCLUDED.discount,
			stock = EXCLUDED.stock,
			ratings = EXCLUDED.ratings,
			comments = EXCLUDED.comments,
			image = EXCLUDED.image`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by UID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByUID returns a single product by its identifier.
func (r *ProductRepository) GetByUID(ctx context.Context, uid string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByUIDSQL, uid)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", uid, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", uid, err)
	}
	return &p, nil
}

// GetByUIDs returns products matching any of the given identifiers.
func (r *ProductRepository) GetByUIDs(ctx context.Context, uids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByUIDsSQL, uids)
	if err != nil {
		return nil, fmt.Errorf("getting products by uids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// BatchUpsert inserts or updates products in a single batch round trip.
func (r *ProductRepository) BatchUpsert(ctx context.Context, products []product.Product) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProductSQL,
			p.UID, p.Name, p.Description, p.Brand, p.Model, p.Category,
			p.Price, p.Cost, p.Discount, p.Stock, p.Ratings, p.Comments, p.Image,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range products {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upserting products: %w", err)
		}
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.UID, &p.Name, &p.Description, &p.Brand, &p.Model, &p.Category,
		&p.Price, &p.Cost, &p.Discount, &p.Stock, &p.Ratings, &p.Comments, &p.Image,
	)
	return p, err
}
