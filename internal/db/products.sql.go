package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func scanProduct(row pgx.Row) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Images,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertProduct = `INSERT INTO products (name, images)
VALUES ($1, $2)
RETURNING id
`

func (q *Queries) InsertProduct(ctx context.Context, name string, images []string) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, insertProduct, name, images)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getProduct = `SELECT id, name, images, is_active, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const listProducts = `SELECT id, name, images, is_active, created_at, updated_at
FROM products
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2
`

func (q *Queries) ListProducts(ctx context.Context, limit, offset int32) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const appendProductImage = `UPDATE products
SET images     = array_append(images, $2::text),
    updated_at = now()
WHERE id = $1
`

func (q *Queries) AppendProductImage(ctx context.Context, id uuid.UUID, ref string) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, appendProductImage, id, ref)
}

const deleteProduct = `DELETE
FROM products
WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, deleteProduct, id)
}

const deleteAllProducts = `DELETE
FROM products
RETURNING images
`

// DeleteAllProducts returns the image list of every deleted row.
func (q *Queries) DeleteAllProducts(ctx context.Context) ([][]string, error) {
	rows, err := q.db.Query(ctx, deleteAllProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items [][]string
	for rows.Next() {
		var images []string
		if err := rows.Scan(&images); err != nil {
			return nil, err
		}
		items = append(items, images)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deactivateProduct = `UPDATE products
SET is_active  = FALSE,
    updated_at = now()
WHERE id = $1
`

func (q *Queries) DeactivateProduct(ctx context.Context, id uuid.UUID) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, deactivateProduct, id)
}

const deactivateAllProducts = `UPDATE products
SET is_active  = FALSE,
    updated_at = now()
WHERE is_active
`

func (q *Queries) DeactivateAllProducts(ctx context.Context) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, deactivateAllProducts)
}
