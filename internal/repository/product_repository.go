package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
	"github.com/samber/lo"
)

type productRepository struct {
	q *db.Queries
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{
		q: db.New(pool),
	}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{
		q: db.New(tx),
	}
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	images := product.Images
	if images == nil {
		images = []string{}
	}

	id, err := r.q.InsertProduct(ctx, product.Name, images)
	if err != nil {
		return uuid.Nil, fmt.Errorf("q.InsertProduct: %w", err)
	}

	return id, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("q.GetProduct: %w", domain.ErrProductNotFound)
		}
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	return mapDBProductToDomain(row), nil
}

func (r *productRepository) ListProducts(ctx context.Context, page domain.Page) ([]domain.Product, error) {
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: page: %w", domain.ErrValidation, err)
	}

	rows, err := r.q.ListProducts(ctx, int32(page.EffectiveLimit()), int32(page.Offset))
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	return mapDBProductsToDomain(rows), nil
}

func (r *productRepository) AppendImage(ctx context.Context, id uuid.UUID, ref string) error {
	cmdTag, err := r.q.AppendProductImage(ctx, id, ref)
	if err != nil {
		return fmt.Errorf("q.AppendProductImage: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.AppendProductImage: %w", domain.ErrProductNotFound)
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.q.DeleteProduct(ctx, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("q.DeleteProduct: %w", domain.ErrProductReferenced)
		}
		return fmt.Errorf("q.DeleteProduct: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.DeleteProduct: %w", domain.ErrProductNotFound)
	}

	return nil
}

// DeleteAllProducts is a single statement: one referenced row aborts the whole delete.
// The images come from the deleted rows themselves.
func (r *productRepository) DeleteAllProducts(ctx context.Context) (int64, []string, error) {
	rows, err := r.q.DeleteAllProducts(ctx)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return 0, nil, fmt.Errorf("q.DeleteAllProducts: %w", domain.ErrProductReferenced)
		}
		return 0, nil, fmt.Errorf("q.DeleteAllProducts: %w", err)
	}

	return int64(len(rows)), lo.Flatten(rows), nil
}

func (r *productRepository) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.q.DeactivateProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("q.DeactivateProduct: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.DeactivateProduct: %w", domain.ErrProductNotFound)
	}

	return nil
}

func (r *productRepository) DeactivateAllProducts(ctx context.Context) (int64, error) {
	cmdTag, err := r.q.DeactivateAllProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("q.DeactivateAllProducts: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

func mapDBProductToDomain(row db.Product) domain.Product {
	return domain.Product{
		ID:        row.ID,
		Name:      row.Name,
		Images:    row.Images,
		Active:    row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func mapDBProductsToDomain(rows []db.Product) []domain.Product {
	var products []domain.Product

	for _, row := range rows {
		products = append(products, mapDBProductToDomain(row))
	}

	return products
}
