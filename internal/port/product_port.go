package port

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type ProductRepository interface {
	InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	ListProducts(ctx context.Context, page domain.Page) ([]domain.Product, error)
	AppendImage(ctx context.Context, id uuid.UUID, ref string) error

	// DeleteProduct and DeleteAllProducts fail with domain.ErrProductReferenced
	// when an order item still points at a product; nothing is deleted then.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// DeleteAllProducts returns the number of deleted products and the image
	// references they held at the moment of deletion.
	DeleteAllProducts(ctx context.Context) (deleted int64, images []string, err error)

	DeactivateProduct(ctx context.Context, id uuid.UUID) error
	DeactivateAllProducts(ctx context.Context) (int64, error)
}

type MediaStore interface {
	// Upload stores the body under key and returns its public reference.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// Delete removes the object behind ref; deleting a missing object is not an error.
	Delete(ctx context.Context, ref string) error
}
