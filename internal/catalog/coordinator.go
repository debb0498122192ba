// Package catalog removes products together with their media. A product that orders still
// reference is deactivated instead of deleted.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.uber.org/zap"
)

// PurgeConfirmation must be typed by the operator before DeleteAllReferenced is called.
const PurgeConfirmation = "DELETE ALL PRODUCTS"

type Outcome string

const (
	OutcomeDeleted            Outcome = "deleted"
	OutcomeSoftDeletedInstead Outcome = "soft_deleted_instead"
)

type BulkResult struct {
	Outcome  Outcome
	Affected int64
	// MediaFailures counts media references that could not be removed after a hard delete.
	MediaFailures int
}

type Coordinator struct {
	products port.ProductRepository
	media    port.MediaStore
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewCoordinator accepts a nil media store; products then carry only external image references.
func NewCoordinator(products port.ProductRepository, media port.MediaStore, m *metrics.Metrics, logger *zap.Logger) (*Coordinator, error) {
	if products == nil {
		return nil, errors.New("catalog: product repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Coordinator{
		products: products,
		media:    media,
		metrics:  m,
		logger:   logger.Named("catalog"),
	}, nil
}

// DeleteReferenced hard-deletes the product and then its media. When orders still reference
// the product it is deactivated instead and its media is left in place.
func (c *Coordinator) DeleteReferenced(ctx context.Context, productID uuid.UUID) (Outcome, error) {
	product, err := c.products.GetProduct(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("products.GetProduct: %w", err)
	}

	logger := c.logger.With(zap.Stringer("product_id", productID))

	err = c.products.DeleteProduct(ctx, productID)
	switch {
	case errors.Is(err, domain.ErrReferentialConflict):
		if err := c.products.DeactivateProduct(ctx, productID); err != nil {
			c.metrics.RecordDeletion("single", "error")
			return "", fmt.Errorf("products.DeactivateProduct: %w", err)
		}

		c.metrics.RecordDeletion("single", string(OutcomeSoftDeletedInstead))
		logger.Info("product is referenced by orders, deactivated instead")
		return OutcomeSoftDeletedInstead, nil
	case err != nil:
		c.metrics.RecordDeletion("single", "error")
		return "", fmt.Errorf("products.DeleteProduct: %w", err)
	}

	c.metrics.RecordDeletion("single", string(OutcomeDeleted))
	logger.Info("product deleted", zap.Int("images", len(product.Images)))

	c.deleteMedia(ctx, product.Images)

	return OutcomeDeleted, nil
}

// DeleteAllReferenced deletes every product in one statement or, when any product is
// referenced, deactivates all active products in one statement. It never deletes a subset.
func (c *Coordinator) DeleteAllReferenced(ctx context.Context) (BulkResult, error) {
	deleted, images, err := c.products.DeleteAllProducts(ctx)
	switch {
	case errors.Is(err, domain.ErrReferentialConflict):
		deactivated, err := c.products.DeactivateAllProducts(ctx)
		if err != nil {
			c.metrics.RecordDeletion("bulk", "error")
			return BulkResult{}, fmt.Errorf("products.DeactivateAllProducts: %w", err)
		}

		c.metrics.RecordDeletion("bulk", string(OutcomeSoftDeletedInstead))
		c.logger.Info("products are referenced by orders, deactivated all instead", zap.Int64("deactivated", deactivated))
		return BulkResult{Outcome: OutcomeSoftDeletedInstead, Affected: deactivated}, nil
	case err != nil:
		c.metrics.RecordDeletion("bulk", "error")
		return BulkResult{}, fmt.Errorf("products.DeleteAllProducts: %w", err)
	}

	c.metrics.RecordDeletion("bulk", string(OutcomeDeleted))
	c.logger.Info("all products deleted", zap.Int64("deleted", deleted), zap.Int("images", len(images)))

	failures := c.deleteMedia(ctx, images)

	return BulkResult{Outcome: OutcomeDeleted, Affected: deleted, MediaFailures: failures}, nil
}

// AttachImage uploads an image and appends its public reference to the product.
func (c *Coordinator) AttachImage(ctx context.Context, productID uuid.UUID, filename string, body io.Reader, contentType string) (string, error) {
	if c.media == nil {
		return "", errors.New("catalog: no media store configured")
	}

	name := path.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: image file name is empty", domain.ErrValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: content type %q is not an image", domain.ErrValidation, contentType)
	}

	if _, err := c.products.GetProduct(ctx, productID); err != nil {
		return "", fmt.Errorf("products.GetProduct: %w", err)
	}

	key := path.Join("products", productID.String(), uuid.NewString()+"-"+name)

	ref, err := c.media.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", fmt.Errorf("media.Upload: %w", err)
	}

	if err := c.products.AppendImage(ctx, productID, ref); err != nil {
		c.deleteMedia(ctx, []string{ref})
		return "", fmt.Errorf("products.AppendImage: %w", err)
	}

	return ref, nil
}

// deleteMedia removes refs one by one, logging and skipping failures. It returns the failure count.
func (c *Coordinator) deleteMedia(ctx context.Context, refs []string) int {
	if c.media == nil || len(refs) == 0 {
		return 0
	}

	ctx = context.WithoutCancel(ctx)

	failures := 0
	for _, ref := range refs {
		if err := c.media.Delete(ctx, ref); err != nil {
			failures++
			c.metrics.RecordMediaDeleteError()
			c.logger.Warn("delete media", zap.String("ref", ref), zap.Error(err))
		}
	}

	return failures
}
