package memrepo

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type productRepository struct {
	v view
}

func (r *productRepository) InsertProduct(_ context.Context, product domain.Product) (uuid.UUID, error) {
	id := uuid.New()

	err := r.v.do(func(st *state) error {
		now := r.v.s.now()

		p := product
		p.ID = id
		p.Images = slices.Clone(product.Images)
		p.Active = true
		p.CreatedAt = now
		p.UpdatedAt = now

		st.products[id] = p
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (r *productRepository) GetProduct(_ context.Context, id uuid.UUID) (domain.Product, error) {
	var product domain.Product

	err := r.v.read(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		product = detachProduct(p)
		return nil
	})

	return product, err
}

func (r *productRepository) ListProducts(_ context.Context, p domain.Page) ([]domain.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var result []domain.Product

	err := r.v.read(func(st *state) error {
		for _, product := range st.products {
			result = append(result, detachProduct(product))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b domain.Product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	return page(result, p), nil
}

func (r *productRepository) AppendImage(_ context.Context, id uuid.UUID, ref string) error {
	return r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Images = append(slices.Clip(p.Images), ref)
		p.UpdatedAt = r.v.s.now()
		st.products[id] = p
		return nil
	})
}

func (r *productRepository) DeleteProduct(_ context.Context, id uuid.UUID) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		if referenced(st, id) {
			return domain.ErrProductReferenced
		}
		delete(st.products, id)
		return nil
	})
}

func (r *productRepository) DeleteAllProducts(_ context.Context) (int64, []string, error) {
	var (
		deleted int64
		images  []string
	)

	err := r.v.do(func(st *state) error {
		for id := range st.products {
			if referenced(st, id) {
				return domain.ErrProductReferenced
			}
		}
		for _, product := range st.products {
			images = append(images, product.Images...)
		}
		deleted = int64(len(st.products))
		clear(st.products)
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	return deleted, images, nil
}

func (r *productRepository) DeactivateProduct(_ context.Context, id uuid.UUID) error {
	return r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Active = false
		p.UpdatedAt = r.v.s.now()
		st.products[id] = p
		return nil
	})
}

func (r *productRepository) DeactivateAllProducts(_ context.Context) (int64, error) {
	var deactivated int64

	err := r.v.do(func(st *state) error {
		now := r.v.s.now()
		for id, p := range st.products {
			if !p.Active {
				continue
			}
			p.Active = false
			p.UpdatedAt = now
			st.products[id] = p
			deactivated++
		}
		return nil
	})

	return deactivated, err
}

func referenced(st *state, productID uuid.UUID) bool {
	for _, o := range st.orders {
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}
