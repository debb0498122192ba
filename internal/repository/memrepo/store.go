// Package memrepo keeps every repository in process memory. It honors the same
// conditional-update and referential rules as the PostgreSQL repositories and is
// used for local runs and service tests.
package memrepo

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
)

type state struct {
	orders        map[uuid.UUID]domain.Order
	history       map[uuid.UUID][]domain.StatusChangeRecord
	returns       map[uuid.UUID]domain.ReturnRequest
	notifications map[uuid.UUID]domain.Notification
	products      map[uuid.UUID]domain.Product
}

func (s *state) clone() *state {
	return &state{
		orders:        maps.Clone(s.orders),
		history:       maps.Clone(s.history),
		returns:       maps.Clone(s.returns),
		notifications: maps.Clone(s.notifications),
		products:      maps.Clone(s.products),
	}
}

type Store struct {
	mu   sync.Mutex
	st   *state
	last time.Time
}

func NewStore() *Store {
	return &Store{
		st: &state{
			orders:        map[uuid.UUID]domain.Order{},
			history:       map[uuid.UUID][]domain.StatusChangeRecord{},
			returns:       map[uuid.UUID]domain.ReturnRequest{},
			notifications: map[uuid.UUID]domain.Notification{},
			products:      map[uuid.UUID]domain.Product{},
		},
	}
}

// now is strictly increasing so that newest-first listings have a stable order.
// Callers hold s.mu.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// view runs fn against the state. A view that is part of a transaction already
// holds the store lock.
type view struct {
	s      *Store
	inTx   bool
	txData *state
}

func (v view) do(fn func(st *state) error) error {
	if v.inTx {
		return fn(v.txData)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	return v.s.apply(fn)
}

func (v view) read(fn func(st *state) error) error {
	if v.inTx {
		return fn(v.txData)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	return fn(v.s.st)
}

// apply commits fn's changes only when it succeeds.
func (s *Store) apply(fn func(st *state) error) error {
	draft := s.st.clone()
	if err := fn(draft); err != nil {
		return err
	}
	s.st = draft
	return nil
}

func (s *Store) Orders() port.OrderRepository {
	return &orderRepository{view{s: s}}
}

func (s *Store) Returns() port.ReturnRepository {
	return &returnRepository{view{s: s}}
}

func (s *Store) Notifications() port.NotificationRepository {
	return &notificationRepository{view{s: s}}
}

func (s *Store) Products() port.ProductRepository {
	return &productRepository{view{s: s}}
}

func (s *Store) UnitOfWork() port.UnitOfWork {
	return unitOfWork{s: s}
}

type unitOfWork struct {
	s *Store
}

// RunInTx serializes the whole callback against the store.
func (u unitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, repos port.TxRepositories) error) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	return u.s.apply(func(st *state) error {
		v := view{s: u.s, inTx: true, txData: st}
		return fn(ctx, port.TxRepositories{
			Orders:  &orderRepository{v},
			Returns: &returnRepository{v},
		})
	})
}

func page[T any](items []T, p domain.Page) []T {
	if p.Offset >= len(items) {
		return nil
	}
	items = items[p.Offset:]
	if limit := p.EffectiveLimit(); len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Values handed out by the repositories must not alias slices held in state.

func detachOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func detachProduct(p domain.Product) domain.Product {
	p.Images = slices.Clone(p.Images)
	return p
}

func detachReturn(req domain.ReturnRequest) domain.ReturnRequest {
	req.EvidenceImages = slices.Clone(req.EvidenceImages)
	return req
}
