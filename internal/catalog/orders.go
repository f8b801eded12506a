package catalog

import (
	"context"

	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/cachekeys"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/goliatone/go-storefront/internal/store"
	"github.com/rs/zerolog"
)

const resourceOrder = "Order"

// Orders records purchases.
type Orders struct {
	records *store.Collection[*domain.Order]
	layer   *cacheaside.Layer
	cfg     Config
	logger  zerolog.Logger
}

func NewOrders(db *store.DB, layer *cacheaside.Layer, cfg Config, logger zerolog.Logger) *Orders {
	return &Orders{
		records: store.NewCollection(db, func() *domain.Order { return &domain.Order{} }),
		layer:   layer,
		cfg:     cfg,
		logger:  logger,
	}
}

// Create places an order for userID with its total fixed at creation.
func (s *Orders) Create(ctx context.Context, userID string, in domain.OrderInput) (*domain.Order, error) {
	order, err := s.records.Create(ctx, in.Order(userID, now()))
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID).
		Float64("total_cost", order.TotalCost).
		Msg("order created")
	return order, nil
}

func (s *Orders) List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, error) {
	q = q.Normalize(s.cfg.PageLimit)
	criteria := []store.Criteria{store.Visible(), store.Page(q.Limit, q.Offset, q.Sort == domain.SortDesc)}
	if q.User != "" {
		criteria = append(criteria, store.Equals("user_id", q.User))
	}
	orders, _, err := s.records.Find(ctx, criteria...)
	return orders, err
}

// Get is the order point lookup.
func (s *Orders) Get(ctx context.Context, id string) (*domain.Order, error) {
	uid, err := parseID(id, resourceOrder)
	if err != nil {
		return nil, err
	}
	return cacheaside.PointLookup[*domain.Order](ctx, s.layer, cachekeys.GetOrder, id, resourceOrder,
		func(ctx context.Context) (*domain.Order, bool, error) {
			return s.records.FindOne(ctx, store.ByID(uid), store.Visible())
		})
}

// Update changes status or payment. The total is never recomputed.
func (s *Orders) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, found, err := s.records.UpdateOne(ctx, order.ID, func(o *domain.Order) error {
		patch.Apply(o)
		return nil
	})
	return mutation(updated, found, err, resourceOrder)
}
