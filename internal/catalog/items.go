package catalog

import (
	"context"
	"fmt"
	"path"

	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/blob"
	"github.com/goliatone/go-storefront/internal/cachekeys"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/goliatone/go-storefront/internal/store"
	"github.com/rs/zerolog"
)

const resourceItem = "Item"

// Items manages the catalog.
type Items struct {
	records *store.Collection[*domain.Item]
	layer   *cacheaside.Layer
	blobs   blob.Store
	cfg     Config
	logger  zerolog.Logger
}

func NewItems(db *store.DB, layer *cacheaside.Layer, blobs blob.Store, cfg Config, logger zerolog.Logger) *Items {
	return &Items{
		records: store.NewCollection(db, func() *domain.Item { return &domain.Item{} }),
		layer:   layer,
		blobs:   blobs,
		cfg:     cfg,
		logger:  logger,
	}
}

// Create adds an item. Titles are unique across hidden records too.
func (s *Items) Create(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
	item := in.Item(now())

	_, taken, err := s.records.FindOne(ctx, store.Equals("title", item.Title))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("title")
	}

	created, err := s.records.Create(ctx, item)
	if err != nil {
		return nil, conflictOn(err, "title")
	}
	s.logger.Info().Str("item_id", created.ID.String()).Msg("item created")
	return created, nil
}

// List returns one page of visible items, newest first unless q.Sort is asc.
func (s *Items) List(ctx context.Context, q domain.ItemQuery) ([]*domain.Item, error) {
	q = q.Normalize(s.cfg.PageLimit)
	items, _, err := s.records.Find(ctx,
		store.Visible(),
		store.Search(q.Query, "title", "description", "tags"),
		store.Page(q.Limit, q.Offset, q.Sort == domain.SortDesc),
	)
	return items, err
}

// Get is the item point lookup.
func (s *Items) Get(ctx context.Context, id string) (*domain.Item, error) {
	uid, err := parseID(id, resourceItem)
	if err != nil {
		return nil, err
	}
	return cacheaside.PointLookup[*domain.Item](ctx, s.layer, cachekeys.GetItem, id, resourceItem,
		func(ctx context.Context) (*domain.Item, bool, error) {
			return s.records.FindOne(ctx, store.ByID(uid), store.Visible())
		})
}

func (s *Items) Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, found, err := s.records.UpdateOne(ctx, item.ID, func(i *domain.Item) error {
		patch.Apply(i)
		return nil
	})
	return mutation(updated, found, conflictOn(err, "title"), resourceItem)
}

// Delete hides the item.
func (s *Items) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	hidden, found, err := s.records.Hide(ctx, item.ID)
	_, err = mutation(hidden, found, err, resourceItem)
	return err
}

func (s *Items) AddToWishlist(ctx context.Context, id, userID string) (*domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, found, err := s.records.AddToSet(ctx, item.ID, wishlist, userID)
	return mutation(updated, found, err, resourceItem)
}

func (s *Items) RemoveFromWishlist(ctx context.Context, id, userID string) (*domain.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, found, err := s.records.Pull(ctx, item.ID, wishlist, userID)
	return mutation(updated, found, err, resourceItem)
}

// AddImages stores uploads under items/<id> and appends their paths. It
// returns the item's full image list.
func (s *Items) AddImages(ctx context.Context, id string, uploads []blob.Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, domain.Validation("images", "is required")
	}
	if len(uploads) > domain.MaxUploadImages {
		return nil, domain.Validation("images", fmt.Sprintf("must contain less than or equal to %d items", domain.MaxUploadImages))
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	folder := path.Join("items", item.ID.String())
	paths := make([]string, 0, len(uploads))
	for _, u := range uploads {
		tmp, err := s.blobs.Put(ctx, u)
		if err != nil {
			return nil, err
		}
		dst := blob.Destination(folder, tmp)
		if err := s.blobs.Move(ctx, tmp, dst); err != nil {
			return nil, err
		}
		paths = append(paths, dst)
	}

	updated, found, err := s.records.AddToSet(ctx, item.ID, images, paths...)
	updated, err = mutation(updated, found, err, resourceItem)
	if err != nil {
		return nil, err
	}
	return updated.Images, nil
}

// RemoveImages detaches paths from the item and returns the images that
// remain. Deleting the stored objects is best effort.
func (s *Items) RemoveImages(ctx context.Context, id string, paths []string) ([]string, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var removed []string
	updated, found, err := s.records.UpdateOne(ctx, item.ID, func(i *domain.Item) error {
		removed = store.Intersect(i.Images, paths...)
		i.Images = store.Difference(i.Images, paths...)
		return nil
	})
	updated, err = mutation(updated, found, err, resourceItem)
	if err != nil {
		return nil, err
	}

	for _, p := range removed {
		if err := s.blobs.Delete(ctx, p); err != nil {
			s.logger.Warn().Err(err).Str("path", p).Msg("failed to delete item image")
		}
	}
	return updated.Images, nil
}

func wishlist(i *domain.Item) *[]string { return &i.WishlistedBy }
func images(i *domain.Item) *[]string   { return &i.Images }
