package catalog

import (
	"context"
	"path"

	"github.com/goliatone/go-storefront/cacheaside"
	"github.com/goliatone/go-storefront/internal/blob"
	"github.com/goliatone/go-storefront/internal/cachekeys"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/goliatone/go-storefront/internal/notify"
	"github.com/goliatone/go-storefront/internal/store"
	"github.com/rs/zerolog"
)

const resourceUser = "User"

// Notifier queues outbound mail without blocking.
type Notifier interface {
	Dispatch(msg notify.Message) bool
}

// Users manages accounts and their carts.
type Users struct {
	records   *store.Collection[*domain.User]
	items     *Items
	layer     *cacheaside.Layer
	blobs     blob.Store
	notifier  Notifier
	verifyURL string
	cfg       Config
	logger    zerolog.Logger
}

func NewUsers(db *store.DB, layer *cacheaside.Layer, items *Items, blobs blob.Store, notifier Notifier, verifyURL string, cfg Config, logger zerolog.Logger) *Users {
	return &Users{
		records:   store.NewCollection(db, func() *domain.User { return &domain.User{} }),
		items:     items,
		layer:     layer,
		blobs:     blobs,
		notifier:  notifier,
		verifyURL: verifyURL,
		cfg:       cfg,
		logger:    logger,
	}
}

// Create registers a user and queues the welcome mail.
func (s *Users) Create(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	user := in.User(now())

	_, taken, err := s.records.FindOne(ctx, store.Equals("email", user.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("email")
	}

	created, err := s.records.Create(ctx, user)
	if err != nil {
		return nil, conflictOn(err, "email")
	}

	if s.notifier != nil {
		s.notifier.Dispatch(notify.Message{
			To:       created.Email,
			Subject:  "Registration Successful",
			Template: notify.TemplateVerify,
			Context:  map[string]any{"url": s.verifyURL, "name": created.Firstname},
		})
	}
	s.logger.Info().Str("user_id", created.ID.String()).Msg("user registered")
	return created, nil
}

// FindByID is the user point lookup.
func (s *Users) FindByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id, resourceUser)
	if err != nil {
		return nil, err
	}
	return cacheaside.PointLookup[*domain.User](ctx, s.layer, cachekeys.GetUser, id, resourceUser,
		func(ctx context.Context) (*domain.User, bool, error) {
			return s.records.FindOne(ctx, store.ByID(uid), store.Visible())
		})
}

func (s *Users) List(ctx context.Context, q domain.UserQuery) ([]*domain.User, error) {
	q = q.Normalize(s.cfg.PageLimit)
	users, _, err := s.records.Find(ctx,
		store.Visible(),
		store.Search(q.Query, "email", "firstname", "lastname"),
		store.Page(q.Limit, q.Offset, q.Sort == domain.SortDesc),
	)
	return users, err
}

func (s *Users) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, found, err := s.records.UpdateOne(ctx, user.ID, func(u *domain.User) error {
		patch.Apply(u)
		return nil
	})
	return mutation(updated, found, err, resourceUser)
}

// Remove hides the user.
func (s *Users) Remove(ctx context.Context, id string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	hidden, found, err := s.records.Hide(ctx, user.ID)
	_, err = mutation(hidden, found, err, resourceUser)
	return err
}

// UploadImage stores the profile picture as users/<id>/image.png.
func (s *Users) UploadImage(ctx context.Context, id string, u blob.Upload) (string, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	tmp, err := s.blobs.Put(ctx, u)
	if err != nil {
		return "", err
	}
	dst := path.Join("users", user.ID.String(), "image.png")
	if err := s.blobs.Move(ctx, tmp, dst); err != nil {
		return "", err
	}
	updated, found, err := s.records.UpdateOne(ctx, user.ID, func(rec *domain.User) error {
		rec.Image = dst
		return nil
	})
	if _, err := mutation(updated, found, err, resourceUser); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *Users) GetCart(ctx context.Context, id string) ([]string, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

// AddToCart validates every item id before touching the cart, so an unknown
// id leaves the cart unchanged.
func (s *Users) AddToCart(ctx context.Context, id string, itemIDs []string) ([]string, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, itemID := range itemIDs {
		if _, err := s.items.Get(ctx, itemID); err != nil {
			return nil, err
		}
	}
	updated, found, err := s.records.AddToSet(ctx, user.ID, cart, itemIDs...)
	updated, err = mutation(updated, found, err, resourceUser)
	if err != nil {
		return nil, err
	}
	return updated.Cart, nil
}

func (s *Users) RemoveFromCart(ctx context.Context, id string, itemIDs []string) ([]string, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, found, err := s.records.Pull(ctx, user.ID, cart, itemIDs...)
	updated, err = mutation(updated, found, err, resourceUser)
	if err != nil {
		return nil, err
	}
	return updated.Cart, nil
}

func cart(u *domain.User) *[]string { return &u.Cart }
