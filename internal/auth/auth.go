package auth

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Role   domain.Role
}

type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// Tokens issues and verifies HS256 identity tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func NewTokens(cfg Config) (*Tokens, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for id.
func (t *Tokens) Issue(id Identity) (string, error) {
	now := t.now().UTC()
	c := claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   id.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Parse verifies raw and returns the identity it carries. Any failure is an
// Unauthorized error.
func (t *Tokens) Parse(raw string) (Identity, error) {
	var c claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	tkn, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid || c.Subject == "" {
		return Identity{}, domain.Unauthorized("invalid token")
	}
	return Identity{UserID: c.Subject, Role: c.Role}, nil
}

// Authorize allows id when roles is empty or contains its role.
func Authorize(id Identity, roles ...domain.Role) error {
	if id.UserID == "" {
		return domain.Unauthorized("authentication required")
	}
	if len(roles) == 0 || slices.Contains(roles, id.Role) {
		return nil
	}
	return domain.Forbidden("insufficient role")
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
