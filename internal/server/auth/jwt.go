package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/config"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens. Each kind has
// its own secret, lifetime and claim set.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	switch k {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Claims is the JWT payload. Refresh tokens carry only UserID; access tokens
// also carry the identity fields. Kind names the token kind and must match
// the kind it is verified as.
type Claims struct {
	jwt.RegisteredClaims
	Kind     string `json:"typ"`
	UserID   string `json:"_id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// TokenIssuer signs and verifies HS256 tokens of both kinds.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

func NewTokenIssuer(cfg *config.Config, opts ...IssuerOption) *TokenIssuer {
	i := &TokenIssuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *TokenIssuer) params(kind TokenKind) ([]byte, time.Duration, error) {
	var (
		secret []byte
		ttl    time.Duration
	)
	switch kind {
	case AccessToken:
		secret, ttl = i.accessSecret, i.accessTTL
	case RefreshToken:
		secret, ttl = i.refreshSecret, i.refreshTTL
	default:
		return nil, 0, fmt.Errorf("unknown token kind %v", kind)
	}
	if len(secret) == 0 {
		return nil, 0, fmt.Errorf("%s token: %w", kind, common.ErrMissingSecret)
	}
	return secret, ttl, nil
}

// Issue signs a token of the given kind for user.
func (i *TokenIssuer) Issue(kind TokenKind, user *models.User) (string, error) {
	secret, ttl, err := i.params(kind)
	if err != nil {
		return "", err
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:   kind.String(),
		UserID: user.ID,
	}
	if kind == AccessToken {
		claims.Email = user.Email
		claims.Username = user.Username
		claims.FullName = user.FullName
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return token, nil
}

// Verify checks signature, expiry and kind of a token and returns its
// claims. Failures are ErrTokenExpired or ErrInvalidToken.
func (i *TokenIssuer) Verify(kind TokenKind, tokenString string) (*Claims, error) {
	secret, _, err := i.params(kind)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	if claims.Kind != kind.String() {
		return nil, fmt.Errorf("%w: %s token used as %s token", common.ErrInvalidToken, claims.Kind, kind)
	}

	return claims, nil
}
