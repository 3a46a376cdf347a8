package utils // package utils provides the token service and password hashing helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSecret is returned when tokens are requested but no signing
// secret has been configured.
var ErrMissingSecret = errors.New("token signing secret is not configured")

// ErrInvalidToken covers every verification failure: bad signature,
// malformed input, wrong algorithm and expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of a bearer token.  IssuedAt and ExpiresAt travel as
// the registered iat and exp claims.
type Claims struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is what a verified token proves about its bearer.
type Identity struct {
	UserID uint64
	Email  string
}

// TokenService issues and verifies HS256 bearer tokens.  It holds no state
// besides the secret, so it is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret.  An empty
// secret is accepted here and reported by Issue and Verify instead.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Ready returns ErrMissingSecret when no signing secret is configured.
func (s *TokenService) Ready() error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}
	return nil
}

// Issue signs a token for the given user valid for the configured TTL.
func (s *TokenService) Issue(userID uint64, email string) (string, error) {
	if err := s.Ready(); err != nil {
		return "", err
	}
	iat := s.now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and expiry of raw and returns the identity it
// carries.  A token is rejected from its expiry instant on; there is no
// leeway.
func (s *TokenService) Verify(raw string) (Identity, error) {
	if err := s.Ready(); err != nil {
		return Identity{}, err
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
