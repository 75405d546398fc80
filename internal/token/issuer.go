package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

const MinSecretLength = 32

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpired       = errors.New("token expired")
	ErrMissingSecret = errors.New("token signing secret is required")
	ErrWeakSecret    = fmt.Errorf("token signing secret must be at least %d bytes", MinSecretLength)
	ErrInvalidTTL    = errors.New("token ttl must be positive")
)

type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

type Issued struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
	Now    func() time.Time
}

// Issuer mints and verifies HS256 session tokens. It holds no mutable state
// and is safe for concurrent use.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if cfg.TTL <= 0 {
		return nil, ErrInvalidTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    now,
	}, nil
}

func (i *Issuer) Issue(userID, email string, role domain.Role) (*Issued, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Issued{
		Token:     signed,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
