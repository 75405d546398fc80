package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

var testSecret = strings.Repeat("s", MinSecretLength)

func TestNewIssuerRejectsBadConfig(t *testing.T) {
	_, err := NewIssuer(Config{TTL: time.Minute})
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewIssuer(Config{Secret: "short", TTL: time.Minute})
	assert.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewIssuer(Config{Secret: testSecret})
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewIssuer(Config{Secret: testSecret, TTL: 10 * time.Minute, Issuer: "storefront", Now: func() time.Time { return now }})
	require.NoError(t, err)

	first, err := issuer.Issue("user-1", "a@x.com", domain.RoleSeller)
	require.NoError(t, err)
	second, err := issuer.Issue("user-1", "a@x.com", domain.RoleSeller)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token, "tokens issued in the same second must differ")
	assert.Equal(t, now.Add(10*time.Minute), first.ExpiresAt)

	claims, err := issuer.Verify(first.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleSeller, claims.Role)
}

func TestVerifyFailures(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer, err := NewIssuer(Config{Secret: testSecret, TTL: time.Minute, Issuer: "storefront", Now: clock})
	require.NoError(t, err)

	issued, err := issuer.Issue("user-1", "a@x.com", domain.RoleCustomer)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later, err := NewIssuer(Config{Secret: testSecret, TTL: time.Minute, Issuer: "storefront", Now: func() time.Time { return now.Add(2 * time.Minute) }})
		require.NoError(t, err)
		_, err = later.Verify(issued.Token)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewIssuer(Config{Secret: strings.Repeat("x", MinSecretLength), TTL: time.Minute, Issuer: "storefront", Now: clock})
		require.NoError(t, err)
		_, err = other.Verify(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := NewIssuer(Config{Secret: testSecret, TTL: time.Minute, Issuer: "elsewhere", Now: clock})
		require.NoError(t, err)
		_, err = other.Verify(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "storefront",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Verify(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
