package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Verify(hash, "correct horse"))
	assert.ErrorIs(t, h.Verify(hash, "wrong"), ErrMismatch)
	assert.Error(t, h.Verify("not-a-hash", "correct horse"))
}

func TestNewHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).cost)
}

func TestBurnDoesNotPanic(t *testing.T) {
	NewHasher(bcrypt.MinCost).Burn("anything")
}
