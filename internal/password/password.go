package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

var ErrMismatch = errors.New("password does not match")

// Hasher hashes and verifies bcrypt passwords at a fixed cost.
type Hasher struct {
	cost      int
	dummyHash []byte
}

// NewHasher returns a Hasher using cost, or DefaultCost when cost is outside
// bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("storefront-timing-equalizer"), cost)
	if err != nil {
		panic(err)
	}
	return &Hasher{cost: cost, dummyHash: dummy}
}

// Hash returns a bcrypt hash of the plain-text password.
func (h *Hasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a bcrypt hashed password with a plain-text candidate.
// It returns ErrMismatch when they differ.
func (h *Hasher) Verify(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// Burn runs one comparison against a fixed hash. Callers use it when the
// account does not exist so the response takes as long as a real mismatch.
func (h *Hasher) Burn(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plain))
}
