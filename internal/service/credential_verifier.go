package service

import (
	"context"
	"errors"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/password"
)

type CredentialVerifier struct {
	users  domain.UserRepository
	hasher *password.Hasher
}

func NewCredentialVerifier(users domain.UserRepository, hasher *password.Hasher) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher}
}

// Verify returns the user owning email when password matches. An unknown
// email yields domain.ErrNotFound and a wrong password
// domain.ErrInvalidCredentials; both take roughly the same time.
func (v *CredentialVerifier) Verify(ctx context.Context, email, plain string) (*domain.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		v.hasher.Burn(plain)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := v.hasher.Verify(user.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}
