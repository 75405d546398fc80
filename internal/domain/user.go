package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSeller:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Address      string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}

// UpdateProfileInput holds the profile fields a user may change on their own.
// Email and role are deliberately absent.
type UpdateProfileInput struct {
	Name    *string
	Address *string
	Phone   *string
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*User, error)
	Delete(ctx context.Context, id string) error
}
