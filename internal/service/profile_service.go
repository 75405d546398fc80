package service

import (
	"context"
	"strings"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

type UpdateProfileInput struct {
	Name    *string `validate:"omitnil,min=1,max=255"`
	Address *string `validate:"omitnil,max=500"`
	Phone   *string `validate:"omitnil,max=32"`
}

// ProfileService lets users read and edit their own profile. Email and role
// cannot be changed here.
type ProfileService struct {
	users domain.UserRepository
	audit *AuditService
}

func NewProfileService(users domain.UserRepository, audit *AuditService) *ProfileService {
	return &ProfileService{users: users, audit: audit}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID string, input UpdateProfileInput, client ClientInfo) (*domain.User, error) {
	input.Name = trimmed(input.Name)
	input.Address = trimmed(input.Address)
	input.Phone = trimmed(input.Phone)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, userID, domain.UpdateProfileInput{
		Name:    input.Name,
		Address: input.Address,
		Phone:   input.Phone,
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogProfileUpdated(ctx, auditContextFor(user, client), changedFields(input))
	return user, nil
}

func changedFields(input UpdateProfileInput) []string {
	fields := make([]string, 0, 3)
	if input.Name != nil {
		fields = append(fields, "name")
	}
	if input.Address != nil {
		fields = append(fields, "address")
	}
	if input.Phone != nil {
		fields = append(fields, "phone")
	}
	return fields
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
