package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service provisions local users from verified provider identities.
type Service struct {
	repo Repository
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateUser provisions a user from canonical attributes, enforcing one user
// per unique email. A known email fails with AlreadyRegisteredError, which
// callers should treat as "proceed as login", not as a fault.
//
// The existence pre-check and the insert are not atomic; when two requests
// race on the same email the store's unique constraint decides the winner
// and the loser's ErrEmailTaken is reported as AlreadyRegisteredError too.
func (s *Service) CreateUser(ctx context.Context, attrs OAuthAttributes) (User, error) {
	email := normalizeEmail(attrs.Email)
	if email == "" {
		return User{}, &MissingAttributeError{Field: "email"}
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("check email %s: %v: %w", email, err, ErrStoreUnavailable)
	}
	if exists {
		return User{}, &AlreadyRegisteredError{Email: email}
	}

	user := User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: strings.TrimSpace(attrs.DisplayName),
		ProviderID:  attrs.ProviderID,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, &AlreadyRegisteredError{Email: email}
		}
		return User{}, fmt.Errorf("create user %s: %v: %w", email, err, ErrStoreUnavailable)
	}

	return created, nil
}

// UpdateProfileImage overwrites the user's profile image URL. Repeated calls
// with the same URL are no-ops by construction.
func (s *Service) UpdateProfileImage(ctx context.Context, userID uuid.UUID, imageURL string) error {
	if err := s.repo.UpsertProfileImage(ctx, userID, strings.TrimSpace(imageURL)); err != nil {
		return fmt.Errorf("update profile image for %s: %v: %w", userID, err, ErrStoreUnavailable)
	}
	return nil
}

// normalizeEmail applies the store's case policy: emails are unique
// case-insensitively and persisted lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
