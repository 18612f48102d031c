package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEmailTaken is returned by a Repository when an insert collides with the
// store's unique email constraint. The service maps it to
// AlreadyRegisteredError so concurrent duplicate signups resolve the same
// way the existence pre-check does.
var ErrEmailTaken = errors.New("email already taken")

// Repository defines the persistence contract for users and their profiles.
//
// Implementations must enforce email uniqueness themselves (a unique index
// or equivalent); the service's existence pre-check is advisory and does not
// close the race between concurrent inserts.
type Repository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user User) (User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// UpsertProfileImage overwrites the user's profile image, creating the
	// profile row on first write. Overwrites are idempotent.
	UpsertProfileImage(ctx context.Context, userID uuid.UUID, imageURL string) error
}
