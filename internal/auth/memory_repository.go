package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository keeps users in an in-process map, for local development
// and tests. The map key doubles as the unique email constraint: the
// check-and-insert under one lock gives the same exactly-one-winner outcome
// the postgres unique index does.
type InMemoryRepository struct {
	mu       sync.RWMutex
	byEmail  map[string]User
	profiles map[uuid.UUID]Profile
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byEmail:  make(map[string]User),
		profiles: make(map[uuid.UUID]Profile),
	}
}

// ExistsByEmail reports whether a user is stored under the email.
func (r *InMemoryRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

// CreateUser stores a new user, returning ErrEmailTaken when the email is
// already present.
func (r *InMemoryRepository) CreateUser(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return User{}, ErrEmailTaken
	}
	r.byEmail[user.Email] = user
	return user, nil
}

// FindUserByEmail returns the stored user, or nil when absent.
func (r *InMemoryRepository) FindUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// UpsertProfileImage overwrites the user's profile image.
func (r *InMemoryRepository) UpsertProfileImage(_ context.Context, userID uuid.UUID, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		profile = Profile{ID: uuid.New(), UserID: userID}
	}
	profile.ImageURL = imageURL
	r.profiles[userID] = profile
	return nil
}
