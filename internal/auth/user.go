package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a locally provisioned account. Exactly one User exists per unique
// email; emails are compared case-insensitively and stored lowercased.
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	ProviderID  int64
	CreatedAt   time.Time
}

// Profile is the mutable satellite entity attached 1:1 to a User. The core
// provisioning path never touches it; image updates are idempotent
// overwrites.
type Profile struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	ImageURL string
}

// OAuthAttributes is the canonical, provider-agnostic identity produced by
// mapping a provider account response. Immutable after construction; used
// only to build a User.
type OAuthAttributes struct {
	Email       string
	DisplayName string
	ProviderID  int64
}
