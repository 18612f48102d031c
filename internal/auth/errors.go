package auth

import (
	"errors"
	"fmt"
)

// ErrTokenIntrospection is returned when the provider's token-introspection
// endpoint rejects the token or cannot be reached.
var ErrTokenIntrospection = errors.New("token introspection failed")

// ErrAccountFetch is returned when the provider's account-info endpoint
// rejects the token or cannot be reached.
var ErrAccountFetch = errors.New("account fetch failed")

// ErrMissingAttribute is returned when a required canonical attribute was not
// present in the provider's account response.
var ErrMissingAttribute = errors.New("missing required attribute")

// ErrAlreadyRegistered is returned when an identity with the same email has
// already been provisioned. It signals that the caller should continue as a
// login rather than a signup.
var ErrAlreadyRegistered = errors.New("identity already registered")

// ErrStoreUnavailable is returned when the user store could not complete an
// existence check or insert.
var ErrStoreUnavailable = errors.New("user store unavailable")

// MissingAttributeError identifies which attribute the provider withheld,
// usually because the user did not grant consent for it.
type MissingAttributeError struct {
	Field string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing required attribute %q", e.Field)
}

func (e *MissingAttributeError) Unwrap() error {
	return ErrMissingAttribute
}

// AlreadyRegisteredError carries the email whose identity already exists.
type AlreadyRegisteredError struct {
	Email string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("identity already registered for %s", e.Email)
}

func (e *AlreadyRegisteredError) Unwrap() error {
	return ErrAlreadyRegistered
}
