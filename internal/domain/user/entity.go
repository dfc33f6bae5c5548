package user

import (
	pkgerrors "user-registry-service/pkg/errors"
)

// ErrNotFound is returned by every registry backend when no record matches an id.
var ErrNotFound = pkgerrors.NewNotFoundError("user", "User not found")

// User represents a user entity in the system.
type User struct {
	ID    int64  `json:"id"`    // ID is assigned by the registry and never reused
	Name  string `json:"name"`  // Name is the full name of the user
	Email string `json:"email"` // Email is the email address of the user
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Name  *string
	Email *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}

// Apply replaces the fields supplied in p.
func (u *User) Apply(p Patch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
