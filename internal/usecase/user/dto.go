package user

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

// UpdateUserRequest represents the request payload for updating an existing user.
// Nil fields are left unchanged; a supplied field must itself be valid.
type UpdateUserRequest struct {
	ID    int64
	Name  *string `validate:"omitnil,min=1"`
	Email *string `validate:"omitnil,email"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// ListUsersResponse represents the response payload for user listing.
// Users are in insertion order.
type ListUsersResponse struct {
	Users []User
	Total int
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
