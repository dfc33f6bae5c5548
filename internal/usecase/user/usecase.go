package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-registry-service/internal/domain/user"
	pkgerrors "user-registry-service/pkg/errors"
	"user-registry-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// It abstracts the registry, allowing the in-memory sequence, a SQL store
// or a cached decorator to be used interchangeably.
//
// Implementations return domain.ErrNotFound (or an error wrapping a
// *pkgerrors.NotFoundError) when no record matches an id.
type Repository interface {
	List(ctx context.Context) ([]domain.User, error)                             // All records in insertion order
	GetByID(ctx context.Context, id int64) (*domain.User, error)                 // Retrieve user by ID
	Create(ctx context.Context, u *domain.User) (*domain.User, error)            // Assign the next id and append
	Update(ctx context.Context, id int64, p domain.Patch) (*domain.User, error) // Replace supplied fields
	Delete(ctx context.Context, id int64) error                                  // Remove by ID
}

// Usecase implements the business logic for the user registry.
// It provides a clean separation between the transport layer and data layer.
type Usecase struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a *pkgerrors.ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must not be empty", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	field := ""
	if len(validationErrors) == 1 {
		field = strings.ToLower(validationErrors[0].Field())
	}
	return pkgerrors.NewValidationError(field, strings.Join(messages, ", "))
}

// storeError passes not-found errors through and wraps anything else as internal.
func storeError(op string, err error) error {
	if pkgerrors.IsNotFound(err) {
		return err
	}
	return pkgerrors.NewInternalError("failed to "+op, err)
}

func toDTO(u *domain.User) *User {
	return &User{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ListUsers returns every user in insertion order together with the count.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, storeError("list users", err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = User{
			ID:    du.ID,
			Name:  du.Name,
			Email: du.Email,
		}
	}

	log.Debug("listed users", zap.Int("total", len(users)))
	return &ListUsersResponse{
		Users: users,
		Total: len(users),
	}, nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			log.Warn("user not found", zap.Int64("id", in.ID))
		} else {
			log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, storeError("get user", err)
	}

	return toDTO(u), nil
}

// CreateUser validates the request, then appends a new user under the next id.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.Create(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, storeError("create user", err)
	}

	log.Info("user created", zap.Int64("id", u.ID))
	return toDTO(u), nil
}

// UpdateUser replaces the supplied fields of an existing user.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user",
		zap.Int64("id", in.ID),
		zap.Bool("name_supplied", in.Name != nil),
		zap.Bool("email_supplied", in.Email != nil),
	)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.Update(ctx, in.ID, domain.Patch{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			log.Warn("user not found", zap.Int64("id", in.ID))
		} else {
			log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, storeError("update user", err)
	}

	return toDTO(u), nil
}

// DeleteUser removes a user. Its id is never issued again.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		if pkgerrors.IsNotFound(err) {
			log.Warn("user not found", zap.Int64("id", in.ID))
		} else {
			log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, storeError("delete user", err)
	}

	return &DeleteUserResponse{ID: in.ID}, nil
}
