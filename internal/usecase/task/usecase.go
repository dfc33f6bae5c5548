package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-registry-service/internal/domain/task"
	pkgerrors "user-registry-service/pkg/errors"
	"user-registry-service/pkg/logger"
)

// Repository stores tasks in insertion order under never-reused ids.
type Repository interface {
	List(ctx context.Context) ([]domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, id int64, p domain.Patch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}

type CreateTaskRequest struct {
	Title       string `validate:"required"`
	Description string
	Completed   bool
}

type UpdateTaskRequest struct {
	ID          int64
	Title       *string `validate:"omitnil,min=1"`
	Description *string
	Completed   *bool
}

// Usecase implements task management for the gateway.
type Usecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: validator.New()}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.NewValidationError("", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must not be empty", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError(strings.ToLower(verrs[0].Field()), strings.Join(msgs, ", "))
}

func wrap(op string, err error) error {
	if pkgerrors.IsNotFound(err) {
		return err
	}
	return pkgerrors.NewInternalError("failed to "+op, err)
}

func (uc *Usecase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := uc.repo.List(ctx)
	if err != nil {
		return nil, wrap("list tasks", err)
	}
	return tasks, nil
}

func (uc *Usecase) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get task", err)
	}
	return t, nil
}

func (uc *Usecase) CreateTask(ctx context.Context, in CreateTaskRequest) (*domain.Task, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	t, err := uc.repo.Create(ctx, &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	})
	if err != nil {
		return nil, wrap("create task", err)
	}

	logger.WithContext(ctx, uc.log).Info("task created", zap.Int64("id", t.ID))
	return t, nil
}

// UpdateTask replaces the supplied fields of an existing task.
func (uc *Usecase) UpdateTask(ctx context.Context, in UpdateTaskRequest) (*domain.Task, error) {
	if err := uc.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	t, err := uc.repo.Update(ctx, in.ID, domain.Patch{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	})
	if err != nil {
		return nil, wrap("update task", err)
	}
	return t, nil
}

func (uc *Usecase) DeleteTask(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return wrap("delete task", err)
	}
	logger.WithContext(ctx, uc.log).Info("task deleted", zap.Int64("id", id))
	return nil
}
