package task

import (
	pkgerrors "user-registry-service/pkg/errors"
)

var ErrNotFound = pkgerrors.NewNotFoundError("task", "Task not found")

// Task is a to-do item held by the gateway.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
}

func (t *Task) Apply(p Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
