package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	done := true
	title := "ship it"
	task := Task{ID: 1, Title: "write it", Description: "draft"}

	task.Apply(Patch{Title: &title, Completed: &done})

	assert.Equal(t, Task{ID: 1, Title: "ship it", Description: "draft", Completed: true}, task)
}
