package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardUpdateFields(t *testing.T) {
	title := "t"
	status := "doing"
	position := 2
	assignees := []string{"u1"}

	assert.Empty(t, (&CardUpdate{}).Fields())

	u := &CardUpdate{Title: &title, Status: &status, Position: &position}
	assert.ElementsMatch(t, []string{"title", "status", "position"}, u.Fields())

	// Assignee changes are a field like any other, so the protection gate
	// sees them during review.
	u = &CardUpdate{AssignedTo: &assignees}
	assert.Equal(t, []string{"assigned_to"}, u.Fields())
}
