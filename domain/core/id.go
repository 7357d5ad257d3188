package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// TaskID identifies one stored test result
type TaskID ID

// NewTaskID creates a time-ordered task identifier
func NewTaskID() TaskID {
	return TaskID(NewID())
}

func (id TaskID) String() string { return ID(id).String() }

// ParseTaskID accepts only canonical UUID strings. Task ids are used as file
// names, so anything else is rejected before it reaches the filesystem.
func ParseTaskID(s string) (TaskID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("task ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid task ID %q: %w", s, err)
	}
	if parsed.String() != strings.ToLower(s) {
		return "", fmt.Errorf("task ID %q is not in canonical form", s)
	}
	return TaskID(parsed.String()), nil
}
