package ports

import (
	"context"
	"time"

	"hypotest/domain/core"
)

// ResultMeta describes a stored result workbook
type ResultMeta struct {
	TaskID          core.TaskID `json:"task_id" db:"task_id"`
	OriginalName    string      `json:"original_name" db:"original_name"`
	Test            string      `json:"test" db:"test"`
	TestDisplayName string      `json:"test_name" db:"test_display_name"`
	CreatedAt       time.Time   `json:"created_at" db:"-"`
}

// ResultMetaStore persists result metadata next to the workbook files
type ResultMetaStore interface {
	Put(ctx context.Context, meta ResultMeta) error
	// Get returns a NOT_FOUND AppError when nothing is stored for id
	Get(ctx context.Context, id core.TaskID) (*ResultMeta, error)
	// DeleteBefore removes metadata created before cutoff and reports how many entries went away
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
