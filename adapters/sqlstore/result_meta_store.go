package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"hypotest/domain/core"
	"hypotest/internal/errors"
	"hypotest/ports"

	"github.com/jmoiron/sqlx"
)

// resultMetaRow is the stored shape of ports.ResultMeta
type resultMetaRow struct {
	TaskID          string `db:"task_id"`
	OriginalName    string `db:"original_name"`
	Test            string `db:"test"`
	TestDisplayName string `db:"test_display_name"`
	CreatedAt       int64  `db:"created_at"`
}

// ResultMetaStoreImpl implements ResultMetaStore on SQLite or PostgreSQL
type ResultMetaStoreImpl struct {
	db *sqlx.DB
}

// NewResultMetaStore creates a SQL backed metadata store. The schema must
// already exist, see migration.NewRunner.
func NewResultMetaStore(db *sqlx.DB) *ResultMetaStoreImpl {
	return &ResultMetaStoreImpl{db: db}
}

// Put inserts or replaces the metadata for meta.TaskID
func (s *ResultMetaStoreImpl) Put(ctx context.Context, meta ports.ResultMeta) error {
	row := resultMetaRow{
		TaskID:          meta.TaskID.String(),
		OriginalName:    meta.OriginalName,
		Test:            meta.Test,
		TestDisplayName: meta.TestDisplayName,
		CreatedAt:       meta.CreatedAt.UnixMilli(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO result_meta (task_id, original_name, test, test_display_name, created_at)
		VALUES (:task_id, :original_name, :test, :test_display_name, :created_at)
		ON CONFLICT (task_id) DO UPDATE SET
			original_name = excluded.original_name,
			test = excluded.test,
			test_display_name = excluded.test_display_name,
			created_at = excluded.created_at
	`, row)
	if err != nil {
		return errors.WrapCode(err, errors.CodeDatabaseError, "failed to store result metadata")
	}
	return nil
}

// Get loads the metadata for id
func (s *ResultMetaStoreImpl) Get(ctx context.Context, id core.TaskID) (*ports.ResultMeta, error) {
	var row resultMetaRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT task_id, original_name, test, test_display_name, created_at
		FROM result_meta
		WHERE task_id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("result metadata " + id.String())
	}
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "failed to load result metadata")
	}

	return &ports.ResultMeta{
		TaskID:          core.TaskID(row.TaskID),
		OriginalName:    row.OriginalName,
		Test:            row.Test,
		TestDisplayName: row.TestDisplayName,
		CreatedAt:       time.UnixMilli(row.CreatedAt).UTC(),
	}, nil
}

// DeleteBefore removes metadata created before cutoff
func (s *ResultMetaStoreImpl) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM result_meta WHERE created_at < ?
	`), cutoff.UnixMilli())
	if err != nil {
		return 0, errors.WrapCode(err, errors.CodeDatabaseError, "failed to delete expired result metadata")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// Ensure ResultMetaStoreImpl implements ResultMetaStore
var _ ports.ResultMetaStore = (*ResultMetaStoreImpl)(nil)
