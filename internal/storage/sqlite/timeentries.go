package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type timeEntryRepo struct{}

func (r *timeEntryRepo) Create(ctx context.Context, ex storage.Executor, t *types.TimeEntry) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO time_entries (id, work_item_id, user_id, started_at, ended_at, duration_seconds,
			description, created_at, updated_at, created_by, updated_by, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WorkItemID, t.UserID, formatTime(t.StartedAt), nullTime(t.EndedAt), nullInt64(t.DurationSeconds),
		t.Description, formatTime(t.Audit.CreatedAt), formatTime(t.Audit.UpdatedAt), t.Audit.CreatedBy, t.Audit.UpdatedBy,
		nullTime(t.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert time entry: %w", err)
	}
	return nil
}

func (r *timeEntryRepo) Update(ctx context.Context, ex storage.Executor, t *types.TimeEntry) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE time_entries SET ended_at = ?, duration_seconds = ?, description = ?,
			updated_at = ?, updated_by = ?
		WHERE id = ? AND deleted_at IS NULL`,
		nullTime(t.EndedAt), nullInt64(t.DurationSeconds), t.Description,
		formatTime(t.Audit.UpdatedAt), t.Audit.UpdatedBy, t.ID)
	if err != nil {
		return fmt.Errorf("update time entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update time entry rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *timeEntryRepo) SoftDelete(ctx context.Context, ex storage.Executor, id string, when int64) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE time_entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(epochMillisToTime(when)), id)
	if err != nil {
		return fmt.Errorf("soft delete time entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete time entry rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const timeEntryColumns = `id, work_item_id, user_id, started_at, ended_at, duration_seconds,
	description, created_at, updated_at, created_by, updated_by, deleted_at`

func scanTimeEntry(row interface{ Scan(...any) error }) (*types.TimeEntry, error) {
	var t types.TimeEntry
	var startedAt string
	var endedAt sql.NullString
	var duration sql.NullInt64
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&t.ID, &t.WorkItemID, &t.UserID, &startedAt, &endedAt, &duration, &t.Description,
		&createdAt, &updatedAt, &t.Audit.CreatedBy, &t.Audit.UpdatedBy, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan time entry: %w", err)
	}

	t.DurationSeconds = int64Ptr(duration)

	var err error
	if t.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if t.EndedAt, err = timePtr(endedAt); err != nil {
		return nil, err
	}
	if t.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if t.DeletedAt, err = timePtr(deletedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *timeEntryRepo) FindByID(ctx context.Context, ex storage.Executor, id string) (*types.TimeEntry, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+timeEntryColumns+" FROM time_entries WHERE id = ?", id)
	return scanTimeEntry(row)
}

func (r *timeEntryRepo) FindRunningForUserAndWorkItem(ctx context.Context, ex storage.Executor, userID, workItemID string) (*types.TimeEntry, error) {
	row := ex.QueryRowContext(ctx, `
		SELECT `+timeEntryColumns+` FROM time_entries
		WHERE user_id = ? AND work_item_id = ? AND ended_at IS NULL AND deleted_at IS NULL`,
		userID, workItemID)
	return scanTimeEntry(row)
}

func (r *timeEntryRepo) FindByWorkItem(ctx context.Context, ex storage.Executor, workItemID string) ([]*types.TimeEntry, error) {
	rows, err := ex.QueryContext(ctx, "SELECT "+timeEntryColumns+" FROM time_entries WHERE work_item_id = ? AND deleted_at IS NULL ORDER BY started_at", workItemID)
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	var out []*types.TimeEntry
	for rows.Next() {
		t, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
