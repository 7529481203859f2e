package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type activityLogRepo struct{}

func (r *activityLogRepo) Create(ctx context.Context, ex storage.Executor, e *types.ActivityLogEntry) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO activity_log (id, project_id, entity_type, entity_id, action, field_name, old_value, new_value, user_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.EntityType, e.EntityID, string(e.Action),
		nullString(e.FieldName), nullString(e.OldValue), nullString(e.NewValue),
		e.UserID, formatTime(e.Timestamp))
	if err != nil {
		return fmt.Errorf("insert activity log entry: %w", err)
	}
	return nil
}

const activityLogColumns = `id, project_id, entity_type, entity_id, action, field_name, old_value, new_value, user_id, timestamp`

func scanActivityLogEntry(row interface{ Scan(...any) error }) (*types.ActivityLogEntry, error) {
	var e types.ActivityLogEntry
	var action string
	var fieldName, oldValue, newValue sql.NullString
	var timestamp string

	if err := row.Scan(&e.ID, &e.ProjectID, &e.EntityType, &e.EntityID, &action,
		&fieldName, &oldValue, &newValue, &e.UserID, &timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan activity log entry: %w", err)
	}
	e.Action = types.ActivityAction(action)
	e.FieldName = stringPtr(fieldName)
	e.OldValue = stringPtr(oldValue)
	e.NewValue = stringPtr(newValue)

	var err error
	if e.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *activityLogRepo) findMany(ctx context.Context, ex storage.Executor, query string, args ...any) ([]*types.ActivityLogEntry, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity log: %w", err)
	}
	defer rows.Close()

	var out []*types.ActivityLogEntry
	for rows.Next() {
		e, err := scanActivityLogEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *activityLogRepo) FindForEntity(ctx context.Context, ex storage.Executor, entityType, entityID string) ([]*types.ActivityLogEntry, error) {
	return r.findMany(ctx, ex, "SELECT "+activityLogColumns+" FROM activity_log WHERE entity_type = ? AND entity_id = ? ORDER BY timestamp", entityType, entityID)
}

func (r *activityLogRepo) FindSince(ctx context.Context, ex storage.Executor, projectID string, sinceEpochMillis int64, limit int) ([]*types.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.findMany(ctx, ex, "SELECT "+activityLogColumns+" FROM activity_log WHERE project_id = ? AND timestamp >= ? ORDER BY timestamp DESC LIMIT ?",
		projectID, formatTime(epochMillisToTime(sinceEpochMillis)), limit)
}
