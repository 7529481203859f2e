package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type sprintRepo struct{}

func (r *sprintRepo) Create(ctx context.Context, ex storage.Executor, s *types.Sprint) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO sprints (id, project_id, name, goal, start_at, end_at, status, version,
			created_at, updated_at, created_by, updated_by, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.ProjectID, s.Name, s.Goal, formatTime(s.StartAt), formatTime(s.EndAt), string(s.Status), s.Version,
		formatTime(s.Audit.CreatedAt), formatTime(s.Audit.UpdatedAt), s.Audit.CreatedBy, s.Audit.UpdatedBy,
		nullTime(s.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert sprint: %w", err)
	}
	return nil
}

func (r *sprintRepo) Update(ctx context.Context, ex storage.Executor, s *types.Sprint) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE sprints SET name = ?, goal = ?, start_at = ?, end_at = ?, status = ?, version = version + 1,
			updated_at = ?, updated_by = ?
		WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		s.Name, s.Goal, formatTime(s.StartAt), formatTime(s.EndAt), string(s.Status),
		formatTime(s.Audit.UpdatedAt), s.Audit.UpdatedBy, s.ID, s.Version)
	if err != nil {
		return fmt.Errorf("update sprint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sprint rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	s.Version++
	return nil
}

func (r *sprintRepo) SoftDelete(ctx context.Context, ex storage.Executor, id string, updatedBy string, when int64) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE sprints SET deleted_at = ?, updated_by = ?, version = version + 1
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(epochMillisToTime(when)), updatedBy, id)
	if err != nil {
		return fmt.Errorf("soft delete sprint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete sprint rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const sprintColumns = `id, project_id, name, goal, start_at, end_at, status, version,
	created_at, updated_at, created_by, updated_by, deleted_at`

func scanSprint(row interface{ Scan(...any) error }) (*types.Sprint, error) {
	var s types.Sprint
	var status string
	var startAt, endAt, createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Goal, &startAt, &endAt, &status, &s.Version,
		&createdAt, &updatedAt, &s.Audit.CreatedBy, &s.Audit.UpdatedBy, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan sprint: %w", err)
	}
	s.Status = types.SprintStatus(status)

	var err error
	if s.StartAt, err = parseTime(startAt); err != nil {
		return nil, err
	}
	if s.EndAt, err = parseTime(endAt); err != nil {
		return nil, err
	}
	if s.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if s.DeletedAt, err = timePtr(deletedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sprintRepo) FindByID(ctx context.Context, ex storage.Executor, id string) (*types.Sprint, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+sprintColumns+" FROM sprints WHERE id = ?", id)
	return scanSprint(row)
}

func (r *sprintRepo) FindByProject(ctx context.Context, ex storage.Executor, projectID string) ([]*types.Sprint, error) {
	rows, err := ex.QueryContext(ctx, "SELECT "+sprintColumns+" FROM sprints WHERE project_id = ? AND deleted_at IS NULL ORDER BY start_at", projectID)
	if err != nil {
		return nil, fmt.Errorf("query sprints: %w", err)
	}
	defer rows.Close()

	var out []*types.Sprint
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
