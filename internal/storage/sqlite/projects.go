package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type projectRepo struct{}

func (r *projectRepo) Create(ctx context.Context, ex storage.Executor, p *types.Project) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO projects (id, key, title, description, status, version, next_work_item_number,
			created_at, updated_at, created_by, updated_by, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Key, p.Title, p.Description, string(p.Status), p.Version, p.NextWorkItemNumber,
		formatTime(p.Audit.CreatedAt), formatTime(p.Audit.UpdatedAt), p.Audit.CreatedBy, p.Audit.UpdatedBy,
		nullTime(p.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *projectRepo) Update(ctx context.Context, ex storage.Executor, p *types.Project) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE projects SET title = ?, description = ?, status = ?, version = version + 1,
			updated_at = ?, updated_by = ?
		WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		p.Title, p.Description, string(p.Status), formatTime(p.Audit.UpdatedAt), p.Audit.UpdatedBy,
		p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	p.Version++
	return nil
}

func (r *projectRepo) SoftDelete(ctx context.Context, ex storage.Executor, id string, updatedBy string, when int64) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE projects SET deleted_at = ?, updated_by = ?, version = version + 1
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(epochMillisToTime(when)), updatedBy, id)
	if err != nil {
		return fmt.Errorf("soft delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete project rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *projectRepo) scanProject(row interface{ Scan(...any) error }) (*types.Project, error) {
	var p types.Project
	var status string
	var createdAt, updatedAt string
	var deletedAt sql.NullString
	if err := row.Scan(&p.ID, &p.Key, &p.Title, &p.Description, &status, &p.Version, &p.NextWorkItemNumber,
		&createdAt, &updatedAt, &p.Audit.CreatedBy, &p.Audit.UpdatedBy, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Status = types.ProjectStatus(status)
	var err error
	if p.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if p.DeletedAt, err = timePtr(deletedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

const projectColumns = `id, key, title, description, status, version, next_work_item_number,
	created_at, updated_at, created_by, updated_by, deleted_at`

func (r *projectRepo) FindByID(ctx context.Context, ex storage.Executor, id string) (*types.Project, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	return r.scanProject(row)
}

func (r *projectRepo) FindByKey(ctx context.Context, ex storage.Executor, key string) (*types.Project, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE key = ?", key)
	return r.scanProject(row)
}

func (r *projectRepo) findMany(ctx context.Context, ex storage.Executor, query string, args ...any) ([]*types.Project, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []*types.Project
	for rows.Next() {
		p, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectRepo) FindAll(ctx context.Context, ex storage.Executor) ([]*types.Project, error) {
	return r.findMany(ctx, ex, "SELECT "+projectColumns+" FROM projects WHERE deleted_at IS NULL ORDER BY key")
}

func (r *projectRepo) FindActive(ctx context.Context, ex storage.Executor) ([]*types.Project, error) {
	return r.findMany(ctx, ex, "SELECT "+projectColumns+" FROM projects WHERE deleted_at IS NULL AND status = ? ORDER BY key", string(types.ProjectStatusActive))
}

// GetAndIncrementWorkItemNumber performs the counter bump inside the
// caller's transaction: a SELECT to read the current value followed by an
// UPDATE, relying on SQLite's single-writer lock (held for the lifetime of
// the transaction) for atomicity rather than any RETURNING-clause trick.
func (r *projectRepo) GetAndIncrementWorkItemNumber(ctx context.Context, ex storage.Executor, projectID string) (int64, error) {
	var current int64
	err := ex.QueryRowContext(ctx, "SELECT next_work_item_number FROM projects WHERE id = ? AND deleted_at IS NULL", projectID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("read work item counter: %w", err)
	}
	if _, err := ex.ExecContext(ctx, "UPDATE projects SET next_work_item_number = next_work_item_number + 1 WHERE id = ?", projectID); err != nil {
		return 0, fmt.Errorf("increment work item counter: %w", err)
	}
	return current, nil
}

func (r *projectRepo) CountNonDeletedWorkItems(ctx context.Context, ex storage.Executor, projectID string) (int64, error) {
	var count int64
	err := ex.QueryRowContext(ctx, "SELECT COUNT(*) FROM work_items WHERE project_id = ? AND deleted_at IS NULL", projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count work items: %w", err)
	}
	return count, nil
}
