package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type dependencyRepo struct{}

func (r *dependencyRepo) Create(ctx context.Context, ex storage.Executor, d *types.Dependency) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO dependencies (id, blocking_item_id, blocked_item_id, type,
			created_at, updated_at, created_by, updated_by, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.BlockingItemID, d.BlockedItemID, string(d.Type),
		formatTime(d.Audit.CreatedAt), formatTime(d.Audit.UpdatedAt), d.Audit.CreatedBy, d.Audit.UpdatedBy,
		nullTime(d.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert dependency: %w", err)
	}
	return nil
}

func (r *dependencyRepo) SoftDelete(ctx context.Context, ex storage.Executor, id string, when int64) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE dependencies SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(epochMillisToTime(when)), id)
	if err != nil {
		return fmt.Errorf("soft delete dependency: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete dependency rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const dependencyColumns = `id, blocking_item_id, blocked_item_id, type,
	created_at, updated_at, created_by, updated_by, deleted_at`

func scanDependency(row interface{ Scan(...any) error }) (*types.Dependency, error) {
	var d types.Dependency
	var depType string
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&d.ID, &d.BlockingItemID, &d.BlockedItemID, &depType,
		&createdAt, &updatedAt, &d.Audit.CreatedBy, &d.Audit.UpdatedBy, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan dependency: %w", err)
	}
	d.Type = types.DependencyType(depType)

	var err error
	if d.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if d.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if d.DeletedAt, err = timePtr(deletedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dependencyRepo) FindByID(ctx context.Context, ex storage.Executor, id string) (*types.Dependency, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+dependencyColumns+" FROM dependencies WHERE id = ?", id)
	return scanDependency(row)
}

func (r *dependencyRepo) findMany(ctx context.Context, ex storage.Executor, query string, args ...any) ([]*types.Dependency, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	var out []*types.Dependency
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *dependencyRepo) FindByBlocking(ctx context.Context, ex storage.Executor, blockingItemID string) ([]*types.Dependency, error) {
	return r.findMany(ctx, ex, "SELECT "+dependencyColumns+" FROM dependencies WHERE blocking_item_id = ? AND deleted_at IS NULL", blockingItemID)
}

func (r *dependencyRepo) FindByBlocked(ctx context.Context, ex storage.Executor, blockedItemID string) ([]*types.Dependency, error) {
	return r.findMany(ctx, ex, "SELECT "+dependencyColumns+" FROM dependencies WHERE blocked_item_id = ? AND deleted_at IS NULL", blockedItemID)
}

func (r *dependencyRepo) FindByProject(ctx context.Context, ex storage.Executor, projectID string) ([]*types.Dependency, error) {
	return r.findMany(ctx, ex, `
		SELECT `+dependencyColumns+` FROM dependencies d
		WHERE d.deleted_at IS NULL
		AND EXISTS (SELECT 1 FROM work_items w WHERE w.id = d.blocking_item_id AND w.project_id = ?)`,
		projectID)
}
