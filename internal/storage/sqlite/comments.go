package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type commentRepo struct{}

func (r *commentRepo) Create(ctx context.Context, ex storage.Executor, c *types.Comment) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO comments (id, work_item_id, content, created_at, updated_at, created_by, updated_by, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.WorkItemID, c.Content,
		formatTime(c.Audit.CreatedAt), formatTime(c.Audit.UpdatedAt), c.Audit.CreatedBy, c.Audit.UpdatedBy,
		nullTime(c.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepo) Update(ctx context.Context, ex storage.Executor, c *types.Comment) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE comments SET content = ?, updated_at = ?, updated_by = ?
		WHERE id = ? AND deleted_at IS NULL`,
		c.Content, formatTime(c.Audit.UpdatedAt), c.Audit.UpdatedBy, c.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comment rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *commentRepo) SoftDelete(ctx context.Context, ex storage.Executor, id string, when int64) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE comments SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(epochMillisToTime(when)), id)
	if err != nil {
		return fmt.Errorf("soft delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete comment rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const commentColumns = `id, work_item_id, content, created_at, updated_at, created_by, updated_by, deleted_at`

func scanComment(row interface{ Scan(...any) error }) (*types.Comment, error) {
	var c types.Comment
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&c.ID, &c.WorkItemID, &c.Content, &createdAt, &updatedAt, &c.Audit.CreatedBy, &c.Audit.UpdatedBy, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}

	var err error
	if c.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if c.DeletedAt, err = timePtr(deletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) FindByID(ctx context.Context, ex storage.Executor, id string) (*types.Comment, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = ?", id)
	return scanComment(row)
}

func (r *commentRepo) FindByWorkItem(ctx context.Context, ex storage.Executor, workItemID string) ([]*types.Comment, error) {
	rows, err := ex.QueryContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE work_item_id = ? AND deleted_at IS NULL ORDER BY created_at", workItemID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []*types.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
