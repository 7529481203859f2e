package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type workItemRepo struct{}

func (r *workItemRepo) Create(ctx context.Context, ex storage.Executor, w *types.WorkItem) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO work_items (id, item_type, parent_id, project_id, position, title, description,
			status, priority, story_points, assignee_id, sprint_id, item_number, version,
			created_at, updated_at, created_by, updated_by, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, string(w.ItemType), nullString(w.ParentID), w.ProjectID, w.Position, w.Title, w.Description,
		string(w.Status), string(w.Priority), nullInt64(w.StoryPoints), nullString(w.AssigneeID), nullString(w.SprintID),
		w.ItemNumber, w.Version,
		formatTime(w.Audit.CreatedAt), formatTime(w.Audit.UpdatedAt), w.Audit.CreatedBy, w.Audit.UpdatedBy,
		nullTime(w.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert work item: %w", err)
	}
	return nil
}

func (r *workItemRepo) Update(ctx context.Context, ex storage.Executor, w *types.WorkItem) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE work_items SET parent_id = ?, position = ?, title = ?, description = ?, status = ?,
			priority = ?, story_points = ?, assignee_id = ?, sprint_id = ?, version = version + 1,
			updated_at = ?, updated_by = ?
		WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		nullString(w.ParentID), w.Position, w.Title, w.Description, string(w.Status),
		string(w.Priority), nullInt64(w.StoryPoints), nullString(w.AssigneeID), nullString(w.SprintID),
		formatTime(w.Audit.UpdatedAt), w.Audit.UpdatedBy,
		w.ID, w.Version)
	if err != nil {
		return fmt.Errorf("update work item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work item rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	w.Version++
	return nil
}

func (r *workItemRepo) SoftDelete(ctx context.Context, ex storage.Executor, id string, updatedBy string, when int64) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE work_items SET deleted_at = ?, updated_by = ?, version = version + 1
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(epochMillisToTime(when)), updatedBy, id)
	if err != nil {
		return fmt.Errorf("soft delete work item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete work item rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const workItemColumns = `id, item_type, parent_id, project_id, position, title, description,
	status, priority, story_points, assignee_id, sprint_id, item_number, version,
	created_at, updated_at, created_by, updated_by, deleted_at`

func scanWorkItem(row interface{ Scan(...any) error }) (*types.WorkItem, error) {
	var w types.WorkItem
	var itemType, status, priority string
	var parentID, assigneeID, sprintID sql.NullString
	var storyPoints sql.NullInt64
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&w.ID, &itemType, &parentID, &w.ProjectID, &w.Position, &w.Title, &w.Description,
		&status, &priority, &storyPoints, &assigneeID, &sprintID, &w.ItemNumber, &w.Version,
		&createdAt, &updatedAt, &w.Audit.CreatedBy, &w.Audit.UpdatedBy, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan work item: %w", err)
	}

	w.ItemType = types.ItemType(itemType)
	w.Status = types.ItemStatus(status)
	w.Priority = types.Priority(priority)
	w.ParentID = stringPtr(parentID)
	w.AssigneeID = stringPtr(assigneeID)
	w.SprintID = stringPtr(sprintID)
	w.StoryPoints = int64Ptr(storyPoints)

	var err error
	if w.Audit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.Audit.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if w.DeletedAt, err = timePtr(deletedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workItemRepo) findMany(ctx context.Context, ex storage.Executor, query string, args ...any) ([]*types.WorkItem, error) {
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query work items: %w", err)
	}
	defer rows.Close()

	var out []*types.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *workItemRepo) FindByID(ctx context.Context, ex storage.Executor, id string) (*types.WorkItem, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+workItemColumns+" FROM work_items WHERE id = ?", id)
	return scanWorkItem(row)
}

func (r *workItemRepo) FindByProject(ctx context.Context, ex storage.Executor, projectID string, filter storage.WorkItemFilter) ([]*types.WorkItem, error) {
	var b strings.Builder
	b.WriteString("SELECT " + workItemColumns + " FROM work_items WHERE project_id = ? AND deleted_at IS NULL")
	args := []any{projectID}

	switch {
	case filter.OrphansOnly:
		b.WriteString(" AND parent_id IS NULL")
	case filter.ParentID != nil:
		if *filter.ParentID == "" {
			b.WriteString(" AND parent_id IS NULL")
		} else {
			b.WriteString(" AND parent_id = ?")
			args = append(args, *filter.ParentID)
		}
	}
	if filter.ItemType != nil {
		b.WriteString(" AND item_type = ?")
		args = append(args, string(*filter.ItemType))
	}
	if filter.Status != nil {
		b.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	} else if !filter.IncludeDone {
		b.WriteString(" AND status != ?")
		args = append(args, string(types.StatusDone))
	}
	b.WriteString(" ORDER BY position, item_number")

	return r.findMany(ctx, ex, b.String(), args...)
}

func (r *workItemRepo) FindChildren(ctx context.Context, ex storage.Executor, parentID string) ([]*types.WorkItem, error) {
	return r.findMany(ctx, ex, "SELECT "+workItemColumns+" FROM work_items WHERE parent_id = ? AND deleted_at IS NULL ORDER BY position", parentID)
}

func (r *workItemRepo) FindByProjectSince(ctx context.Context, ex storage.Executor, projectID string, sinceEpochMillis int64) ([]*types.WorkItem, error) {
	return r.findMany(ctx, ex, "SELECT "+workItemColumns+" FROM work_items WHERE project_id = ? AND updated_at >= ? ORDER BY updated_at",
		projectID, formatTime(epochMillisToTime(sinceEpochMillis)))
}

func (r *workItemRepo) FindMaxPosition(ctx context.Context, ex storage.Executor, projectID string, parentID *string) (int64, error) {
	var query string
	var args []any
	if parentID == nil {
		query = "SELECT COALESCE(MAX(position), -1) FROM work_items WHERE project_id = ? AND parent_id IS NULL AND deleted_at IS NULL"
		args = []any{projectID}
	} else {
		query = "SELECT COALESCE(MAX(position), -1) FROM work_items WHERE project_id = ? AND parent_id = ? AND deleted_at IS NULL"
		args = []any{projectID, *parentID}
	}
	var max int64
	if err := ex.QueryRowContext(ctx, query, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("find max position: %w", err)
	}
	return max, nil
}

func (r *workItemRepo) FindByProjectAndNumber(ctx context.Context, ex storage.Executor, projectID string, number int64) (*types.WorkItem, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+workItemColumns+" FROM work_items WHERE project_id = ? AND item_number = ?", projectID, number)
	return scanWorkItem(row)
}
