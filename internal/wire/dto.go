package wire

import (
	"github.com/boardwire/boardwire/internal/types"
)

// Timestamps on the wire are Unix-epoch milliseconds, not whole seconds:
// every int64 time field below is the in-memory time.Time converted with
// UnixMilli.

type ProjectDTO struct {
	ID                 string `json:"id"`
	Key                string `json:"key"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Status             string `json:"status"`
	Version            int64  `json:"version"`
	NextWorkItemNumber int64  `json:"next_work_item_number"`
	CreatedAt          int64  `json:"created_at"`
	UpdatedAt          int64  `json:"updated_at"`
	CreatedBy          string `json:"created_by"`
	UpdatedBy          string `json:"updated_by"`
}

func ProjectToDTO(p *types.Project) ProjectDTO {
	return ProjectDTO{
		ID: p.ID, Key: p.Key, Title: p.Title, Description: p.Description,
		Status: string(p.Status), Version: p.Version, NextWorkItemNumber: p.NextWorkItemNumber,
		CreatedAt: p.Audit.CreatedAt.UnixMilli(), UpdatedAt: p.Audit.UpdatedAt.UnixMilli(),
		CreatedBy: p.Audit.CreatedBy, UpdatedBy: p.Audit.UpdatedBy,
	}
}

type WorkItemDTO struct {
	ID          string  `json:"id"`
	DisplayKey  string  `json:"display_key"`
	ItemType    string  `json:"item_type"`
	ParentID    *string `json:"parent_id,omitempty"`
	ProjectID   string  `json:"project_id"`
	Position    int64   `json:"position"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	StoryPoints *int64  `json:"story_points,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	SprintID    *string `json:"sprint_id,omitempty"`
	ItemNumber  int64   `json:"item_number"`
	Version     int64   `json:"version"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
	CreatedBy   string  `json:"created_by"`
	UpdatedBy   string  `json:"updated_by"`
}

func WorkItemToDTO(w *types.WorkItem, projectKey string) WorkItemDTO {
	return WorkItemDTO{
		ID: w.ID, DisplayKey: types.DisplayKey(projectKey, w.ItemNumber), ItemType: string(w.ItemType),
		ParentID: w.ParentID, ProjectID: w.ProjectID, Position: w.Position, Title: w.Title,
		Description: w.Description, Status: string(w.Status), Priority: string(w.Priority),
		StoryPoints: w.StoryPoints, AssigneeID: w.AssigneeID, SprintID: w.SprintID,
		ItemNumber: w.ItemNumber, Version: w.Version,
		CreatedAt: w.Audit.CreatedAt.UnixMilli(), UpdatedAt: w.Audit.UpdatedAt.UnixMilli(),
		CreatedBy: w.Audit.CreatedBy, UpdatedBy: w.Audit.UpdatedBy,
	}
}

type SprintDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	StartAt   int64  `json:"start_at"`
	EndAt     int64  `json:"end_at"`
	Status    string `json:"status"`
	Version   int64  `json:"version"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	CreatedBy string `json:"created_by"`
	UpdatedBy string `json:"updated_by"`
}

func SprintToDTO(s *types.Sprint) SprintDTO {
	return SprintDTO{
		ID: s.ID, ProjectID: s.ProjectID, Name: s.Name, Goal: s.Goal,
		StartAt: s.StartAt.UnixMilli(), EndAt: s.EndAt.UnixMilli(), Status: string(s.Status), Version: s.Version,
		CreatedAt: s.Audit.CreatedAt.UnixMilli(), UpdatedAt: s.Audit.UpdatedAt.UnixMilli(),
		CreatedBy: s.Audit.CreatedBy, UpdatedBy: s.Audit.UpdatedBy,
	}
}

type CommentDTO struct {
	ID         string `json:"id"`
	WorkItemID string `json:"work_item_id"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
	CreatedBy  string `json:"created_by"`
	UpdatedBy  string `json:"updated_by"`
}

func CommentToDTO(c *types.Comment) CommentDTO {
	return CommentDTO{
		ID: c.ID, WorkItemID: c.WorkItemID, Content: c.Content,
		CreatedAt: c.Audit.CreatedAt.UnixMilli(), UpdatedAt: c.Audit.UpdatedAt.UnixMilli(),
		CreatedBy: c.Audit.CreatedBy, UpdatedBy: c.Audit.UpdatedBy,
	}
}

type TimeEntryDTO struct {
	ID              string `json:"id"`
	WorkItemID      string `json:"work_item_id"`
	UserID          string `json:"user_id"`
	StartedAt       int64  `json:"started_at"`
	EndedAt         *int64 `json:"ended_at,omitempty"`
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
	Description     string `json:"description"`
}

func TimeEntryToDTO(t *types.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID: t.ID, WorkItemID: t.WorkItemID, UserID: t.UserID,
		StartedAt: t.StartedAt.UnixMilli(), DurationSeconds: t.DurationSeconds, Description: t.Description,
	}
	if t.EndedAt != nil {
		ms := t.EndedAt.UnixMilli()
		dto.EndedAt = &ms
	}
	return dto
}

type DependencyDTO struct {
	ID             string `json:"id"`
	BlockingItemID string `json:"blocking_item_id"`
	BlockedItemID  string `json:"blocked_item_id"`
	Type           string `json:"type"`
}

func DependencyToDTO(d *types.Dependency) DependencyDTO {
	return DependencyDTO{ID: d.ID, BlockingItemID: d.BlockingItemID, BlockedItemID: d.BlockedItemID, Type: string(d.Type)}
}

type ActivityLogDTO struct {
	ID         string  `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	Action     string  `json:"action"`
	FieldName  *string `json:"field_name,omitempty"`
	OldValue   *string `json:"old_value,omitempty"`
	NewValue   *string `json:"new_value,omitempty"`
	UserID     string  `json:"user_id"`
	Timestamp  int64   `json:"timestamp"`
}

func ActivityLogToDTO(e *types.ActivityLogEntry) ActivityLogDTO {
	return ActivityLogDTO{
		ID: e.ID, EntityType: e.EntityType, EntityID: e.EntityID, Action: string(e.Action),
		FieldName: e.FieldName, OldValue: e.OldValue, NewValue: e.NewValue,
		UserID: e.UserID, Timestamp: e.Timestamp.UnixMilli(),
	}
}

// FieldChangeDTO is the wire shape of internal/changetracker.FieldChange.
type FieldChangeDTO struct {
	FieldName string `json:"field_name"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
}
