package types

import "time"

// Project is an organizational container for work items, sprints, and
// their history. Created by an authenticated user; writes require
// project-scoped permission (see internal/authz).
type Project struct {
	ID                 string
	Key                string // unique, uppercase, <=10 chars
	Title              string
	Description        string
	Status             ProjectStatus
	Version            int64
	Audit              Audit
	DeletedAt          *time.Time
	NextWorkItemNumber int64
}

func (p *Project) IsDeleted() bool { return p.DeletedAt != nil }

// WorkItem is a hierarchical unit of work: an Epic, Story, or Task.
type WorkItem struct {
	ID          string
	ItemType    ItemType
	ParentID    *string
	ProjectID   string
	Position    int64
	Title       string
	Description string
	Status      ItemStatus
	Priority    Priority
	StoryPoints *int64
	AssigneeID  *string
	SprintID    *string
	ItemNumber  int64
	Version     int64
	Audit       Audit
	DeletedAt   *time.Time
}

func (w *WorkItem) IsDeleted() bool { return w.DeletedAt != nil }

// DisplayKey formats the human-readable "KEY-N" identifier for a work item.
func DisplayKey(projectKey string, itemNumber int64) string {
	return projectKey + "-" + itoa(itemNumber)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Sprint is a time-boxed iteration of a project.
type Sprint struct {
	ID        string
	ProjectID string
	Name      string
	Goal      string
	StartAt   time.Time
	EndAt     time.Time
	Status    SprintStatus
	Version   int64
	Audit     Audit
	DeletedAt *time.Time
}

func (s *Sprint) IsDeleted() bool { return s.DeletedAt != nil }

// Comment is a flat (non-threaded) note attached to a work item.
type Comment struct {
	ID         string
	WorkItemID string
	Content    string
	Audit      Audit
	DeletedAt  *time.Time
}

func (c *Comment) IsDeleted() bool { return c.DeletedAt != nil }

// TimeEntry is a timing record for a work item. A timer is running when
// EndedAt is nil; at most one running timer may exist per (UserID, WorkItemID).
type TimeEntry struct {
	ID              string
	WorkItemID      string
	UserID          string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds *int64
	Description     string
	Audit           Audit
	DeletedAt       *time.Time
}

func (t *TimeEntry) IsDeleted() bool { return t.DeletedAt != nil }
func (t *TimeEntry) IsRunning() bool { return t.EndedAt == nil }

// Dependency is a directed link between two work items.
type Dependency struct {
	ID             string
	BlockingItemID string
	BlockedItemID  string
	Type           DependencyType
	Audit          Audit
	DeletedAt      *time.Time
}

func (d *Dependency) IsDeleted() bool { return d.DeletedAt != nil }

// ActivityLogEntry is an append-only audit row. Never updated, never deleted.
type ActivityLogEntry struct {
	ID         string
	ProjectID  string
	EntityType string
	EntityID   string
	Action     ActivityAction
	FieldName  *string
	OldValue   *string
	NewValue   *string
	UserID     string
	Timestamp  time.Time
}

// IdempotencyRecord maps a client message_id to the serialized response a
// prior execution of the same command produced.
type IdempotencyRecord struct {
	MessageID  string
	Handler    string
	Response   []byte
	CreatedAt  time.Time
}
