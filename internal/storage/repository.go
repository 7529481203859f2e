// Package storage declares the repository interfaces the message-dispatch
// core depends on. The embedded relational store itself (internal/storage/sqlite)
// is a collaborator consumed through these interfaces — the core never
// assumes a particular engine.
package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/boardwire/boardwire/internal/types"
)

// ErrNotFound is returned by Find* methods when no row matches. Wrapping
// this (rather than sql.ErrNoRows) keeps the repository interface engine
// agnostic.
var ErrNotFound = errors.New("storage: not found")

// Executor is satisfied by both *sql.DB and *sql.Tx, letting every
// repository method run standalone or inside a caller-provided transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner opens a transaction whose handle satisfies Executor and can be
// committed or rolled back explicitly.
type TxBeginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is the transaction handle passed to repository methods that must
// execute atomically with an activity-log row and an idempotency record.
type Tx interface {
	Executor
	Commit() error
	Rollback() error
}

// Projects is the repository interface for the Project entity.
type Projects interface {
	Create(ctx context.Context, ex Executor, p *types.Project) error
	Update(ctx context.Context, ex Executor, p *types.Project) error
	SoftDelete(ctx context.Context, ex Executor, id string, updatedBy string, when int64) error
	FindByID(ctx context.Context, ex Executor, id string) (*types.Project, error)
	FindByKey(ctx context.Context, ex Executor, key string) (*types.Project, error)
	FindAll(ctx context.Context, ex Executor) ([]*types.Project, error)
	FindActive(ctx context.Context, ex Executor) ([]*types.Project, error)
	// GetAndIncrementWorkItemNumber performs the read-then-write critical
	// section described in spec.md §9: it returns the counter value prior
	// to increment and leaves next_work_item_number bumped by one.
	GetAndIncrementWorkItemNumber(ctx context.Context, ex Executor, projectID string) (int64, error)
	// CountNonDeletedWorkItems supports the project delete-block invariant.
	CountNonDeletedWorkItems(ctx context.Context, ex Executor, projectID string) (int64, error)
}

// WorkItemFilter narrows WorkItems.FindByProject results.
type WorkItemFilter struct {
	ParentID     *string // nil = no filter; empty string = orphans only
	OrphansOnly  bool
	ItemType     *types.ItemType
	Status       *types.ItemStatus
	IncludeDone  bool
}

// WorkItems is the repository interface for the WorkItem entity.
type WorkItems interface {
	Create(ctx context.Context, ex Executor, w *types.WorkItem) error
	Update(ctx context.Context, ex Executor, w *types.WorkItem) error
	SoftDelete(ctx context.Context, ex Executor, id string, updatedBy string, when int64) error
	FindByID(ctx context.Context, ex Executor, id string) (*types.WorkItem, error)
	FindByProject(ctx context.Context, ex Executor, projectID string, filter WorkItemFilter) ([]*types.WorkItem, error)
	FindChildren(ctx context.Context, ex Executor, parentID string) ([]*types.WorkItem, error)
	FindByProjectSince(ctx context.Context, ex Executor, projectID string, sinceEpochMillis int64) ([]*types.WorkItem, error)
	FindMaxPosition(ctx context.Context, ex Executor, projectID string, parentID *string) (int64, error)
	FindByProjectAndNumber(ctx context.Context, ex Executor, projectID string, number int64) (*types.WorkItem, error)
}

// Sprints is the repository interface for the Sprint entity.
type Sprints interface {
	Create(ctx context.Context, ex Executor, s *types.Sprint) error
	Update(ctx context.Context, ex Executor, s *types.Sprint) error
	SoftDelete(ctx context.Context, ex Executor, id string, updatedBy string, when int64) error
	FindByID(ctx context.Context, ex Executor, id string) (*types.Sprint, error)
	FindByProject(ctx context.Context, ex Executor, projectID string) ([]*types.Sprint, error)
}

// Comments is the repository interface for the Comment entity.
type Comments interface {
	Create(ctx context.Context, ex Executor, c *types.Comment) error
	Update(ctx context.Context, ex Executor, c *types.Comment) error
	SoftDelete(ctx context.Context, ex Executor, id string, when int64) error
	FindByWorkItem(ctx context.Context, ex Executor, workItemID string) ([]*types.Comment, error)
	FindByID(ctx context.Context, ex Executor, id string) (*types.Comment, error)
}

// TimeEntries is the repository interface for the TimeEntry entity.
type TimeEntries interface {
	Create(ctx context.Context, ex Executor, t *types.TimeEntry) error
	Update(ctx context.Context, ex Executor, t *types.TimeEntry) error
	SoftDelete(ctx context.Context, ex Executor, id string, when int64) error
	FindByID(ctx context.Context, ex Executor, id string) (*types.TimeEntry, error)
	FindRunningForUserAndWorkItem(ctx context.Context, ex Executor, userID, workItemID string) (*types.TimeEntry, error)
	FindByWorkItem(ctx context.Context, ex Executor, workItemID string) ([]*types.TimeEntry, error)
}

// Dependencies is the repository interface for the Dependency entity.
type Dependencies interface {
	Create(ctx context.Context, ex Executor, d *types.Dependency) error
	SoftDelete(ctx context.Context, ex Executor, id string, when int64) error
	FindByID(ctx context.Context, ex Executor, id string) (*types.Dependency, error)
	FindByBlocking(ctx context.Context, ex Executor, blockingItemID string) ([]*types.Dependency, error)
	FindByBlocked(ctx context.Context, ex Executor, blockedItemID string) ([]*types.Dependency, error)
	FindByProject(ctx context.Context, ex Executor, projectID string) ([]*types.Dependency, error)
}

// ActivityLog is the repository interface for the append-only audit trail.
type ActivityLog interface {
	Create(ctx context.Context, ex Executor, e *types.ActivityLogEntry) error
	FindForEntity(ctx context.Context, ex Executor, entityType, entityID string) ([]*types.ActivityLogEntry, error)
	FindSince(ctx context.Context, ex Executor, projectID string, sinceEpochMillis int64, limit int) ([]*types.ActivityLogEntry, error)
}

// Idempotency is the repository interface for replay-safe command handling.
type Idempotency interface {
	FindByMessageID(ctx context.Context, ex Executor, messageID string) (*types.IdempotencyRecord, error)
	Create(ctx context.Context, ex Executor, r *types.IdempotencyRecord) error
	// Prune deletes records older than the retention window; called
	// periodically, never from the hot command path.
	Prune(ctx context.Context, ex Executor, olderThan int64) (int64, error)
}

// Store is the aggregate collaborator the dispatcher and handlers depend on:
// a transaction opener plus one repository per entity family.
type Store interface {
	TxBeginner
	Projects() Projects
	WorkItems() WorkItems
	Sprints() Sprints
	Comments() Comments
	TimeEntries() TimeEntries
	Dependencies() Dependencies
	ActivityLog() ActivityLog
	Idempotency() Idempotency
	Close() error
}
