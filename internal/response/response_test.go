package response

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/changetracker"
	"github.com/boardwire/boardwire/internal/types"
	"github.com/boardwire/boardwire/internal/wire"
)

func testAudit() types.Audit {
	now := time.Now().UTC()
	return types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: "u1", UpdatedBy: "u1"}
}

func TestProjectCreatedEnvelope(t *testing.T) {
	p := &types.Project{ID: "proj-1", Key: "BW", Title: "Boardwire", Status: types.ProjectStatusActive, Version: 1, Audit: testAudit()}

	env := Project(types.ActionCreated, p, nil)

	require.Equal(t, "proj-1", env.ProjectID)
	require.IsType(t, &wire.CreateProjectResponse{}, env.Reply)
	require.IsType(t, &wire.ProjectCreated{}, env.Broadcast)
	require.NotEmpty(t, env.BroadcastMsgID)
}

func TestProjectUpdatedCarriesChanges(t *testing.T) {
	p := &types.Project{ID: "proj-1", Key: "BW", Title: "Renamed", Status: types.ProjectStatusActive, Version: 2, Audit: testAudit()}
	tr := changetracker.New()
	tr.String("title", "Boardwire", "Renamed")

	env := Project(types.ActionUpdated, p, tr.Changes())

	reply, ok := env.Reply.(*wire.UpdateProjectResponse)
	require.True(t, ok)
	require.Len(t, reply.Changes, 1)
	require.Equal(t, "title", reply.Changes[0].FieldName)
}

func TestProjectDeletedCarriesIDOnly(t *testing.T) {
	p := &types.Project{ID: "proj-1", Key: "BW", Title: "Boardwire", Status: types.ProjectStatusActive, Version: 3, Audit: testAudit()}

	env := Project(types.ActionDeleted, p, nil)

	reply, ok := env.Reply.(*wire.DeleteProjectResponse)
	require.True(t, ok)
	require.Equal(t, "proj-1", reply.ID)
}

func TestWorkItemEnvelopeCarriesProjectAndWorkItemID(t *testing.T) {
	w := &types.WorkItem{ID: "item-1", ProjectID: "proj-1", ItemType: types.ItemTypeTask, Title: "Task", Status: types.StatusTodo, Priority: types.PriorityMedium, ItemNumber: 1, Version: 1, Audit: testAudit()}

	env := WorkItem(types.ActionCreated, w, "BW", nil)

	require.Equal(t, "proj-1", env.ProjectID)
	require.Equal(t, "item-1", env.WorkItemID)
}

func TestDependencyEnvelopeHandlesCreatedAndDeleted(t *testing.T) {
	d := &types.Dependency{ID: "dep-1", BlockingItemID: "item-1", BlockedItemID: "item-2", Type: types.DependencyBlocks, Audit: testAudit()}

	created := Dependency(types.ActionCreated, d, "proj-1")
	require.IsType(t, &wire.CreateDependencyResponse{}, created.Reply)
	require.IsType(t, &wire.DependencyCreated{}, created.Broadcast)

	deleted := Dependency(types.ActionDeleted, d, "proj-1")
	require.IsType(t, &wire.DeleteDependencyResponse{}, deleted.Reply)
	require.IsType(t, &wire.DependencyDeleted{}, deleted.Broadcast)
}

func TestStopTimeEntryUsesDistinctReplyShape(t *testing.T) {
	end := time.Now().UTC()
	dur := int64(1800)
	te := &types.TimeEntry{ID: "te-1", WorkItemID: "item-1", UserID: "u1", StartedAt: end.Add(-30 * time.Minute), EndedAt: &end, DurationSeconds: &dur, Audit: testAudit()}

	env := StopTimeEntry(te, "proj-1")

	require.IsType(t, &wire.StopTimeEntryResponse{}, env.Reply)
	require.IsType(t, &wire.TimeEntryUpdated{}, env.Broadcast)
}

func TestActivityLogEnvelopeIsBroadcastOnly(t *testing.T) {
	e := &types.ActivityLogEntry{ID: "al-1", ProjectID: "proj-1", EntityType: "work_item", EntityID: "item-1", Action: types.ActionCreated, UserID: "u1", Timestamp: time.Now().UTC()}

	env := ActivityLog(e)

	require.Nil(t, env.Reply)
	require.IsType(t, &wire.ActivityLogCreated{}, env.Broadcast)
	require.Equal(t, "proj-1", env.ProjectID)
}
