// Package response implements ResponseBuilder (spec §4.9): converting
// domain objects into the reply a caller receives and the broadcast event
// subscribers receive. The two carry identical payload data but different
// message ids — the reply echoes the caller's message_id, the broadcast
// gets a fresh server-generated one.
package response

import (
	"github.com/google/uuid"

	"github.com/boardwire/boardwire/internal/changetracker"
	"github.com/boardwire/boardwire/internal/types"
	"github.com/boardwire/boardwire/internal/wire"
)

// Envelope pairs the wire Payload for a reply with the one for its
// broadcast sibling, plus the project id BroadcastFanout should route on.
type Envelope struct {
	Reply            wire.Payload
	Broadcast        wire.Payload
	BroadcastMsgID   string
	ProjectID        string
	WorkItemID       string // set for work-item-scoped broadcasts
	SprintID         string // set for sprint-scoped broadcasts
}

// NewBroadcastMessageID generates a fresh server-side message id for a
// broadcast event, distinct from the command's own message_id.
func NewBroadcastMessageID() string {
	return uuid.NewString()
}

// Project builds reply+broadcast envelopes for project mutations.
func Project(action types.ActivityAction, p *types.Project, changes []changetracker.FieldChange) Envelope {
	dto := wire.ProjectToDTO(p)
	changeDTOs := changetracker.ToDTOs(changes)
	var reply, broadcast wire.Payload
	switch action {
	case types.ActionCreated:
		reply = &wire.CreateProjectResponse{Project: dto}
		broadcast = &wire.ProjectCreated{Project: dto}
	case types.ActionUpdated:
		reply = &wire.UpdateProjectResponse{Project: dto, Changes: changeDTOs}
		broadcast = &wire.ProjectUpdated{Project: dto, Changes: changeDTOs}
	case types.ActionDeleted:
		reply = &wire.DeleteProjectResponse{ID: p.ID}
		broadcast = &wire.ProjectDeleted{ID: p.ID}
	}
	return Envelope{Reply: reply, Broadcast: broadcast, BroadcastMsgID: NewBroadcastMessageID(), ProjectID: p.ID}
}

// WorkItem builds reply+broadcast envelopes for work-item mutations.
func WorkItem(action types.ActivityAction, w *types.WorkItem, projectKey string, changes []changetracker.FieldChange) Envelope {
	dto := wire.WorkItemToDTO(w, projectKey)
	changeDTOs := changetracker.ToDTOs(changes)
	var reply, broadcast wire.Payload
	switch action {
	case types.ActionCreated:
		reply = &wire.CreateWorkItemResponse{WorkItem: dto}
		broadcast = &wire.WorkItemCreated{WorkItem: dto}
	case types.ActionUpdated:
		reply = &wire.UpdateWorkItemResponse{WorkItem: dto, Changes: changeDTOs}
		broadcast = &wire.WorkItemUpdated{WorkItem: dto, Changes: changeDTOs}
	case types.ActionDeleted:
		reply = &wire.DeleteWorkItemResponse{ID: w.ID}
		broadcast = &wire.WorkItemDeleted{ID: w.ID}
	}
	return Envelope{Reply: reply, Broadcast: broadcast, BroadcastMsgID: NewBroadcastMessageID(), ProjectID: w.ProjectID, WorkItemID: w.ID}
}

// Sprint builds reply+broadcast envelopes for sprint mutations.
func Sprint(action types.ActivityAction, s *types.Sprint, changes []changetracker.FieldChange) Envelope {
	dto := wire.SprintToDTO(s)
	changeDTOs := changetracker.ToDTOs(changes)
	var reply, broadcast wire.Payload
	switch action {
	case types.ActionCreated:
		reply = &wire.CreateSprintResponse{Sprint: dto}
		broadcast = &wire.SprintCreated{Sprint: dto}
	case types.ActionUpdated:
		reply = &wire.UpdateSprintResponse{Sprint: dto, Changes: changeDTOs}
		broadcast = &wire.SprintUpdated{Sprint: dto, Changes: changeDTOs}
	case types.ActionDeleted:
		reply = &wire.DeleteSprintResponse{ID: s.ID}
		broadcast = &wire.SprintDeleted{ID: s.ID}
	}
	return Envelope{Reply: reply, Broadcast: broadcast, BroadcastMsgID: NewBroadcastMessageID(), ProjectID: s.ProjectID, SprintID: s.ID}
}

// Comment builds reply+broadcast envelopes for comment mutations. Comments
// are scoped by their parent work item's project for broadcast routing.
func Comment(action types.ActivityAction, c *types.Comment, projectID string, changes []changetracker.FieldChange) Envelope {
	dto := wire.CommentToDTO(c)
	changeDTOs := changetracker.ToDTOs(changes)
	var reply, broadcast wire.Payload
	switch action {
	case types.ActionCreated:
		reply = &wire.CreateCommentResponse{Comment: dto}
		broadcast = &wire.CommentCreated{Comment: dto}
	case types.ActionUpdated:
		reply = &wire.UpdateCommentResponse{Comment: dto, Changes: changeDTOs}
		broadcast = &wire.CommentUpdated{Comment: dto, Changes: changeDTOs}
	case types.ActionDeleted:
		reply = &wire.DeleteCommentResponse{ID: c.ID}
		broadcast = &wire.CommentDeleted{ID: c.ID}
	}
	return Envelope{Reply: reply, Broadcast: broadcast, BroadcastMsgID: NewBroadcastMessageID(), ProjectID: projectID, WorkItemID: c.WorkItemID}
}

// TimeEntry builds reply+broadcast envelopes for time-entry mutations.
func TimeEntry(action types.ActivityAction, t *types.TimeEntry, projectID string) Envelope {
	dto := wire.TimeEntryToDTO(t)
	var reply, broadcast wire.Payload
	switch action {
	case types.ActionCreated:
		reply = &wire.StartTimeEntryResponse{TimeEntry: dto}
		broadcast = &wire.TimeEntryCreated{TimeEntry: dto}
	case types.ActionUpdated:
		reply = &wire.UpdateTimeEntryResponse{TimeEntry: dto}
		broadcast = &wire.TimeEntryUpdated{TimeEntry: dto}
	case types.ActionDeleted:
		reply = &wire.DeleteTimeEntryResponse{ID: t.ID}
		broadcast = &wire.TimeEntryDeleted{ID: t.ID}
	}
	return Envelope{Reply: reply, Broadcast: broadcast, BroadcastMsgID: NewBroadcastMessageID(), ProjectID: projectID, WorkItemID: t.WorkItemID}
}

// StopTimeEntry builds the envelope for the StopTimer handler, whose
// reply shape differs from Update's.
func StopTimeEntry(t *types.TimeEntry, projectID string) Envelope {
	dto := wire.TimeEntryToDTO(t)
	return Envelope{
		Reply:          &wire.StopTimeEntryResponse{TimeEntry: dto},
		Broadcast:      &wire.TimeEntryUpdated{TimeEntry: dto},
		BroadcastMsgID: NewBroadcastMessageID(),
		ProjectID:      projectID,
		WorkItemID:     t.WorkItemID,
	}
}

// Dependency builds reply+broadcast envelopes for dependency mutations.
func Dependency(action types.ActivityAction, d *types.Dependency, projectID string) Envelope {
	dto := wire.DependencyToDTO(d)
	var reply, broadcast wire.Payload
	switch action {
	case types.ActionCreated:
		reply = &wire.CreateDependencyResponse{Dependency: dto}
		broadcast = &wire.DependencyCreated{Dependency: dto}
	case types.ActionDeleted:
		reply = &wire.DeleteDependencyResponse{ID: d.ID}
		broadcast = &wire.DependencyDeleted{ID: d.ID}
	}
	return Envelope{Reply: reply, Broadcast: broadcast, BroadcastMsgID: NewBroadcastMessageID(), ProjectID: projectID, WorkItemID: d.BlockingItemID}
}

// ActivityLog builds the broadcast-only envelope emitted alongside every
// other successful write's own broadcast.
func ActivityLog(e *types.ActivityLogEntry) Envelope {
	dto := wire.ActivityLogToDTO(e)
	return Envelope{
		Broadcast:      &wire.ActivityLogCreated{Entry: dto},
		BroadcastMsgID: NewBroadcastMessageID(),
		ProjectID:      e.ProjectID,
	}
}
