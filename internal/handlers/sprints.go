package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/boardwire/boardwire/internal/authz"
	"github.com/boardwire/boardwire/internal/changetracker"
	"github.com/boardwire/boardwire/internal/dbops"
	"github.com/boardwire/boardwire/internal/response"
	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// CreateSprint implements the CreateSprintRequest handler (spec §4.6.2).
func (h *Handlers) CreateSprint(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.CreateSprintRequest)

	if verr := h.validator.UUID("project_id", req.ProjectID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Title("name", req.Name); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Description("goal", req.Goal); verr != nil {
		return nil, verr
	}
	if verr := h.validator.SprintWindow(req.StartAt, req.EndAt); verr != nil {
		return nil, verr
	}

	userID := userIDFrom(ctx)
	if aerr := h.authz.Check(ctx, userID, req.ProjectID, authz.PermissionWrite); aerr != nil {
		return nil, aerr
	}

	out, replayed, err := h.writeTransaction(ctx, "CreateSprint", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		project, perr := h.store.Projects().FindByID(ctx, tx, req.ProjectID)
		if perr != nil {
			if perr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("project not found")
			}
			return txOutcome{}, dbops.Retriable(perr)
		}
		if project.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("project not found")
		}

		now := time.Now()
		sprint := &types.Sprint{
			ID:        uuid.NewString(),
			ProjectID: req.ProjectID,
			Name:      req.Name,
			Goal:      req.Goal,
			StartAt:   time.UnixMilli(req.StartAt).UTC(),
			EndAt:     time.UnixMilli(req.EndAt).UTC(),
			Status:    types.SprintPlanned,
			Version:   1,
			Audit:     types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: userID, UpdatedBy: userID},
		}
		if cerr := h.store.Sprints().Create(ctx, tx, sprint); cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, req.ProjectID, "sprint", sprint.ID, types.ActionCreated, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Sprint(types.ActionCreated, sprint, nil)
		return txOutcome{reply: env.Reply, envelope: env, activity: alEntry}, nil
	})
	if err != nil {
		return nil, err
	}
	if !replayed {
		h.broadcastEnvelope(ctx, out.envelope, out.activity, connectionIDFrom(ctx), time.Now())
	}
	return out.reply, nil
}

// UpdateSprint implements the UpdateSprintRequest handler.
func (h *Handlers) UpdateSprint(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.UpdateSprintRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	if req.Name != nil {
		if verr := h.validator.Title("name", *req.Name); verr != nil {
			return nil, verr
		}
	}
	if req.Goal != nil {
		if verr := h.validator.Description("goal", *req.Goal); verr != nil {
			return nil, verr
		}
	}
	if req.Status != nil {
		if verr := h.validator.SprintStatus("status", *req.Status); verr != nil {
			return nil, verr
		}
	}

	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "UpdateSprint", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		sprint, ferr := h.store.Sprints().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("sprint not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if sprint.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("sprint not found")
		}
		if aerr := h.authz.Check(ctx, userID, sprint.ProjectID, authz.PermissionWrite); aerr != nil {
			return txOutcome{}, aerr
		}
		if sprint.Version != req.ExpectedVersion {
			return txOutcome{}, wireerr.Conflict(sprint.Version)
		}

		startAt, endAt := req.StartAt, req.EndAt
		newStart := sprint.StartAt
		newEnd := sprint.EndAt
		if startAt != nil {
			newStart = time.UnixMilli(*startAt).UTC()
		}
		if endAt != nil {
			newEnd = time.UnixMilli(*endAt).UTC()
		}
		if startAt != nil || endAt != nil {
			if verr := h.validator.SprintWindow(newStart.UnixMilli(), newEnd.UnixMilli()); verr != nil {
				return txOutcome{}, verr
			}
		}

		tracker := changetracker.New()
		if req.Name != nil && *req.Name != sprint.Name {
			tracker.String("name", sprint.Name, *req.Name)
			sprint.Name = *req.Name
		}
		if req.Goal != nil && *req.Goal != sprint.Goal {
			tracker.String("goal", sprint.Goal, *req.Goal)
			sprint.Goal = *req.Goal
		}
		if startAt != nil && !newStart.Equal(sprint.StartAt) {
			tracker.Int64("start_at", sprint.StartAt.UnixMilli(), newStart.UnixMilli())
			sprint.StartAt = newStart
		}
		if endAt != nil && !newEnd.Equal(sprint.EndAt) {
			tracker.Int64("end_at", sprint.EndAt.UnixMilli(), newEnd.UnixMilli())
			sprint.EndAt = newEnd
		}
		if req.Status != nil {
			newStatus := types.SprintStatus(*req.Status)
			if newStatus != sprint.Status {
				tracker.String("status", string(sprint.Status), string(newStatus))
				sprint.Status = newStatus
			}
		}

		changes := tracker.Changes()
		if len(changes) == 0 {
			env := response.Sprint(types.ActionUpdated, sprint, nil)
			return txOutcome{reply: env.Reply}, nil
		}

		now := time.Now()
		sprint.Audit.UpdatedAt = now
		sprint.Audit.UpdatedBy = userID

		if uerr := h.store.Sprints().Update(ctx, tx, sprint); uerr != nil {
			if uerr == storage.ErrNotFound {
				current, cerr := h.store.Sprints().FindByID(ctx, tx, req.ID)
				if cerr != nil {
					if cerr == storage.ErrNotFound {
						return txOutcome{}, wireerr.NotFound("sprint not found")
					}
					return txOutcome{}, dbops.Retriable(cerr)
				}
				return txOutcome{}, wireerr.Conflict(current.Version)
			}
			return txOutcome{}, dbops.Retriable(uerr)
		}

		var alEntry *types.ActivityLogEntry
		for _, c := range changes {
			entry, aerr := h.appendActivityLog(ctx, tx, sprint.ProjectID, "sprint", sprint.ID, types.ActionUpdated, strp(c.FieldName), c.OldValue, c.NewValue, userID, now)
			if aerr != nil {
				return txOutcome{}, dbops.Retriable(aerr)
			}
			alEntry = entry
		}

		env := response.Sprint(types.ActionUpdated, sprint, changes)
		return txOutcome{reply: env.Reply, envelope: env, activity: alEntry}, nil
	})
	if err != nil {
		return nil, err
	}
	if !replayed && out.envelope.Reply != nil {
		h.broadcastEnvelope(ctx, out.envelope, out.activity, connectionIDFrom(ctx), time.Now())
	}
	return out.reply, nil
}

// DeleteSprint implements the DeleteSprintRequest handler: blocked while
// any non-deleted work item is still assigned to the sprint.
func (h *Handlers) DeleteSprint(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.DeleteSprintRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "DeleteSprint", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		sprint, ferr := h.store.Sprints().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("sprint not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if sprint.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("sprint not found")
		}
		if aerr := h.authz.Check(ctx, userID, sprint.ProjectID, authz.PermissionDelete); aerr != nil {
			return txOutcome{}, aerr
		}

		assigned, ierr := h.store.WorkItems().FindByProject(ctx, tx, sprint.ProjectID, storage.WorkItemFilter{IncludeDone: true})
		if ierr != nil {
			return txOutcome{}, dbops.Retriable(ierr)
		}
		var inSprint int64
		for _, w := range assigned {
			if w.SprintID != nil && *w.SprintID == sprint.ID {
				inSprint++
			}
		}
		if inSprint > 0 {
			return txOutcome{}, wireerr.DeleteBlocked(inSprint, "sprint still has work items assigned")
		}

		now := time.Now()
		if derr := h.store.Sprints().SoftDelete(ctx, tx, sprint.ID, userID, now.UnixMilli()); derr != nil {
			if derr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("sprint not found")
			}
			return txOutcome{}, dbops.Retriable(derr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, sprint.ProjectID, "sprint", sprint.ID, types.ActionDeleted, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Envelope{
			Reply:          &wire.DeleteSprintResponse{ID: sprint.ID},
			Broadcast:      &wire.SprintDeleted{ID: sprint.ID},
			BroadcastMsgID: response.NewBroadcastMessageID(),
			ProjectID:      sprint.ProjectID,
			SprintID:       sprint.ID,
		}
		return txOutcome{reply: env.Reply, envelope: env, activity: alEntry}, nil
	})
	if err != nil {
		return nil, err
	}
	if !replayed {
		h.broadcastEnvelope(ctx, out.envelope, out.activity, connectionIDFrom(ctx), time.Now())
	}
	return out.reply, nil
}

// GetSprints implements the GetSprintsRequest list handler.
func (h *Handlers) GetSprints(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetSprintsRequest)
	if verr := h.validator.UUID("project_id", req.ProjectID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	var reply wire.Payload
	err := h.readOnly(ctx, func(ctx context.Context, ex storage.Executor) error {
		if aerr := h.authz.Check(ctx, userID, req.ProjectID, authz.PermissionRead); aerr != nil {
			return aerr
		}
		sprints, lerr := h.store.Sprints().FindByProject(ctx, ex, req.ProjectID)
		if lerr != nil {
			return dbops.Retriable(lerr)
		}
		dtos := make([]wire.SprintDTO, len(sprints))
		for i, s := range sprints {
			dtos[i] = wire.SprintToDTO(s)
		}
		reply = &wire.GetSprintsList{Sprints: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
