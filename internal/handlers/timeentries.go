package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/boardwire/boardwire/internal/authz"
	"github.com/boardwire/boardwire/internal/dbops"
	"github.com/boardwire/boardwire/internal/response"
	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// StartTimeEntry implements the StartTimeEntryRequest handler (spec
// §4.6.4): at most one running timer may exist per (user, work item).
func (h *Handlers) StartTimeEntry(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.StartTimeEntryRequest)

	if verr := h.validator.UUID("work_item_id", req.WorkItemID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Description("description", req.Description); verr != nil {
		return nil, verr
	}

	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "StartTimeEntry", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		item, ferr := h.store.WorkItems().FindByID(ctx, tx, req.WorkItemID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("work item not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if item.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("work item not found")
		}
		if aerr := h.authz.Check(ctx, userID, item.ProjectID, authz.PermissionWrite); aerr != nil {
			return txOutcome{}, aerr
		}

		running, rerr := h.store.TimeEntries().FindRunningForUserAndWorkItem(ctx, tx, userID, req.WorkItemID)
		if rerr != nil && rerr != storage.ErrNotFound {
			return txOutcome{}, dbops.Retriable(rerr)
		}
		if running != nil {
			return txOutcome{}, wireerr.Validation("work_item_id", "a running timer already exists for this user and work item")
		}

		now := time.Now()
		entry := &types.TimeEntry{
			ID:          uuid.NewString(),
			WorkItemID:  req.WorkItemID,
			UserID:      userID,
			StartedAt:   now,
			Description: req.Description,
			Audit:       types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: userID, UpdatedBy: userID},
		}
		if cerr := h.store.TimeEntries().Create(ctx, tx, entry); cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "time_entry", entry.ID, types.ActionCreated, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.TimeEntry(types.ActionCreated, entry, item.ProjectID)
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

// StopTimeEntry implements the StopTimeEntryRequest handler: computes
// duration_seconds from started_at to now.
func (h *Handlers) StopTimeEntry(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.StopTimeEntryRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "StopTimeEntry", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		entry, ferr := h.store.TimeEntries().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("time entry not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if entry.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("time entry not found")
		}
		if entry.UserID != userID {
			return txOutcome{}, wireerr.Forbidden("only the timer's owner may stop it")
		}
		if !entry.IsRunning() {
			return txOutcome{}, wireerr.Validation("id", "timer is not running")
		}

		item, ferr := h.store.WorkItems().FindByID(ctx, tx, entry.WorkItemID)
		if ferr != nil {
			return txOutcome{}, dbops.Retriable(ferr)
		}

		now := time.Now()
		duration := int64(now.Sub(entry.StartedAt).Seconds())
		entry.EndedAt = &now
		entry.DurationSeconds = &duration
		entry.Audit.UpdatedAt = now
		entry.Audit.UpdatedBy = userID

		if uerr := h.store.TimeEntries().Update(ctx, tx, entry); uerr != nil {
			if uerr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("time entry not found")
			}
			return txOutcome{}, dbops.Retriable(uerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "time_entry", entry.ID, types.ActionUpdated, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.StopTimeEntry(entry, item.ProjectID)
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

// UpdateTimeEntry implements the UpdateTimeEntryRequest handler: the
// owner may edit the entry's description at any time.
func (h *Handlers) UpdateTimeEntry(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.UpdateTimeEntryRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Description("description", req.Description); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "UpdateTimeEntry", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		entry, ferr := h.store.TimeEntries().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("time entry not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if entry.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("time entry not found")
		}
		if entry.UserID != userID {
			return txOutcome{}, wireerr.Forbidden("only the timer's owner may edit it")
		}

		item, ferr := h.store.WorkItems().FindByID(ctx, tx, entry.WorkItemID)
		if ferr != nil {
			return txOutcome{}, dbops.Retriable(ferr)
		}

		if entry.Description == req.Description {
			env := response.TimeEntry(types.ActionUpdated, entry, item.ProjectID)
			return txOutcome{reply: env.Reply}, nil
		}

		now := time.Now()
		entry.Description = req.Description
		entry.Audit.UpdatedAt = now
		entry.Audit.UpdatedBy = userID

		if uerr := h.store.TimeEntries().Update(ctx, tx, entry); uerr != nil {
			if uerr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("time entry not found")
			}
			return txOutcome{}, dbops.Retriable(uerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "time_entry", entry.ID, types.ActionUpdated, strp("description"), nil, strp(req.Description), userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.TimeEntry(types.ActionUpdated, entry, item.ProjectID)
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

// DeleteTimeEntry implements the DeleteTimeEntryRequest handler.
func (h *Handlers) DeleteTimeEntry(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.DeleteTimeEntryRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "DeleteTimeEntry", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		entry, ferr := h.store.TimeEntries().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("time entry not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if entry.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("time entry not found")
		}
		if entry.UserID != userID {
			return txOutcome{}, wireerr.Forbidden("only the timer's owner may delete it")
		}

		item, ferr := h.store.WorkItems().FindByID(ctx, tx, entry.WorkItemID)
		if ferr != nil {
			return txOutcome{}, dbops.Retriable(ferr)
		}

		now := time.Now()
		if derr := h.store.TimeEntries().SoftDelete(ctx, tx, entry.ID, now.UnixMilli()); derr != nil {
			if derr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("time entry not found")
			}
			return txOutcome{}, dbops.Retriable(derr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "time_entry", entry.ID, types.ActionDeleted, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Envelope{
			Reply:          &wire.DeleteTimeEntryResponse{ID: entry.ID},
			Broadcast:      &wire.TimeEntryDeleted{ID: entry.ID},
			BroadcastMsgID: response.NewBroadcastMessageID(),
			ProjectID:      item.ProjectID,
			WorkItemID:     entry.WorkItemID,
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

// GetTimeEntry implements the GetTimeEntryRequest handler.
func (h *Handlers) GetTimeEntry(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetTimeEntryRequest)
	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	var reply wire.Payload
	err := h.readOnly(ctx, func(ctx context.Context, ex storage.Executor) error {
		entry, ferr := h.store.TimeEntries().FindByID(ctx, ex, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return wireerr.NotFound("time entry not found")
			}
			return dbops.Retriable(ferr)
		}
		item, ferr := h.store.WorkItems().FindByID(ctx, ex, entry.WorkItemID)
		if ferr != nil {
			return dbops.Retriable(ferr)
		}
		if aerr := h.authz.Check(ctx, userID, item.ProjectID, authz.PermissionRead); aerr != nil {
			return aerr
		}
		reply = &wire.GetTimeEntryResponse{TimeEntry: wire.TimeEntryToDTO(entry)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// GetTimeEntries implements the GetTimeEntriesRequest list handler.
func (h *Handlers) GetTimeEntries(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetTimeEntriesRequest)
	if verr := h.validator.UUID("work_item_id", req.WorkItemID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	var reply wire.Payload
	err := h.readOnly(ctx, func(ctx context.Context, ex storage.Executor) error {
		item, ferr := h.store.WorkItems().FindByID(ctx, ex, req.WorkItemID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return wireerr.NotFound("work item not found")
			}
			return dbops.Retriable(ferr)
		}
		if aerr := h.authz.Check(ctx, userID, item.ProjectID, authz.PermissionRead); aerr != nil {
			return aerr
		}
		entries, lerr := h.store.TimeEntries().FindByWorkItem(ctx, ex, req.WorkItemID)
		if lerr != nil {
			return dbops.Retriable(lerr)
		}
		dtos := make([]wire.TimeEntryDTO, len(entries))
		for i, e := range entries {
			dtos[i] = wire.TimeEntryToDTO(e)
		}
		reply = &wire.GetTimeEntriesList{TimeEntries: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
