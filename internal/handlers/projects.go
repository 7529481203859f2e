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

// CreateProject implements the CreateProjectRequest handler (spec §4.6.6):
// the project key is globally unique, enforced by the store's unique index
// and surfaced here as a VALIDATION_ERROR rather than a raw constraint failure.
func (h *Handlers) CreateProject(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.CreateProjectRequest)

	if verr := h.validator.ProjectKey("key", req.Key); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Title("title", req.Title); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Description("description", req.Description); verr != nil {
		return nil, verr
	}

	userID := userIDFrom(ctx)
	if userID == "" {
		return nil, wireerr.Unauthorized("no authenticated user")
	}

	out, replayed, err := h.writeTransaction(ctx, "CreateProject", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		if existing, ferr := h.store.Projects().FindByKey(ctx, tx, req.Key); ferr == nil && existing != nil {
			return txOutcome{}, wireerr.Validation("key", "a project with this key already exists")
		} else if ferr != nil && ferr != storage.ErrNotFound {
			return txOutcome{}, dbops.Retriable(ferr)
		}

		now := time.Now()
		project := &types.Project{
			ID:                 uuid.NewString(),
			Key:                req.Key,
			Title:              req.Title,
			Description:        req.Description,
			Status:             types.ProjectStatusActive,
			Version:            1,
			Audit:              types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: userID, UpdatedBy: userID},
			NextWorkItemNumber: 1,
		}
		if cerr := h.store.Projects().Create(ctx, tx, project); cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, project.ID, "project", project.ID, types.ActionCreated, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Project(types.ActionCreated, project, nil)
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

// UpdateProject implements the UpdateProjectRequest handler. Archiving a
// project (status -> archived) is just a status change: it does not
// delete or hide the project's work items.
func (h *Handlers) UpdateProject(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.UpdateProjectRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	if req.Title != nil {
		if verr := h.validator.Title("title", *req.Title); verr != nil {
			return nil, verr
		}
	}
	if req.Description != nil {
		if verr := h.validator.Description("description", *req.Description); verr != nil {
			return nil, verr
		}
	}
	var newStatus *types.ProjectStatus
	if req.Status != nil {
		if !types.ProjectStatus(*req.Status).Valid() {
			return nil, wireerr.Validation("status", "not a recognised status")
		}
		s := types.ProjectStatus(*req.Status)
		newStatus = &s
	}

	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "UpdateProject", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		project, ferr := h.store.Projects().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("project not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if project.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("project not found")
		}
		if aerr := h.authz.Check(ctx, userID, project.ID, authz.PermissionWrite); aerr != nil {
			return txOutcome{}, aerr
		}
		if project.Version != req.ExpectedVersion {
			return txOutcome{}, wireerr.Conflict(project.Version)
		}

		tracker := changetracker.New()
		if req.Title != nil && *req.Title != project.Title {
			tracker.String("title", project.Title, *req.Title)
			project.Title = *req.Title
		}
		if req.Description != nil && *req.Description != project.Description {
			tracker.String("description", project.Description, *req.Description)
			project.Description = *req.Description
		}
		if newStatus != nil && *newStatus != project.Status {
			tracker.String("status", string(project.Status), string(*newStatus))
			project.Status = *newStatus
		}

		changes := tracker.Changes()
		if len(changes) == 0 {
			env := response.Project(types.ActionUpdated, project, nil)
			return txOutcome{reply: env.Reply}, nil
		}

		now := time.Now()
		project.Audit.UpdatedAt = now
		project.Audit.UpdatedBy = userID

		if uerr := h.store.Projects().Update(ctx, tx, project); uerr != nil {
			if uerr == storage.ErrNotFound {
				current, cerr := h.store.Projects().FindByID(ctx, tx, req.ID)
				if cerr != nil {
					if cerr == storage.ErrNotFound {
						return txOutcome{}, wireerr.NotFound("project not found")
					}
					return txOutcome{}, dbops.Retriable(cerr)
				}
				return txOutcome{}, wireerr.Conflict(current.Version)
			}
			return txOutcome{}, dbops.Retriable(uerr)
		}

		var alEntry *types.ActivityLogEntry
		for _, c := range changes {
			entry, aerr := h.appendActivityLog(ctx, tx, project.ID, "project", project.ID, types.ActionUpdated, strp(c.FieldName), c.OldValue, c.NewValue, userID, now)
			if aerr != nil {
				return txOutcome{}, dbops.Retriable(aerr)
			}
			alEntry = entry
		}

		env := response.Project(types.ActionUpdated, project, changes)
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

// DeleteProject implements the DeleteProjectRequest handler: blocked while
// any non-deleted work item still references the project.
func (h *Handlers) DeleteProject(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.DeleteProjectRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "DeleteProject", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		project, ferr := h.store.Projects().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("project not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if project.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("project not found")
		}
		if aerr := h.authz.Check(ctx, userID, project.ID, authz.PermissionDelete); aerr != nil {
			return txOutcome{}, aerr
		}

		count, cerr := h.store.Projects().CountNonDeletedWorkItems(ctx, tx, project.ID)
		if cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}
		if count > 0 {
			return txOutcome{}, wireerr.DeleteBlocked(count, "project still has non-deleted work items")
		}

		now := time.Now()
		if derr := h.store.Projects().SoftDelete(ctx, tx, project.ID, userID, now.UnixMilli()); derr != nil {
			if derr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("project not found")
			}
			return txOutcome{}, dbops.Retriable(derr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, project.ID, "project", project.ID, types.ActionDeleted, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Envelope{
			Reply:          &wire.DeleteProjectResponse{ID: project.ID},
			Broadcast:      &wire.ProjectDeleted{ID: project.ID},
			BroadcastMsgID: response.NewBroadcastMessageID(),
			ProjectID:      project.ID,
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

// GetProjects implements the GetProjectsRequest list handler.
func (h *Handlers) GetProjects(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetProjectsRequest)

	var reply wire.Payload
	err := h.readOnly(ctx, func(ctx context.Context, ex storage.Executor) error {
		var projects []*types.Project
		var lerr error
		if req.ActiveOnly {
			projects, lerr = h.store.Projects().FindActive(ctx, ex)
		} else {
			projects, lerr = h.store.Projects().FindAll(ctx, ex)
		}
		if lerr != nil {
			return dbops.Retriable(lerr)
		}
		dtos := make([]wire.ProjectDTO, len(projects))
		for i, proj := range projects {
			dtos[i] = wire.ProjectToDTO(proj)
		}
		reply = &wire.GetProjectsList{Projects: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
