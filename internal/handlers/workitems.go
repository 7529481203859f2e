package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/boardwire/boardwire/internal/authz"
	"github.com/boardwire/boardwire/internal/changetracker"
	"github.com/boardwire/boardwire/internal/dbops"
	"github.com/boardwire/boardwire/internal/hierarchy"
	"github.com/boardwire/boardwire/internal/response"
	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// CreateWorkItem implements the CreateWorkItemRequest handler (spec §4.6.1):
// validates the parent assignment against the hierarchy rules, allocates
// the project-scoped item_number and a fresh position, and inserts the row.
func (h *Handlers) CreateWorkItem(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.CreateWorkItemRequest)

	if verr := h.validator.UUID("project_id", req.ProjectID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.ItemType("item_type", req.ItemType); verr != nil {
		return nil, verr
	}
	itemType := types.ItemType(req.ItemType)
	if verr := h.validator.Title("title", req.Title); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Description("description", req.Description); verr != nil {
		return nil, verr
	}
	priority := req.Priority
	if priority == "" {
		priority = string(types.PriorityMedium)
	}
	if verr := h.validator.Priority("priority", priority); verr != nil {
		return nil, verr
	}
	if verr := h.validator.StoryPoints("story_points", req.StoryPoints); verr != nil {
		return nil, verr
	}
	if req.ParentID != nil {
		if verr := h.validator.OptionalUUID("parent_id", *req.ParentID); verr != nil {
			return nil, verr
		}
	}
	if req.AssigneeID != nil {
		if verr := h.validator.OptionalUUID("assignee_id", *req.AssigneeID); verr != nil {
			return nil, verr
		}
	}
	if req.SprintID != nil {
		if verr := h.validator.OptionalUUID("sprint_id", *req.SprintID); verr != nil {
			return nil, verr
		}
	}
	if itemType == types.ItemTypeEpic && req.ParentID != nil && *req.ParentID != "" {
		return nil, wireerr.Validation("parent_id", "epics cannot have a parent")
	}

	userID := userIDFrom(ctx)
	if aerr := h.authz.Check(ctx, userID, req.ProjectID, authz.PermissionWrite); aerr != nil {
		return nil, aerr
	}

	out, replayed, err := h.writeTransaction(ctx, "CreateWorkItem", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
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

		var parentID *string
		if req.ParentID != nil && *req.ParentID != "" {
			result, parent, herr := h.hierarchy.ValidateParent(ctx, tx, itemType, req.ProjectID, *req.ParentID)
			if herr != nil {
				return txOutcome{}, dbops.Retriable(herr)
			}
			switch result {
			case hierarchy.OK:
				parentID = &parent.ID
			case hierarchy.ParentNotFound:
				return txOutcome{}, wireerr.Validation("parent_id", "parent not found in this project")
			case hierarchy.ParentDeleted:
				return txOutcome{}, wireerr.Validation("parent_id", "parent is deleted")
			case hierarchy.WrongParentType:
				return txOutcome{}, wireerr.Validation("parent_id", "parent type is not compatible with item_type")
			}
		}

		itemNumber, nerr := h.store.Projects().GetAndIncrementWorkItemNumber(ctx, tx, req.ProjectID)
		if nerr != nil {
			return txOutcome{}, dbops.Retriable(nerr)
		}
		maxPos, merr := h.store.WorkItems().FindMaxPosition(ctx, tx, req.ProjectID, parentID)
		if merr != nil {
			return txOutcome{}, dbops.Retriable(merr)
		}

		now := time.Now()
		item := &types.WorkItem{
			ID:          uuid.NewString(),
			ItemType:    itemType,
			ParentID:    parentID,
			ProjectID:   req.ProjectID,
			Position:    maxPos + 1,
			Title:       req.Title,
			Description: req.Description,
			Status:      types.StatusBacklog,
			Priority:    types.Priority(priority),
			StoryPoints: req.StoryPoints,
			AssigneeID:  req.AssigneeID,
			SprintID:    req.SprintID,
			ItemNumber:  itemNumber,
			Version:     1,
			Audit:       types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: userID, UpdatedBy: userID},
		}
		if cerr := h.store.WorkItems().Create(ctx, tx, item); cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, req.ProjectID, "work_item", item.ID, types.ActionCreated, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.WorkItem(types.ActionCreated, item, project.Key, nil)
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

// UpdateWorkItem implements the UpdateWorkItemRequest handler (spec §4.6.1):
// optimistic-concurrency checked field update, including re-parenting with
// a cycle check via HierarchyValidator.IsDescendant.
func (h *Handlers) UpdateWorkItem(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.UpdateWorkItemRequest)

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
	if req.Status != nil {
		if verr := h.validator.ItemStatus("status", *req.Status); verr != nil {
			return nil, verr
		}
	}
	if req.Priority != nil {
		if verr := h.validator.Priority("priority", *req.Priority); verr != nil {
			return nil, verr
		}
	}
	if req.AssigneeID != nil {
		if verr := h.validator.OptionalUUID("assignee_id", *req.AssigneeID); verr != nil {
			return nil, verr
		}
	}
	if req.SprintID != nil {
		if verr := h.validator.OptionalUUID("sprint_id", *req.SprintID); verr != nil {
			return nil, verr
		}
	}
	if req.ParentID != nil {
		if verr := h.validator.OptionalUUID("parent_id", *req.ParentID); verr != nil {
			return nil, verr
		}
	}
	if verr := h.validator.StoryPoints("story_points", req.StoryPoints); verr != nil {
		return nil, verr
	}

	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "UpdateWorkItem", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		item, ferr := h.store.WorkItems().FindByID(ctx, tx, req.ID)
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
		if item.Version != req.ExpectedVersion {
			return txOutcome{}, wireerr.Conflict(item.Version)
		}

		project, perr := h.store.Projects().FindByID(ctx, tx, item.ProjectID)
		if perr != nil {
			return txOutcome{}, dbops.Retriable(perr)
		}

		tracker := changetracker.New()

		if req.Title != nil && *req.Title != item.Title {
			tracker.String("title", item.Title, *req.Title)
			item.Title = *req.Title
		}
		if req.Description != nil && *req.Description != item.Description {
			tracker.String("description", item.Description, *req.Description)
			item.Description = *req.Description
		}
		if req.Status != nil {
			newStatus := types.ItemStatus(*req.Status)
			if newStatus != item.Status {
				tracker.String("status", string(item.Status), string(newStatus))
				item.Status = newStatus
			}
		}
		if req.Priority != nil {
			newPriority := types.Priority(*req.Priority)
			if newPriority != item.Priority {
				tracker.String("priority", string(item.Priority), string(newPriority))
				item.Priority = newPriority
			}
		}
		if req.Position != nil && *req.Position != item.Position {
			tracker.Int64("position", item.Position, *req.Position)
			item.Position = *req.Position
		}
		if req.StoryPoints != nil {
			tracker.OptionalInt64("story_points", item.StoryPoints, req.StoryPoints)
			item.StoryPoints = req.StoryPoints
		}
		if req.AssigneeID != nil {
			newAssignee := emptyToNil(*req.AssigneeID)
			tracker.OptionalString("assignee_id", item.AssigneeID, newAssignee)
			item.AssigneeID = newAssignee
		}
		if req.SprintID != nil {
			newSprint := emptyToNil(*req.SprintID)
			tracker.OptionalString("sprint_id", item.SprintID, newSprint)
			item.SprintID = newSprint
		}

		if req.ParentID != nil {
			newParentID := emptyToNil(*req.ParentID)
			if !samePtr(item.ParentID, newParentID) {
				if newParentID == nil {
					tracker.OptionalString("parent_id", item.ParentID, nil)
					item.ParentID = nil
				} else {
					result, parent, herr := h.hierarchy.ValidateParent(ctx, tx, item.ItemType, item.ProjectID, *newParentID)
					if herr != nil {
						return txOutcome{}, dbops.Retriable(herr)
					}
					switch result {
					case hierarchy.ParentNotFound:
						return txOutcome{}, wireerr.Validation("parent_id", "parent not found in this project")
					case hierarchy.ParentDeleted:
						return txOutcome{}, wireerr.Validation("parent_id", "parent is deleted")
					case hierarchy.WrongParentType:
						return txOutcome{}, wireerr.Validation("parent_id", "parent type is not compatible with item_type")
					}
					isCycle, derr := h.hierarchy.IsDescendant(ctx, tx, item.ID, *newParentID)
					if derr != nil {
						return txOutcome{}, dbops.Retriable(derr)
					}
					if isCycle {
						return txOutcome{}, wireerr.Validation("parent_id", "would create a cycle")
					}
					tracker.OptionalString("parent_id", item.ParentID, &parent.ID)
					item.ParentID = &parent.ID
				}
			}
		}

		changes := tracker.Changes()
		if len(changes) == 0 {
			env := response.WorkItem(types.ActionUpdated, item, project.Key, nil)
			return txOutcome{reply: env.Reply, envelope: response.Envelope{}, activity: nil}, nil
		}

		now := time.Now()
		item.Audit.UpdatedAt = now
		item.Audit.UpdatedBy = userID

		if uerr := h.store.WorkItems().Update(ctx, tx, item); uerr != nil {
			if uerr == storage.ErrNotFound {
				current, cerr := h.store.WorkItems().FindByID(ctx, tx, req.ID)
				if cerr != nil {
					if cerr == storage.ErrNotFound {
						return txOutcome{}, wireerr.NotFound("work item not found")
					}
					return txOutcome{}, dbops.Retriable(cerr)
				}
				return txOutcome{}, wireerr.Conflict(current.Version)
			}
			return txOutcome{}, dbops.Retriable(uerr)
		}

		var alEntry *types.ActivityLogEntry
		for _, c := range changes {
			entry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "work_item", item.ID, types.ActionUpdated, strp(c.FieldName), c.OldValue, c.NewValue, userID, now)
			if aerr != nil {
				return txOutcome{}, dbops.Retriable(aerr)
			}
			alEntry = entry
		}

		env := response.WorkItem(types.ActionUpdated, item, project.Key, changes)
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

// DeleteWorkItem implements the DeleteWorkItemRequest handler (spec §4.6.1):
// a work item with non-deleted children cannot be deleted.
func (h *Handlers) DeleteWorkItem(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.DeleteWorkItemRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "DeleteWorkItem", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		item, ferr := h.store.WorkItems().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("work item not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if item.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("work item not found")
		}
		if aerr := h.authz.Check(ctx, userID, item.ProjectID, authz.PermissionDelete); aerr != nil {
			return txOutcome{}, aerr
		}

		children, cerr := h.store.WorkItems().FindChildren(ctx, tx, item.ID)
		if cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}
		if len(children) > 0 {
			return txOutcome{}, wireerr.DeleteBlocked(int64(len(children)), "work item has non-deleted children")
		}

		now := time.Now()
		if derr := h.store.WorkItems().SoftDelete(ctx, tx, item.ID, userID, now.UnixMilli()); derr != nil {
			if derr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("work item not found")
			}
			return txOutcome{}, dbops.Retriable(derr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "work_item", item.ID, types.ActionDeleted, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Envelope{
			Reply:          &wire.DeleteWorkItemResponse{ID: item.ID},
			Broadcast:      &wire.WorkItemDeleted{ID: item.ID},
			BroadcastMsgID: response.NewBroadcastMessageID(),
			ProjectID:      item.ProjectID,
			WorkItemID:     item.ID,
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

// GetWorkItem implements the GetWorkItemRequest handler.
func (h *Handlers) GetWorkItem(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetWorkItemRequest)
	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	var reply wire.Payload
	err := h.readOnly(ctx, func(ctx context.Context, ex storage.Executor) error {
		item, ferr := h.store.WorkItems().FindByID(ctx, ex, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return wireerr.NotFound("work item not found")
			}
			return dbops.Retriable(ferr)
		}
		if item.IsDeleted() {
			return wireerr.NotFound("work item not found")
		}
		if aerr := h.authz.Check(ctx, userID, item.ProjectID, authz.PermissionRead); aerr != nil {
			return aerr
		}
		project, perr := h.store.Projects().FindByID(ctx, ex, item.ProjectID)
		if perr != nil {
			return dbops.Retriable(perr)
		}
		reply = &wire.GetWorkItemResponse{WorkItem: wire.WorkItemToDTO(item, project.Key)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// GetWorkItems implements the GetWorkItemsRequest list handler.
func (h *Handlers) GetWorkItems(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetWorkItemsRequest)
	if verr := h.validator.UUID("project_id", req.ProjectID); verr != nil {
		return nil, verr
	}
	if req.ItemType != nil {
		if verr := h.validator.ItemType("item_type", *req.ItemType); verr != nil {
			return nil, verr
		}
	}
	if req.Status != nil {
		if verr := h.validator.ItemStatus("status", *req.Status); verr != nil {
			return nil, verr
		}
	}
	userID := userIDFrom(ctx)

	filter := storage.WorkItemFilter{
		ParentID:    req.ParentID,
		OrphansOnly: req.OrphansOnly,
		IncludeDone: req.IncludeDone,
	}
	if req.ItemType != nil {
		it := types.ItemType(*req.ItemType)
		filter.ItemType = &it
	}
	if req.Status != nil {
		st := types.ItemStatus(*req.Status)
		filter.Status = &st
	}

	var reply wire.Payload
	err := h.readOnly(ctx, func(ctx context.Context, ex storage.Executor) error {
		if aerr := h.authz.Check(ctx, userID, req.ProjectID, authz.PermissionRead); aerr != nil {
			return aerr
		}
		project, perr := h.store.Projects().FindByID(ctx, ex, req.ProjectID)
		if perr != nil {
			if perr == storage.ErrNotFound {
				return wireerr.NotFound("project not found")
			}
			return dbops.Retriable(perr)
		}
		items, ierr := h.store.WorkItems().FindByProject(ctx, ex, req.ProjectID, filter)
		if ierr != nil {
			return dbops.Retriable(ierr)
		}
		dtos := make([]wire.WorkItemDTO, len(items))
		for i, w := range items {
			dtos[i] = wire.WorkItemToDTO(w, project.Key)
		}
		reply = &wire.GetWorkItemsList{WorkItems: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
