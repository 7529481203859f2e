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

// CreateComment implements the CreateCommentRequest handler (spec §4.6.3):
// a flat, non-threaded note attached to a work item.
func (h *Handlers) CreateComment(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.CreateCommentRequest)

	if verr := h.validator.UUID("work_item_id", req.WorkItemID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Comment("content", req.Content); verr != nil {
		return nil, verr
	}

	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "CreateComment", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
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

		now := time.Now()
		comment := &types.Comment{
			ID:         uuid.NewString(),
			WorkItemID: req.WorkItemID,
			Content:    req.Content,
			Audit:      types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: userID, UpdatedBy: userID},
		}
		if cerr := h.store.Comments().Create(ctx, tx, comment); cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "comment", comment.ID, types.ActionCreated, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Comment(types.ActionCreated, comment, item.ProjectID, nil)
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

// UpdateComment implements the UpdateCommentRequest handler. Comments carry
// no version field, so concurrent edits are last-write-wins; only the
// comment's author may edit it.
func (h *Handlers) UpdateComment(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.UpdateCommentRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.Comment("content", req.Content); verr != nil {
		return nil, verr
	}

	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "UpdateComment", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		comment, ferr := h.store.Comments().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("comment not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if comment.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("comment not found")
		}
		if comment.Audit.CreatedBy != userID {
			return txOutcome{}, wireerr.Forbidden("only the comment's author may edit it")
		}

		item, ferr := h.store.WorkItems().FindByID(ctx, tx, comment.WorkItemID)
		if ferr != nil {
			return txOutcome{}, dbops.Retriable(ferr)
		}

		tracker := changetracker.New()
		tracker.String("content", comment.Content, req.Content)
		changes := tracker.Changes()
		if len(changes) == 0 {
			env := response.Comment(types.ActionUpdated, comment, item.ProjectID, nil)
			return txOutcome{reply: env.Reply}, nil
		}
		comment.Content = req.Content

		now := time.Now()
		comment.Audit.UpdatedAt = now
		comment.Audit.UpdatedBy = userID
		if uerr := h.store.Comments().Update(ctx, tx, comment); uerr != nil {
			if uerr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("comment not found")
			}
			return txOutcome{}, dbops.Retriable(uerr)
		}

		var alEntry *types.ActivityLogEntry
		for _, c := range changes {
			entry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "comment", comment.ID, types.ActionUpdated, strp(c.FieldName), c.OldValue, c.NewValue, userID, now)
			if aerr != nil {
				return txOutcome{}, dbops.Retriable(aerr)
			}
			alEntry = entry
		}

		env := response.Comment(types.ActionUpdated, comment, item.ProjectID, changes)
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

// DeleteComment implements the DeleteCommentRequest handler: author-only,
// same as update.
func (h *Handlers) DeleteComment(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.DeleteCommentRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "DeleteComment", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		comment, ferr := h.store.Comments().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("comment not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if comment.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("comment not found")
		}
		if comment.Audit.CreatedBy != userID {
			return txOutcome{}, wireerr.Forbidden("only the comment's author may delete it")
		}

		item, ferr := h.store.WorkItems().FindByID(ctx, tx, comment.WorkItemID)
		if ferr != nil {
			return txOutcome{}, dbops.Retriable(ferr)
		}

		now := time.Now()
		if derr := h.store.Comments().SoftDelete(ctx, tx, comment.ID, now.UnixMilli()); derr != nil {
			if derr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("comment not found")
			}
			return txOutcome{}, dbops.Retriable(derr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, item.ProjectID, "comment", comment.ID, types.ActionDeleted, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Envelope{
			Reply:          &wire.DeleteCommentResponse{ID: comment.ID},
			Broadcast:      &wire.CommentDeleted{ID: comment.ID},
			BroadcastMsgID: response.NewBroadcastMessageID(),
			ProjectID:      item.ProjectID,
			WorkItemID:     comment.WorkItemID,
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

// GetComments implements the GetCommentsRequest list handler.
func (h *Handlers) GetComments(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetCommentsRequest)
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
		comments, lerr := h.store.Comments().FindByWorkItem(ctx, ex, req.WorkItemID)
		if lerr != nil {
			return dbops.Retriable(lerr)
		}
		dtos := make([]wire.CommentDTO, len(comments))
		for i, c := range comments {
			dtos[i] = wire.CommentToDTO(c)
		}
		reply = &wire.GetCommentsList{Comments: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
