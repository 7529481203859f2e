package handlers

import (
	"context"

	"github.com/boardwire/boardwire/internal/authz"
	"github.com/boardwire/boardwire/internal/dbops"
	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// defaultActivityLogLimit caps the page size when the caller leaves Limit
// unset; maxActivityLogLimit caps it even when the caller asks for more.
const (
	defaultActivityLogLimit = 100
	maxActivityLogLimit     = 500
)

// GetActivityLog implements the GetActivityLogRequest handler (spec
// §4.6.7): a project-scoped, since-cursor page over the append-only
// activity trail.
func (h *Handlers) GetActivityLog(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetActivityLogRequest)

	if verr := h.validator.UUID("project_id", req.ProjectID); verr != nil {
		return nil, verr
	}
	if req.Limit < 0 {
		return nil, wireerr.Validation("limit", "must not be negative")
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultActivityLogLimit
	}
	if limit > maxActivityLogLimit {
		limit = maxActivityLogLimit
	}

	userID := userIDFrom(ctx)

	var reply wire.Payload
	err := h.readOnly(ctx, func(ctx context.Context, ex storage.Executor) error {
		if aerr := h.authz.Check(ctx, userID, req.ProjectID, authz.PermissionRead); aerr != nil {
			return aerr
		}
		entries, lerr := h.store.ActivityLog().FindSince(ctx, ex, req.ProjectID, req.SinceEpochMillis, limit)
		if lerr != nil {
			return dbops.Retriable(lerr)
		}
		dtos := make([]wire.ActivityLogDTO, len(entries))
		for i, e := range entries {
			dtos[i] = wire.ActivityLogToDTO(e)
		}
		reply = &wire.GetActivityLogList{Entries: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}
