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

// maxDependencyDepth bounds the cycle-detection walk over the "blocks"
// graph, mirroring the ancestry walk's depth bound in internal/hierarchy.
const maxDependencyDepth = 64

// CreateDependency implements the CreateDependencyRequest handler (spec
// §4.6.5): rejects self-references, duplicate pairs, and cycles in the
// "blocks" graph.
func (h *Handlers) CreateDependency(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.CreateDependencyRequest)

	if verr := h.validator.UUID("blocking_item_id", req.BlockingItemID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.UUID("blocked_item_id", req.BlockedItemID); verr != nil {
		return nil, verr
	}
	if verr := h.validator.DependencyType("type", req.Type); verr != nil {
		return nil, verr
	}
	if req.BlockingItemID == req.BlockedItemID {
		return nil, wireerr.Validation("blocked_item_id", "a work item cannot depend on itself")
	}
	depType := types.DependencyType(req.Type)

	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "CreateDependency", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		blocking, ferr := h.store.WorkItems().FindByID(ctx, tx, req.BlockingItemID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("blocking work item not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if blocking.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("blocking work item not found")
		}
		blocked, ferr := h.store.WorkItems().FindByID(ctx, tx, req.BlockedItemID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("blocked work item not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if blocked.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("blocked work item not found")
		}
		if aerr := h.authz.Check(ctx, userID, blocking.ProjectID, authz.PermissionWrite); aerr != nil {
			return txOutcome{}, aerr
		}

		existing, eerr := h.store.Dependencies().FindByBlocking(ctx, tx, req.BlockingItemID)
		if eerr != nil {
			return txOutcome{}, dbops.Retriable(eerr)
		}
		for _, d := range existing {
			if d.BlockedItemID == req.BlockedItemID && d.Type == depType {
				return txOutcome{}, wireerr.Validation("blocked_item_id", "this dependency already exists")
			}
		}
		// The pair is unordered: A-blocks-B and B-blocks-A are the same
		// duplicate, so also check the reverse direction.
		reverse, rerr := h.store.Dependencies().FindByBlocked(ctx, tx, req.BlockingItemID)
		if rerr != nil {
			return txOutcome{}, dbops.Retriable(rerr)
		}
		for _, d := range reverse {
			if d.BlockingItemID == req.BlockedItemID && d.Type == depType {
				return txOutcome{}, wireerr.Validation("blocked_item_id", "this dependency already exists")
			}
		}

		if depType == types.DependencyBlocks {
			cyclic, cerr := wouldCreateCycle(ctx, tx, h.store, req.BlockingItemID, req.BlockedItemID)
			if cerr != nil {
				return txOutcome{}, dbops.Retriable(cerr)
			}
			if cyclic {
				return txOutcome{}, wireerr.Validation("blocked_item_id", "would create a dependency cycle")
			}
		}

		now := time.Now()
		dep := &types.Dependency{
			ID:             uuid.NewString(),
			BlockingItemID: req.BlockingItemID,
			BlockedItemID:  req.BlockedItemID,
			Type:           depType,
			Audit:          types.Audit{CreatedAt: now, UpdatedAt: now, CreatedBy: userID, UpdatedBy: userID},
		}
		if cerr := h.store.Dependencies().Create(ctx, tx, dep); cerr != nil {
			return txOutcome{}, dbops.Retriable(cerr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, blocking.ProjectID, "dependency", dep.ID, types.ActionCreated, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Dependency(types.ActionCreated, dep, blocking.ProjectID)
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

// DeleteDependency implements the DeleteDependencyRequest handler.
func (h *Handlers) DeleteDependency(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.DeleteDependencyRequest)

	if verr := h.validator.UUID("id", req.ID); verr != nil {
		return nil, verr
	}
	userID := userIDFrom(ctx)

	out, replayed, err := h.writeTransaction(ctx, "DeleteDependency", func(ctx context.Context, tx storage.Tx) (txOutcome, error) {
		dep, ferr := h.store.Dependencies().FindByID(ctx, tx, req.ID)
		if ferr != nil {
			if ferr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("dependency not found")
			}
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if dep.IsDeleted() {
			return txOutcome{}, wireerr.NotFound("dependency not found")
		}

		blocking, ferr := h.store.WorkItems().FindByID(ctx, tx, dep.BlockingItemID)
		if ferr != nil {
			return txOutcome{}, dbops.Retriable(ferr)
		}
		if aerr := h.authz.Check(ctx, userID, blocking.ProjectID, authz.PermissionDelete); aerr != nil {
			return txOutcome{}, aerr
		}

		now := time.Now()
		if derr := h.store.Dependencies().SoftDelete(ctx, tx, dep.ID, now.UnixMilli()); derr != nil {
			if derr == storage.ErrNotFound {
				return txOutcome{}, wireerr.NotFound("dependency not found")
			}
			return txOutcome{}, dbops.Retriable(derr)
		}

		alEntry, aerr := h.appendActivityLog(ctx, tx, blocking.ProjectID, "dependency", dep.ID, types.ActionDeleted, nil, nil, nil, userID, now)
		if aerr != nil {
			return txOutcome{}, dbops.Retriable(aerr)
		}

		env := response.Dependency(types.ActionDeleted, dep, blocking.ProjectID)
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

// GetDependencies implements the GetDependenciesRequest list handler:
// every dependency touching workItemID, on either side of the edge.
func (h *Handlers) GetDependencies(ctx context.Context, p wire.Payload) (wire.Payload, error) {
	req := p.(*wire.GetDependenciesRequest)
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

		blocking, berr := h.store.Dependencies().FindByBlocking(ctx, ex, req.WorkItemID)
		if berr != nil {
			return dbops.Retriable(berr)
		}
		blocked, berr := h.store.Dependencies().FindByBlocked(ctx, ex, req.WorkItemID)
		if berr != nil {
			return dbops.Retriable(berr)
		}

		all := make([]*types.Dependency, 0, len(blocking)+len(blocked))
		all = append(all, blocking...)
		all = append(all, blocked...)
		dtos := make([]wire.DependencyDTO, len(all))
		for i, d := range all {
			dtos[i] = wire.DependencyToDTO(d)
		}
		reply = &wire.GetDependenciesList{Dependencies: dtos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// wouldCreateCycle reports whether adding a "blocks" edge blockingID ->
// blockedID would create a cycle: a breadth-first walk forward from
// blockedID along existing "blocks" edges that reaches blockingID means
// blockedID already (transitively) blocks blockingID.
func wouldCreateCycle(ctx context.Context, ex storage.Executor, store storage.Store, blockingID, blockedID string) (bool, error) {
	visited := map[string]bool{blockedID: true}
	frontier := []string{blockedID}

	for depth := 0; depth < maxDependencyDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			if id == blockingID {
				return true, nil
			}
			deps, err := store.Dependencies().FindByBlocking(ctx, ex, id)
			if err != nil {
				return false, err
			}
			for _, d := range deps {
				if d.Type != types.DependencyBlocks || visited[d.BlockedItemID] {
					continue
				}
				visited[d.BlockedItemID] = true
				next = append(next, d.BlockedItemID)
			}
		}
		frontier = next
	}
	return false, nil
}
