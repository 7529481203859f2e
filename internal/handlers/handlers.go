// Package handlers implements EntityHandlers (spec §4.6): the business
// rules for work items, sprints, comments, time entries, dependencies and
// projects, each following the common skeleton in spec §4.6 — validate,
// parse identifiers, idempotency probe, authorize, check invariants,
// mutate+log+record in one transaction, build reply+broadcast, fan out.
package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/boardwire/boardwire/internal/authz"
	"github.com/boardwire/boardwire/internal/broadcast"
	"github.com/boardwire/boardwire/internal/dbops"
	"github.com/boardwire/boardwire/internal/hierarchy"
	"github.com/boardwire/boardwire/internal/logging"
	"github.com/boardwire/boardwire/internal/reqctx"
	"github.com/boardwire/boardwire/internal/response"
	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/subscription"
	"github.com/boardwire/boardwire/internal/types"
	"github.com/boardwire/boardwire/internal/validate"
	"github.com/boardwire/boardwire/internal/wire"
)

// Handlers bundles the collaborators every entity handler depends on.
type Handlers struct {
	store     storage.Store
	ops       *dbops.Ops
	validator *validate.Validator
	authz     authz.Checker
	hierarchy *hierarchy.Validator
	fanout    *broadcast.Fanout
	logger    *logging.Logger
}

// New builds a Handlers bundle.
func New(store storage.Store, ops *dbops.Ops, validator *validate.Validator, checker authz.Checker, hierarchyV *hierarchy.Validator, fanout *broadcast.Fanout, logger *logging.Logger) *Handlers {
	return &Handlers{store: store, ops: ops, validator: validator, authz: checker, hierarchy: hierarchyV, fanout: fanout, logger: logger}
}

// handlerName identifies the idempotency record's owning handler, purely
// for operator diagnostics — it plays no role in replay matching, which
// is keyed on message_id alone.
type handlerName string

// idempotencyProbe looks up messageID in the idempotency store. If found,
// it decodes the stored reply and returns it; ok is false when no record
// exists and the caller should proceed with normal execution.
func (h *Handlers) idempotencyProbe(ctx context.Context, ex storage.Executor, messageID string) (wire.Payload, bool, error) {
	rec, err := h.store.Idempotency().FindByMessageID(ctx, ex, messageID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	env, err := wire.DecodeEnvelope(rec.Response)
	if err != nil {
		return nil, false, err
	}
	payload, err := wire.Unmarshal(env)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// recordIdempotency serializes reply and writes the IdempotencyRecord
// inside the same transaction as the entity mutation, per spec §4.6 step 6c.
func (h *Handlers) recordIdempotency(ctx context.Context, ex storage.Executor, messageID string, name handlerName, reply wire.Payload, when time.Time) error {
	frame, err := wire.Encode(messageID, when.UnixMilli(), reply)
	if err != nil {
		return err
	}
	return h.store.Idempotency().Create(ctx, ex, &types.IdempotencyRecord{
		MessageID: messageID,
		Handler:   string(name),
		Response:  frame,
		CreatedAt: when,
	})
}

// appendActivityLog writes one ActivityLog row inside ex's transaction.
func (h *Handlers) appendActivityLog(ctx context.Context, ex storage.Executor, projectID, entityType, entityID string, action types.ActivityAction, fieldName, oldValue, newValue *string, userID string, when time.Time) (*types.ActivityLogEntry, error) {
	entry := &types.ActivityLogEntry{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
		UserID:     userID,
		Timestamp:  when,
	}
	if err := h.store.ActivityLog().Create(ctx, ex, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// broadcastEnvelope fans env's broadcast payload out to subscribers and
// logs, but never fails, the activity-log broadcast alongside it. A
// failure to fan out never fails the command: the write has already
// committed (spec §4.6 step 8).
func (h *Handlers) broadcastEnvelope(ctx context.Context, env response.Envelope, activityEntry *types.ActivityLogEntry, excludeConnID string, when time.Time) {
	if env.Broadcast != nil {
		h.fanout.Send(env.BroadcastMsgID, when.UnixMilli(), env.Broadcast, subscription.Event{
			ProjectID:  env.ProjectID,
			WorkItemID: env.WorkItemID,
			SprintID:   env.SprintID,
		}, excludeConnID)
	}
	if activityEntry != nil {
		alEnv := response.ActivityLog(activityEntry)
		h.fanout.Send(alEnv.BroadcastMsgID, when.UnixMilli(), alEnv.Broadcast, subscription.Event{ProjectID: alEnv.ProjectID}, "")
	}
}

// txOutcome is what a writeTransaction callback hands back for the
// caller to turn into a reply and a broadcast.
type txOutcome struct {
	reply    wire.Payload
	envelope response.Envelope
	activity *types.ActivityLogEntry
}

// writeTransaction runs fn inside one DB transaction guarded by the write
// breaker, implementing the common skeleton's idempotency-probe-then-
// commit shape (spec §4.6 steps 3 and 6): a replayed message_id short
// circuits to the stored reply without touching fn at all; otherwise fn's
// result is recorded as the new idempotency record before commit. replayed
// tells the caller whether to skip fanning the broadcast back out, since a
// replayed command already broadcast the first time it executed.
func (h *Handlers) writeTransaction(ctx context.Context, name handlerName, fn func(ctx context.Context, tx storage.Tx) (txOutcome, error)) (txOutcome, bool, error) {
	messageID := messageIDFrom(ctx)
	var out txOutcome
	replayed := false

	err := h.ops.Write(ctx, func(ctx context.Context) error {
		tx, err := h.store.BeginTx(ctx)
		if err != nil {
			return dbops.Retriable(err)
		}
		committed := false
		defer func() {
			if !committed {
				tx.Rollback()
			}
		}()

		if reply, found, err := h.idempotencyProbe(ctx, tx, messageID); err != nil {
			return dbops.Retriable(err)
		} else if found {
			if err := tx.Commit(); err != nil {
				return dbops.Retriable(err)
			}
			committed = true
			out = txOutcome{reply: reply}
			replayed = true
			return nil
		}

		result, err := fn(ctx, tx)
		if err != nil {
			return err
		}

		if err := h.recordIdempotency(ctx, tx, messageID, name, result.reply, time.Now()); err != nil {
			return dbops.Retriable(err)
		}
		if err := tx.Commit(); err != nil {
			return dbops.Retriable(err)
		}
		committed = true
		out = result
		return nil
	})
	if err != nil {
		return txOutcome{}, false, err
	}
	return out, replayed, nil
}

// readOnly runs fn inside a transaction guarded by the read breaker and
// retry policy, rolling back unconditionally — read handlers never mutate.
func (h *Handlers) readOnly(ctx context.Context, fn func(ctx context.Context, ex storage.Executor) error) error {
	return h.ops.Read(ctx, func(ctx context.Context) error {
		tx, err := h.store.BeginTx(ctx)
		if err != nil {
			return dbops.Retriable(err)
		}
		defer tx.Rollback()
		return fn(ctx, tx)
	})
}

func userIDFrom(ctx context.Context) string {
	rc := reqctx.FromContext(ctx)
	if rc == nil {
		return ""
	}
	return rc.UserID
}

func connectionIDFrom(ctx context.Context) string {
	rc := reqctx.FromContext(ctx)
	if rc == nil {
		return ""
	}
	return rc.ConnectionID
}

func messageIDFrom(ctx context.Context) string {
	rc := reqctx.FromContext(ctx)
	if rc == nil {
		return uuid.NewString()
	}
	return rc.MessageID
}

// serializeValue renders a value for ActivityLog old/new columns as its
// JSON encoding (a string keeps its quotes): nil denotes absence, and a
// value that fails to encode is rendered as an empty string.
func serializeValue(v any) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		s := ""
		return &s
	}
	s := string(b)
	return &s
}

func strp(s string) *string { return &s }

// ptrOrEmpty derefs an optional string for wire fields where empty string
// denotes "unset" rather than "absent" (assignee_id, sprint_id, parent_id).
func ptrOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// emptyToNil converts a wire "" sentinel (meaning "clear this field") to
// a nil pointer for storage.
func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
