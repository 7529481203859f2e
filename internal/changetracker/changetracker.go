// Package changetracker computes the field-level diff between the prior
// and post state of an entity (spec §4.7), feeding both the ActivityLog
// row and the broadcast event's change list.
package changetracker

import (
	"strconv"
	"strings"

	"github.com/boardwire/boardwire/internal/wire"
)

// FieldChange records one field's transition. Every Tracker method sets
// both OldValue and NewValue: an optional field with no value on one side
// (a cleared assignee_id, sprint_id or parent_id, an unset story_points)
// is recorded as a pointer to an empty string, so a Tracker never emits
// nil. ToDTOs still renders a nil value as an empty string.
type FieldChange struct {
	FieldName string
	OldValue  *string
	NewValue  *string
}

// Tracker accumulates FieldChanges for one entity update.
type Tracker struct {
	changes []FieldChange
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Changes returns the accumulated FieldChanges in the order they were recorded.
func (t *Tracker) Changes() []FieldChange {
	return t.changes
}

// String records a plain string field change if old != new.
func (t *Tracker) String(field, old, new string) {
	if old == new {
		return
	}
	t.changes = append(t.changes, FieldChange{FieldName: field, OldValue: strPtr(old), NewValue: strPtr(new)})
}

// OptionalString records a change to an optional string field (e.g.
// assignee_id, sprint_id, parent_id), where either side may be absent.
// Empty string denotes "cleared", matching the wire convention that an
// empty-string update value clears the field.
func (t *Tracker) OptionalString(field string, old, new *string) {
	oldVal := derefOrEmpty(old)
	newVal := derefOrEmpty(new)
	if oldVal == newVal {
		return
	}
	t.changes = append(t.changes, FieldChange{FieldName: field, OldValue: strPtr(oldVal), NewValue: strPtr(newVal)})
}

// Int64 records a change to an integer field.
func (t *Tracker) Int64(field string, old, new int64) {
	if old == new {
		return
	}
	t.changes = append(t.changes, FieldChange{
		FieldName: field,
		OldValue:  strPtr(strconv.FormatInt(old, 10)),
		NewValue:  strPtr(strconv.FormatInt(new, 10)),
	})
}

// OptionalInt64 records a change to an optional integer field.
func (t *Tracker) OptionalInt64(field string, old, new *int64) {
	oldVal := ""
	if old != nil {
		oldVal = strconv.FormatInt(*old, 10)
	}
	newVal := ""
	if new != nil {
		newVal = strconv.FormatInt(*new, 10)
	}
	if oldVal == newVal {
		return
	}
	t.changes = append(t.changes, FieldChange{FieldName: field, OldValue: strPtr(oldVal), NewValue: strPtr(newVal)})
}

// Bool records a change to a boolean field, serialized as "true"/"false".
func (t *Tracker) Bool(field string, old, new bool) {
	if old == new {
		return
	}
	t.changes = append(t.changes, FieldChange{
		FieldName: field,
		OldValue:  strPtr(strconv.FormatBool(old)),
		NewValue:  strPtr(strconv.FormatBool(new)),
	})
}

// UUID records a change to a UUID-valued field, lowercasing both sides
// per the documented serialization rule.
func (t *Tracker) UUID(field, old, new string) {
	t.String(field, strings.ToLower(old), strings.ToLower(new))
}

// ToDTOs converts the accumulated changes to their wire representation.
// Absent (nil) values are rendered as empty strings on the wire.
func ToDTOs(changes []FieldChange) []wire.FieldChangeDTO {
	dtos := make([]wire.FieldChangeDTO, len(changes))
	for i, c := range changes {
		dtos[i] = wire.FieldChangeDTO{
			FieldName: c.FieldName,
			OldValue:  derefOrEmpty(c.OldValue),
			NewValue:  derefOrEmpty(c.NewValue),
		}
	}
	return dtos
}

func strPtr(s string) *string { return &s }

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
