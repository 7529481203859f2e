package changetracker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringOnlyRecordsWhenChanged(t *testing.T) {
	tr := New()
	tr.String("title", "same", "same")
	require.Empty(t, tr.Changes())

	tr.String("title", "old", "new")
	changes := tr.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, "title", changes[0].FieldName)
	require.Equal(t, "old", *changes[0].OldValue)
	require.Equal(t, "new", *changes[0].NewValue)
}

func TestOptionalStringClearedRecordsEmptyNewValue(t *testing.T) {
	tr := New()
	old := "assignee-1"
	tr.OptionalString("assignee_id", &old, nil)

	changes := tr.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, "assignee-1", *changes[0].OldValue)
	require.Equal(t, "", *changes[0].NewValue)
}

func TestInt64OnlyRecordsWhenChanged(t *testing.T) {
	tr := New()
	tr.Int64("story_points", 5, 5)
	require.Empty(t, tr.Changes())

	tr.Int64("story_points", 5, 8)
	changes := tr.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, "5", *changes[0].OldValue)
	require.Equal(t, "8", *changes[0].NewValue)
}

func TestBoolRecordsTrueFalseStrings(t *testing.T) {
	tr := New()
	tr.Bool("archived", false, true)
	changes := tr.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, "false", *changes[0].OldValue)
	require.Equal(t, "true", *changes[0].NewValue)
}

func TestUUIDLowercasesBothSides(t *testing.T) {
	tr := New()
	tr.UUID("sprint_id", "ABC-123", "abc-123")
	require.Empty(t, tr.Changes(), "lowercased values are equal, no change expected")

	tr.UUID("sprint_id", "ABC-123", "DEF-456")
	changes := tr.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, "abc-123", *changes[0].OldValue)
	require.Equal(t, "def-456", *changes[0].NewValue)
}

func TestToDTOsRendersAbsentAsEmptyString(t *testing.T) {
	dtos := ToDTOs([]FieldChange{{FieldName: "parent_id", OldValue: nil, NewValue: strPtrHelper("epic-1")}})
	require.Len(t, dtos, 1)
	require.Equal(t, "", dtos[0].OldValue)
	require.Equal(t, "epic-1", dtos[0].NewValue)
}

func strPtrHelper(s string) *string { return &s }
