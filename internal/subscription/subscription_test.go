package subscription

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldReceiveByProject(t *testing.T) {
	f := New()
	f.Subscribe([]string{"proj-1"}, nil, nil)

	require.True(t, f.ShouldReceive(Event{ProjectID: "proj-1"}))
	require.False(t, f.ShouldReceive(Event{ProjectID: "proj-2"}))
}

func TestShouldReceiveByWorkItemFallsBackToProjectMatch(t *testing.T) {
	f := New()
	f.Subscribe(nil, []string{"item-1"}, nil)

	require.True(t, f.ShouldReceive(Event{ProjectID: "proj-1", WorkItemID: "item-1"}))
	require.False(t, f.ShouldReceive(Event{ProjectID: "proj-1", WorkItemID: "item-2"}))

	f.Subscribe([]string{"proj-9"}, nil, nil)
	require.True(t, f.ShouldReceive(Event{ProjectID: "proj-9", WorkItemID: "item-2"}))
}

func TestShouldReceiveBySprint(t *testing.T) {
	f := New()
	f.Subscribe(nil, nil, []string{"sprint-1"})

	require.True(t, f.ShouldReceive(Event{ProjectID: "proj-1", SprintID: "sprint-1"}))
	require.False(t, f.ShouldReceive(Event{ProjectID: "proj-1", SprintID: "sprint-2"}))
}

func TestUnsubscribeRemovesInterest(t *testing.T) {
	f := New()
	f.Subscribe([]string{"proj-1"}, []string{"item-1"}, []string{"sprint-1"})
	f.Unsubscribe([]string{"proj-1"}, nil, nil)

	require.False(t, f.ShouldReceive(Event{ProjectID: "proj-1"}))
	require.True(t, f.ShouldReceive(Event{ProjectID: "proj-1", WorkItemID: "item-1"}))
}

func TestEmptyFilterNeverMatches(t *testing.T) {
	f := New()
	require.False(t, f.ShouldReceive(Event{ProjectID: "proj-1"}))
}
