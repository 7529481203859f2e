package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func TestStartTimeEntryRejectsSecondRunningTimer(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	_, err := h.StartTimeEntry(ctxAsUser("user-1"), &wire.StartTimeEntryRequest{WorkItemID: item.ID, Description: "working"})
	require.NoError(t, err)

	_, err = h.StartTimeEntry(ctxAsUser("user-1"), &wire.StartTimeEntryRequest{WorkItemID: item.ID, Description: "still working"})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestStopTimeEntryComputesDuration(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	started, err := h.StartTimeEntry(ctxAsUser("user-1"), &wire.StartTimeEntryRequest{WorkItemID: item.ID, Description: "working"})
	require.NoError(t, err)
	entry := started.(*wire.StartTimeEntryResponse).TimeEntry

	stopped, err := h.StopTimeEntry(ctxAsUser("user-1"), &wire.StopTimeEntryRequest{ID: entry.ID})
	require.NoError(t, err)
	result := stopped.(*wire.StopTimeEntryResponse).TimeEntry
	require.NotNil(t, result.EndedAt)
	require.NotNil(t, result.DurationSeconds)
	require.GreaterOrEqual(t, *result.DurationSeconds, int64(0))
}

func TestStopTimeEntryRejectsNonOwner(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	started, err := h.StartTimeEntry(ctxAsUser("owner"), &wire.StartTimeEntryRequest{WorkItemID: item.ID})
	require.NoError(t, err)
	entry := started.(*wire.StartTimeEntryResponse).TimeEntry

	_, err = h.StopTimeEntry(ctxAsUser("someone-else"), &wire.StopTimeEntryRequest{ID: entry.ID})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeForbidden, werr.Code)
}

func TestStopTimeEntryRejectsAlreadyStopped(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	started, err := h.StartTimeEntry(ctxAsUser("user-1"), &wire.StartTimeEntryRequest{WorkItemID: item.ID})
	require.NoError(t, err)
	entry := started.(*wire.StartTimeEntryResponse).TimeEntry

	_, err = h.StopTimeEntry(ctxAsUser("user-1"), &wire.StopTimeEntryRequest{ID: entry.ID})
	require.NoError(t, err)

	_, err = h.StopTimeEntry(ctxAsUser("user-1"), &wire.StopTimeEntryRequest{ID: entry.ID})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestUpdateTimeEntryDescription(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	started, err := h.StartTimeEntry(ctxAsUser("user-1"), &wire.StartTimeEntryRequest{WorkItemID: item.ID, Description: "first"})
	require.NoError(t, err)
	entry := started.(*wire.StartTimeEntryResponse).TimeEntry

	reply, err := h.UpdateTimeEntry(ctxAsUser("user-1"), &wire.UpdateTimeEntryRequest{ID: entry.ID, Description: "second"})
	require.NoError(t, err)
	require.Equal(t, "second", reply.(*wire.UpdateTimeEntryResponse).TimeEntry.Description)
}

func TestDeleteTimeEntryByOwnerSucceeds(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	started, err := h.StartTimeEntry(ctxAsUser("user-1"), &wire.StartTimeEntryRequest{WorkItemID: item.ID})
	require.NoError(t, err)
	entry := started.(*wire.StartTimeEntryResponse).TimeEntry

	reply, err := h.DeleteTimeEntry(ctxAsUser("user-1"), &wire.DeleteTimeEntryRequest{ID: entry.ID})
	require.NoError(t, err)
	require.Equal(t, entry.ID, reply.(*wire.DeleteTimeEntryResponse).ID)
}
