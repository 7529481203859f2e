package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func TestGetActivityLogRecordsProjectAndWorkItemWrites(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	createTestWorkItem(t, h, proj.ID, "Item")

	reply, err := h.GetActivityLog(ctxAsUser("user-1"), &wire.GetActivityLogRequest{ProjectID: proj.ID})
	require.NoError(t, err)
	entries := reply.(*wire.GetActivityLogList).Entries
	require.Len(t, entries, 2, "one entry for the project create, one for the work item create")
}

func TestGetActivityLogRejectsNegativeLimit(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	_, err := h.GetActivityLog(ctxAsUser("user-1"), &wire.GetActivityLogRequest{ProjectID: proj.ID, Limit: -1})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeValidation, werr.Code)
}

func TestGetActivityLogCapsLimitAtMax(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	reply, err := h.GetActivityLog(ctxAsUser("user-1"), &wire.GetActivityLogRequest{ProjectID: proj.ID, Limit: maxActivityLogLimit + 100})
	require.NoError(t, err)
	require.NotNil(t, reply)
}

func TestGetActivityLogSinceCursorExcludesOlderEntries(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)

	reply, err := h.GetActivityLog(ctxAsUser("user-1"), &wire.GetActivityLogRequest{ProjectID: proj.ID, SinceEpochMillis: futureEpochMillis()})
	require.NoError(t, err)
	require.Len(t, reply.(*wire.GetActivityLogList).Entries, 0)
}

func futureEpochMillis() int64 {
	return 1 << 62
}
