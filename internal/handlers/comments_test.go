package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boardwire/boardwire/internal/wire"
	"github.com/boardwire/boardwire/internal/wireerr"
)

func TestCreateCommentThenList(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	reply, err := h.CreateComment(ctxAsUser("user-1"), &wire.CreateCommentRequest{WorkItemID: item.ID, Content: "first note"})
	require.NoError(t, err)
	comment := reply.(*wire.CreateCommentResponse).Comment
	require.Equal(t, "first note", comment.Content)
	require.Equal(t, "user-1", comment.CreatedBy)

	list, err := h.GetComments(ctxAsUser("user-1"), &wire.GetCommentsRequest{WorkItemID: item.ID})
	require.NoError(t, err)
	require.Len(t, list.(*wire.GetCommentsList).Comments, 1)
}

func TestUpdateCommentRejectsNonAuthor(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	created, err := h.CreateComment(ctxAsUser("author"), &wire.CreateCommentRequest{WorkItemID: item.ID, Content: "first note"})
	require.NoError(t, err)
	comment := created.(*wire.CreateCommentResponse).Comment

	_, err = h.UpdateComment(ctxAsUser("someone-else"), &wire.UpdateCommentRequest{ID: comment.ID, Content: "edited"})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeForbidden, werr.Code)
}

func TestUpdateCommentByAuthorSucceeds(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	created, err := h.CreateComment(ctxAsUser("author"), &wire.CreateCommentRequest{WorkItemID: item.ID, Content: "first note"})
	require.NoError(t, err)
	comment := created.(*wire.CreateCommentResponse).Comment

	reply, err := h.UpdateComment(ctxAsUser("author"), &wire.UpdateCommentRequest{ID: comment.ID, Content: "edited"})
	require.NoError(t, err)
	updated := reply.(*wire.UpdateCommentResponse)
	require.Equal(t, "edited", updated.Comment.Content)
	require.Len(t, updated.Changes, 1)
}

func TestDeleteCommentRejectsNonAuthor(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	created, err := h.CreateComment(ctxAsUser("author"), &wire.CreateCommentRequest{WorkItemID: item.ID, Content: "first note"})
	require.NoError(t, err)
	comment := created.(*wire.CreateCommentResponse).Comment

	_, err = h.DeleteComment(ctxAsUser("someone-else"), &wire.DeleteCommentRequest{ID: comment.ID})
	var werr *wireerr.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wireerr.CodeForbidden, werr.Code)
}

func TestDeleteCommentByAuthorSucceeds(t *testing.T) {
	h := newTestHandlers(t)
	proj := createTestProject(t, h)
	item := createTestWorkItem(t, h, proj.ID, "Item")

	created, err := h.CreateComment(ctxAsUser("author"), &wire.CreateCommentRequest{WorkItemID: item.ID, Content: "first note"})
	require.NoError(t, err)
	comment := created.(*wire.CreateCommentResponse).Comment

	reply, err := h.DeleteComment(ctxAsUser("author"), &wire.DeleteCommentRequest{ID: comment.ID})
	require.NoError(t, err)
	require.Equal(t, comment.ID, reply.(*wire.DeleteCommentResponse).ID)

	list, err := h.GetComments(ctxAsUser("author"), &wire.GetCommentsRequest{WorkItemID: item.ID})
	require.NoError(t, err)
	require.Len(t, list.(*wire.GetCommentsList).Comments, 0)
}
