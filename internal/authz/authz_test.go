package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingleTenantCheckerAllowsAnyAuthenticatedUser(t *testing.T) {
	c := NewSingleTenantChecker()

	require.Nil(t, c.Check(context.Background(), "user-1", "proj-1", PermissionRead))
	require.Nil(t, c.Check(context.Background(), "user-1", "proj-1", PermissionWrite))
	require.Nil(t, c.Check(context.Background(), "user-1", "proj-1", PermissionDelete))
}

func TestSingleTenantCheckerRejectsUnauthenticated(t *testing.T) {
	c := NewSingleTenantChecker()

	err := c.Check(context.Background(), "", "proj-1", PermissionRead)
	require.NotNil(t, err)
	require.Equal(t, "UNAUTHORIZED", string(err.Code))
}
