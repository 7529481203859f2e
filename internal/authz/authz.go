// Package authz implements AuthorizationCheck (spec §4.6 step 4 / §2
// component 7): project-membership and permission lookup. spec.md's data
// model (§3) defines no membership entity — boardwire is explicitly
// single-tenant, one process per database — so membership here reduces to
// "is this an authenticated user", while permission level (read/write/delete)
// remains a first-class check point other collaborators can tighten later
// without touching call sites.
package authz

import (
	"context"

	"github.com/boardwire/boardwire/internal/wireerr"
)

// Permission is the access level a handler requires for its operation.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionWrite
	PermissionDelete
)

// Checker authorizes a user's access to a project at a given permission
// level.
type Checker interface {
	Check(ctx context.Context, userID, projectID string, perm Permission) *wireerr.Error
}

// SingleTenantChecker is the default Checker for boardwire's single-tenant
// deployment model: every authenticated user is a member of every project
// with full permissions. It exists as a named collaborator (rather than a
// bare no-op inline in each handler) so a future multi-tenant build can
// swap in a real membership-backed Checker without touching handler code.
type SingleTenantChecker struct{}

// NewSingleTenantChecker builds the default Checker.
func NewSingleTenantChecker() *SingleTenantChecker {
	return &SingleTenantChecker{}
}

func (c *SingleTenantChecker) Check(ctx context.Context, userID, projectID string, perm Permission) *wireerr.Error {
	if userID == "" {
		return wireerr.Unauthorized("no authenticated user")
	}
	return nil
}
