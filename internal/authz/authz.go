// Package authz implements the authorization guard as a pure function
// over an explicit actor, action, and target. There is no ambient
// session state and no middleware magic: the boundary builds an Actor,
// calls Authorize, and translates the Decision.
package authz

import (
	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/types"
)

// Actor is the authenticated principal a request acts as. The zero
// value is an unauthenticated actor.
type Actor struct {
	Authenticated bool
	Superuser     bool
	UserID        uint64
	CompanyID     uint64
	Role          models.RoleID
}

// Target describes the row an action touches. CompanyID is the owning
// company of the target row when one is known; lists and creates inside
// the actor's own company leave it zero. UserID is set for actions on a
// specific user row.
type Target struct {
	CompanyID uint64
	UserID    uint64
}

// DenyCode classifies a denial for the boundary layer.
type DenyCode string

const (
	DenyAuthentication   DenyCode = "authentication"
	DenySuperuserOnly    DenyCode = "superuser_only"
	DenyTenantOnly       DenyCode = "tenant_only"
	DenyNotFound         DenyCode = "not_found"
	DenyInsufficientRole DenyCode = "insufficient_role"
	DenySelfDelete       DenyCode = "self_delete"
)

// Decision is the guard's verdict.
type Decision struct {
	Allowed bool
	Code    DenyCode
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(code DenyCode, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}

// Err converts a denial into the matching taxonomy error. Cross-tenant
// denials become ErrNotFound so a probing actor cannot distinguish a
// foreign row from a missing one.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Code {
	case DenyAuthentication:
		return types.ErrAuthenticationRequired
	case DenyNotFound:
		return types.ErrNotFound
	default:
		return &types.AuthorizationDeniedError{Reason: d.Reason}
	}
}

// Authorize evaluates the access rules in order and returns the first
// verdict. It is stateless; all inputs arrive as parameters.
func Authorize(actor Actor, action Action, target Target) Decision {
	// 1. Everything except login requires authentication.
	if !actor.Authenticated {
		if action == ActionLogin {
			return allow()
		}
		return deny(DenyAuthentication, "authentication required")
	}

	if action == ActionLogin {
		return allow()
	}

	// 2. Superusers operate in the company-management domain only.
	if actor.Superuser {
		if action.companyManagement() {
			return allow()
		}
		return deny(DenyTenantOnly, "tenant-scoped action requires a company user")
	}

	// 3. Tenant actors never reach company management.
	if action.companyManagement() {
		return deny(DenySuperuserOnly, "superuser only")
	}

	// 4. Rows outside the actor's company look exactly like missing rows.
	if target.CompanyID != 0 && target.CompanyID != actor.CompanyID {
		return deny(DenyNotFound, "not found")
	}

	// 5./6. Writes require a write-capable role.
	if action.write() && !actor.Role.HasWriteAccess() {
		return deny(DenyInsufficientRole, "insufficient role")
	}

	// 7. A user may never delete their own record.
	if action == ActionUserDelete && target.UserID != 0 && target.UserID == actor.UserID {
		return deny(DenySelfDelete, "cannot delete own account")
	}

	return allow()
}
