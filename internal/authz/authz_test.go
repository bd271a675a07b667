package authz_test

import (
	"errors"
	"testing"

	"github.com/teraonavi/navi-admin/internal/authz"
	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/types"
)

var (
	anonymous = authz.Actor{}
	superuser = authz.Actor{Authenticated: true, Superuser: true}
	fullUser  = authz.Actor{Authenticated: true, UserID: 10, CompanyID: 1, Role: models.RoleFullAccess}
	limited   = authz.Actor{Authenticated: true, UserID: 11, CompanyID: 1, Role: models.RoleLimitedAccess}
	readOnly  = authz.Actor{Authenticated: true, UserID: 12, CompanyID: 1, Role: models.RoleReadOnly}
)

// TestAuthorize walks the access matrix.
func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		actor    authz.Actor
		action   authz.Action
		target   authz.Target
		allowed  bool
		denyCode authz.DenyCode
	}{
		{"anonymous login allowed", anonymous, authz.ActionLogin, authz.Target{}, true, ""},
		{"anonymous view denied", anonymous, authz.ActionApplicationView, authz.Target{}, false, authz.DenyAuthentication},
		{"anonymous company list denied", anonymous, authz.ActionCompanyView, authz.Target{}, false, authz.DenyAuthentication},

		{"superuser manages companies", superuser, authz.ActionCompanyDelete, authz.Target{CompanyID: 5}, true, ""},
		{"superuser issues credentials", superuser, authz.ActionCredentialIssue, authz.Target{CompanyID: 5}, true, ""},
		{"superuser admin user create", superuser, authz.ActionAdminUserCreate, authz.Target{CompanyID: 5}, true, ""},
		{"superuser denied tenant action", superuser, authz.ActionApplicationCreate, authz.Target{}, false, authz.DenyTenantOnly},
		{"superuser denied manual view", superuser, authz.ActionManualView, authz.Target{}, false, authz.DenyTenantOnly},

		{"tenant denied company management", fullUser, authz.ActionCompanyView, authz.Target{}, false, authz.DenySuperuserOnly},
		{"tenant denied credential revoke", fullUser, authz.ActionCredentialRevoke, authz.Target{CompanyID: 1}, false, authz.DenySuperuserOnly},

		{"own company row allowed", fullUser, authz.ActionApplicationEdit, authz.Target{CompanyID: 1}, true, ""},
		{"foreign row masked as missing", fullUser, authz.ActionApplicationEdit, authz.Target{CompanyID: 2}, false, authz.DenyNotFound},
		{"foreign row masked even for reads", readOnly, authz.ActionManualView, authz.Target{CompanyID: 2}, false, authz.DenyNotFound},

		{"read-only may view", readOnly, authz.ActionApplicationView, authz.Target{CompanyID: 1}, true, ""},
		{"read-only denied write", readOnly, authz.ActionApplicationCreate, authz.Target{}, false, authz.DenyInsufficientRole},
		{"read-only denied user delete", readOnly, authz.ActionUserDelete, authz.Target{CompanyID: 1, UserID: 99}, false, authz.DenyInsufficientRole},
		{"limited may write", limited, authz.ActionManualCreate, authz.Target{CompanyID: 1}, true, ""},

		{"self delete denied", fullUser, authz.ActionUserDelete, authz.Target{CompanyID: 1, UserID: 10}, false, authz.DenySelfDelete},
		{"deleting another user allowed", fullUser, authz.ActionUserDelete, authz.Target{CompanyID: 1, UserID: 11}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := authz.Authorize(tt.actor, tt.action, tt.target)
			if dec.Allowed != tt.allowed {
				t.Fatalf("Authorize(%v, %s, %v) allowed = %v, want %v", tt.actor, tt.action, tt.target, dec.Allowed, tt.allowed)
			}
			if !tt.allowed && dec.Code != tt.denyCode {
				t.Errorf("deny code = %q, want %q", dec.Code, tt.denyCode)
			}
		})
	}
}

// TestDecisionErr checks denial-to-error mapping.
func TestDecisionErr(t *testing.T) {
	if err := authz.Authorize(fullUser, authz.ActionApplicationView, authz.Target{CompanyID: 1}).Err(); err != nil {
		t.Fatalf("allowed decision returned error: %v", err)
	}

	err := authz.Authorize(anonymous, authz.ActionApplicationView, authz.Target{}).Err()
	if !errors.Is(err, types.ErrAuthenticationRequired) {
		t.Errorf("unauthenticated error = %v, want ErrAuthenticationRequired", err)
	}

	err = authz.Authorize(fullUser, authz.ActionApplicationView, authz.Target{CompanyID: 2}).Err()
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("cross-tenant error = %v, want ErrNotFound", err)
	}

	err = authz.Authorize(readOnly, authz.ActionApplicationCreate, authz.Target{}).Err()
	var denied *types.AuthorizationDeniedError
	if !errors.As(err, &denied) {
		t.Errorf("insufficient role error = %v, want AuthorizationDeniedError", err)
	}
}
