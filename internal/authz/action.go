package authz

// Action names one operation the boundary can request. Actions split
// into two disjoint domains: company management (the platform
// superuser's surface: companies, their credentials, and cross-tenant
// user administration) and tenant-scoped operations (applications,
// manuals, and users within the actor's own company).
type Action string

const (
	ActionLogin Action = "auth.login"

	ActionCompanyView      Action = "company.view"
	ActionCompanyCreate    Action = "company.create"
	ActionCompanyEdit      Action = "company.edit"
	ActionCompanyDelete    Action = "company.delete"
	ActionCompanyRestore   Action = "company.restore"
	ActionCredentialIssue  Action = "credential.issue"
	ActionCredentialRevoke Action = "credential.revoke"

	ActionAdminUserView   Action = "admin.user.view"
	ActionAdminUserCreate Action = "admin.user.create"
	ActionAdminUserEdit   Action = "admin.user.edit"
	ActionAdminUserDelete Action = "admin.user.delete"

	ActionApplicationView   Action = "application.view"
	ActionApplicationCreate Action = "application.create"
	ActionApplicationEdit   Action = "application.edit"
	ActionApplicationDelete Action = "application.delete"

	ActionManualView   Action = "manual.view"
	ActionManualCreate Action = "manual.create"
	ActionManualEdit   Action = "manual.edit"
	ActionManualDelete Action = "manual.delete"

	ActionUserView   Action = "user.view"
	ActionUserCreate Action = "user.create"
	ActionUserEdit   Action = "user.edit"
	ActionUserDelete Action = "user.delete"
)

// companyManagement reports whether the action belongs to the platform
// superuser's domain.
func (a Action) companyManagement() bool {
	switch a {
	case ActionCompanyView, ActionCompanyCreate, ActionCompanyEdit,
		ActionCompanyDelete, ActionCompanyRestore,
		ActionCredentialIssue, ActionCredentialRevoke,
		ActionAdminUserView, ActionAdminUserCreate,
		ActionAdminUserEdit, ActionAdminUserDelete:
		return true
	}
	return false
}

// write reports whether the action mutates tenant-scoped rows.
func (a Action) write() bool {
	switch a {
	case ActionApplicationCreate, ActionApplicationEdit, ActionApplicationDelete,
		ActionManualCreate, ActionManualEdit, ActionManualDelete,
		ActionUserCreate, ActionUserEdit, ActionUserDelete:
		return true
	}
	return false
}
