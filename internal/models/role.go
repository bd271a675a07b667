package models

import "time"

// RoleID identifies one of the three fixed role tiers.
type RoleID int

const (
	RoleFullAccess    RoleID = 1
	RoleLimitedAccess RoleID = 2
	RoleReadOnly      RoleID = 3
)

// Role is a seeded, fixed enumeration. Rows are created at migration
// time and protected from deletion (users reference them with RESTRICT).
type Role struct {
	RoleID      RoleID    `gorm:"primaryKey;autoIncrement:false" json:"role_id"`
	Name        string    `gorm:"size:50;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for Role
func (Role) TableName() string {
	return "roles"
}

// Valid reports whether the id is one of the three known tiers.
func (r RoleID) Valid() bool {
	return r == RoleFullAccess || r == RoleLimitedAccess || r == RoleReadOnly
}

// AssignableRoles returns the roles a user holding r may assign when
// creating or editing a subordinate user. FullAccess may hand out
// LimitedAccess and ReadOnly, LimitedAccess only ReadOnly, ReadOnly
// nothing. The superuser admin path bypasses this matrix entirely.
func (r RoleID) AssignableRoles() []RoleID {
	switch r {
	case RoleFullAccess:
		return []RoleID{RoleLimitedAccess, RoleReadOnly}
	case RoleLimitedAccess:
		return []RoleID{RoleReadOnly}
	default:
		return nil
	}
}

// CanAssign reports whether r may assign the target role to another user.
func (r RoleID) CanAssign(target RoleID) bool {
	for _, a := range r.AssignableRoles() {
		if a == target {
			return true
		}
	}
	return false
}

// HasWriteAccess reports whether the role may create or modify
// tenant-scoped rows (applications, manuals, users).
func (r RoleID) HasWriteAccess() bool {
	return r == RoleFullAccess || r == RoleLimitedAccess
}

// SeedRoles returns the fixed role rows inserted at migration time.
func SeedRoles() []Role {
	return []Role{
		{RoleID: RoleFullAccess, Name: "full_access", Description: "Full access within the company"},
		{RoleID: RoleLimitedAccess, Name: "limited_access", Description: "Create and update within a limited scope"},
		{RoleID: RoleReadOnly, Name: "read_only", Description: "Read-only access"},
	}
}
