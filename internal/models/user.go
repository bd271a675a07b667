package models

import "time"

// User belongs to exactly one Company and holds exactly one Role.
// Username and email are unique across ALL rows, soft-deleted included;
// the unique indexes are the authoritative guard, service-level
// pre-checks only provide friendlier errors.
type User struct {
	UserID    uint64     `gorm:"primaryKey;autoIncrement" json:"user_id"`
	CompanyID uint64     `gorm:"not null;index" json:"company_id"`
	RoleID    RoleID     `gorm:"not null;default:3;index" json:"role_id"`
	Username  string     `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email     string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	FirstName string     `gorm:"size:150" json:"first_name"`
	LastName  string     `gorm:"size:150" json:"last_name"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Role    *Role    `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"role,omitempty"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// FullName returns "last first" when both are set, otherwise the username.
func (u *User) FullName() string {
	if u.LastName != "" && u.FirstName != "" {
		return u.LastName + " " + u.FirstName
	}
	return u.Username
}
