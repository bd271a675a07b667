package models

import "time"

// Application belongs to exactly one Company and owns Manuals.
type Application struct {
	ApplicationID   uint64     `gorm:"primaryKey;autoIncrement" json:"application_id"`
	CompanyID       uint64     `gorm:"not null;index" json:"company_id"`
	ApplicationName string     `gorm:"size:255;not null;index" json:"application_name"`
	Description     string     `gorm:"type:text" json:"description"`
	IsDeleted       bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Manuals []Manual `gorm:"foreignKey:ApplicationID" json:"manuals,omitempty"`
}

// TableName overrides the table name for Application
func (Application) TableName() string {
	return "applications"
}
