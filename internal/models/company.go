package models

import "time"

// Company is the tenant root. It owns Users and Applications; Manuals
// belong to it only transitively through their Application.
type Company struct {
	CompanyID uint64     `gorm:"primaryKey;autoIncrement" json:"company_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Address   string     `gorm:"size:255" json:"address"`
	Tel       string     `gorm:"size:255" json:"tel"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Users        []User        `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
	Applications []Application `gorm:"foreignKey:CompanyID" json:"applications,omitempty"`
}

// TableName overrides the table name for Company
func (Company) TableName() string {
	return "companies"
}
