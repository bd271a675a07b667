package models

import "time"

// Manual is a PDF document attached to an Application. Its company is
// derived through the Application and never stored on the row itself.
// Deleting a Manual row never removes the object-store file; the PDF
// is retained for audit and undo.
type Manual struct {
	ManualID      uint64     `gorm:"primaryKey;autoIncrement" json:"manual_id"`
	ApplicationID uint64     `gorm:"not null;index" json:"application_id"`
	ManualName    string     `gorm:"size:200;not null" json:"manual_name"`
	Description   string     `gorm:"type:text" json:"description"`
	FilePath      string     `gorm:"size:500" json:"file_path"` // object-store key: {applicationID}/{manualID}.pdf
	FileSize      int64      `json:"file_size"`
	IsDeleted     bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

// TableName overrides the table name for Manual
func (Manual) TableName() string {
	return "manuals"
}

// CompanyID returns the owning company id derived through the
// preloaded Application, or 0 when the association is not loaded.
func (m *Manual) CompanyID() uint64 {
	if m.Application == nil {
		return 0
	}
	return m.Application.CompanyID
}
