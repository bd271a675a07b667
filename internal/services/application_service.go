package services

import (
	"errors"

	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/types"
	"gorm.io/gorm"
)

// ApplicationInput carries the writable application fields.
type ApplicationInput struct {
	ApplicationName string `json:"application_name"`
	Description     string `json:"description"`
}

// ApplicationWithManualCount is a list row: the application plus its
// count of active manuals.
type ApplicationWithManualCount struct {
	models.Application
	ManualCount int64 `json:"manual_count"`
}

// ListApplications returns a company's active applications, optionally
// filtered by a free-text query over name and description, newest
// first. Each row carries the active-manual count.
func ListApplications(db *gorm.DB, companyID uint64, query string) ([]ApplicationWithManualCount, error) {
	q := db.Model(&models.Application{}).
		Scopes(models.NotDeleted).
		Select("applications.*, (?) AS manual_count",
			db.Model(&models.Manual{}).
				Select("COUNT(*)").
				Where("manuals.application_id = applications.application_id AND manuals.is_deleted = ?", false),
		).
		Where("company_id = ?", companyID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("application_name LIKE ? OR description LIKE ?", like, like)
	}

	var apps []ApplicationWithManualCount
	if err := q.Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// GetApplicationForCompany returns an active application scoped to a
// company. An id owned by another company yields NotFound.
func GetApplicationForCompany(db *gorm.DB, applicationID, companyID uint64) (*models.Application, error) {
	var app models.Application
	err := db.Scopes(models.NotDeleted).
		Where("application_id = ? AND company_id = ?", applicationID, companyID).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// CreateApplication inserts a new application under a company.
func CreateApplication(db *gorm.DB, companyID uint64, input ApplicationInput) (*models.Application, error) {
	if input.ApplicationName == "" {
		return nil, &types.ValidationError{Field: "application_name", Reason: "required"}
	}

	app := models.Application{
		CompanyID:       companyID,
		ApplicationName: input.ApplicationName,
		Description:     input.Description,
	}
	if err := db.Create(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateApplication updates the writable fields of an active
// application within a company.
func UpdateApplication(db *gorm.DB, applicationID, companyID uint64, input ApplicationInput) (*models.Application, error) {
	app, err := GetApplicationForCompany(db, applicationID, companyID)
	if err != nil {
		return nil, err
	}
	if input.ApplicationName == "" {
		return nil, &types.ValidationError{Field: "application_name", Reason: "required"}
	}

	app.ApplicationName = input.ApplicationName
	app.Description = input.Description
	if err := db.Save(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}
