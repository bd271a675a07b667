package services

import (
	"errors"

	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/types"
	"gorm.io/gorm"
)

// CompanyInput carries the writable company fields.
type CompanyInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Tel     string `json:"tel"`
}

// CompanyWithUserCount is a list row: the company plus its count of
// active (non-deleted) users.
type CompanyWithUserCount struct {
	models.Company
	UserCount int64 `json:"user_count"`
}

// ListCompanies returns active companies, optionally filtered by a
// free-text query over name, address, and tel, newest first. Each row
// carries the active-user count.
func ListCompanies(db *gorm.DB, query string) ([]CompanyWithUserCount, error) {
	q := db.Model(&models.Company{}).
		Scopes(models.NotDeleted).
		Select("companies.*, (?) AS user_count",
			db.Model(&models.User{}).
				Select("COUNT(*)").
				Where("users.company_id = companies.company_id AND users.is_deleted = ?", false),
		)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("name LIKE ? OR address LIKE ? OR tel LIKE ?", like, like, like)
	}

	var companies []CompanyWithUserCount
	if err := q.Order("created_at DESC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// GetCompany returns an active company by id.
func GetCompany(db *gorm.DB, companyID uint64) (*models.Company, error) {
	var company models.Company
	err := db.Scopes(models.NotDeleted).Where("company_id = ?", companyID).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// CreateCompany inserts a new company.
func CreateCompany(db *gorm.DB, input CompanyInput) (*models.Company, error) {
	if input.Name == "" {
		return nil, &types.ValidationError{Field: "name", Reason: "required"}
	}

	company := models.Company{
		Name:    input.Name,
		Address: input.Address,
		Tel:     input.Tel,
	}
	if err := db.Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateCompany updates the writable fields of an active company.
func UpdateCompany(db *gorm.DB, companyID uint64, input CompanyInput) (*models.Company, error) {
	company, err := GetCompany(db, companyID)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, &types.ValidationError{Field: "name", Reason: "required"}
	}

	company.Name = input.Name
	company.Address = input.Address
	company.Tel = input.Tel
	if err := db.Save(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}
