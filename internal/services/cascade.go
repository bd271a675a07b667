package services

import (
	"errors"
	"time"

	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/types"
	"gorm.io/gorm"
)

// Soft-delete cascade engine. Deletion cascades down the ownership
// graph (Company -> Applications -> Manuals, Company -> Users) inside a
// single transaction; restore deliberately does not cascade — each
// entity is restored by its own explicit call.

// softDeleteValues marks a row deleted with a timestamp.
func softDeleteValues(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"is_deleted": true,
		"deleted_at": now,
	}
}

// restoreValues clears the deleted flag and timestamp.
func restoreValues() map[string]interface{} {
	return map[string]interface{}{
		"is_deleted": false,
		"deleted_at": nil,
	}
}

// DeleteCompany soft-deletes a company and cascades to every active
// application (and its manuals) and every active user it owns, all in
// one transaction. Applications are walked before users; the two sets
// are independent writes, the order is just documented behavior.
// Deleting an already-deleted company is a no-op that still walks and
// no-ops over its dependents.
func DeleteCompany(db *gorm.DB, companyID uint64) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if err := tx.Where("company_id = ?", companyID).First(&company).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}

		now := time.Now().UTC()

		var apps []models.Application
		if err := tx.Scopes(models.NotDeleted).Where("company_id = ?", companyID).Find(&apps).Error; err != nil {
			return err
		}
		for _, app := range apps {
			if err := deleteApplicationTx(tx, app.ApplicationID, now); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.User{}).
			Scopes(models.NotDeleted).
			Where("company_id = ?", companyID).
			Updates(softDeleteValues(now)).Error; err != nil {
			return err
		}

		if company.IsDeleted {
			return nil
		}
		return tx.Model(&models.Company{}).
			Where("company_id = ?", companyID).
			Updates(softDeleteValues(now)).Error
	})

	return wrapCascadeErr(err)
}

// DeleteApplication soft-deletes an application and its active manuals
// in one transaction. Manual files in object storage are retained.
func DeleteApplication(db *gorm.DB, applicationID uint64) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Where("application_id = ?", applicationID).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		return deleteApplicationTx(tx, applicationID, time.Now().UTC())
	})

	return wrapCascadeErr(err)
}

// deleteApplicationTx cascades within an open transaction.
func deleteApplicationTx(tx *gorm.DB, applicationID uint64, now time.Time) error {
	if err := tx.Model(&models.Manual{}).
		Scopes(models.NotDeleted).
		Where("application_id = ?", applicationID).
		Updates(softDeleteValues(now)).Error; err != nil {
		return err
	}

	return tx.Model(&models.Application{}).
		Scopes(models.NotDeleted).
		Where("application_id = ?", applicationID).
		Updates(softDeleteValues(now)).Error
}

// DeleteManual soft-deletes a manual row only. The stored PDF stays in
// object storage for audit and undo.
func DeleteManual(db *gorm.DB, manualID uint64) error {
	return deleteLeaf(db, &models.Manual{}, "manual_id = ?", manualID)
}

// DeleteUser soft-deletes a user row. Users own nothing; no cascade.
func DeleteUser(db *gorm.DB, userID uint64) error {
	return deleteLeaf(db, &models.User{}, "user_id = ?", userID)
}

// deleteLeaf soft-deletes a dependent-free row, idempotently.
func deleteLeaf(db *gorm.DB, model interface{}, cond string, id uint64) error {
	var count int64
	if err := db.Model(model).Where(cond, id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return types.ErrNotFound
	}
	return db.Model(model).
		Scopes(models.NotDeleted).
		Where(cond, id).
		Updates(softDeleteValues(time.Now().UTC())).Error
}

// RestoreCompany clears the company's own deleted flag only. Dependent
// applications, manuals, and users stay deleted until restored by
// their own operations.
func RestoreCompany(db *gorm.DB, companyID uint64) error {
	return restoreRow(db, &models.Company{}, "company_id = ?", companyID)
}

// RestoreApplication restores the application row only.
func RestoreApplication(db *gorm.DB, applicationID uint64) error {
	return restoreRow(db, &models.Application{}, "application_id = ?", applicationID)
}

// RestoreManual restores the manual row only.
func RestoreManual(db *gorm.DB, manualID uint64) error {
	return restoreRow(db, &models.Manual{}, "manual_id = ?", manualID)
}

// RestoreUser restores the user row only.
func RestoreUser(db *gorm.DB, userID uint64) error {
	return restoreRow(db, &models.User{}, "user_id = ?", userID)
}

// restoreRow clears soft-delete state on one row, idempotently.
func restoreRow(db *gorm.DB, model interface{}, cond string, id uint64) error {
	var count int64
	if err := db.Model(model).Where(cond, id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return types.ErrNotFound
	}
	return db.Model(model).Where(cond, id).Updates(restoreValues()).Error
}

// wrapCascadeErr classifies transaction failures; NotFound passes
// through untouched.
func wrapCascadeErr(err error) error {
	if err == nil || errors.Is(err, types.ErrNotFound) {
		return err
	}
	return &types.CascadeIntegrityError{Err: err}
}
