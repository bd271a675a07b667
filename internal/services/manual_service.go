package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/objectstore"
	"github.com/teraonavi/navi-admin/internal/types"
	"gorm.io/gorm"
)

const manualContentType = "application/pdf"

// ObjectStore is the slice of object storage the manual operations
// need. *objectstore.Client satisfies it.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ManualInput carries the writable manual fields. File is nil on edits
// that keep the existing PDF.
type ManualInput struct {
	ManualName  string
	Description string
	File        []byte
}

// ListManuals returns an application's active manuals, optionally
// filtered by a free-text query over name and description, newest
// first.
func ListManuals(db *gorm.DB, applicationID uint64, query string) ([]models.Manual, error) {
	q := db.Scopes(models.NotDeleted).Where("application_id = ?", applicationID)
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("manual_name LIKE ? OR description LIKE ?", like, like)
	}

	var manuals []models.Manual
	if err := q.Order("created_at DESC").Find(&manuals).Error; err != nil {
		return nil, err
	}
	return manuals, nil
}

// GetManualForCompany returns an active manual whose owning application
// belongs to the company. Any other combination yields NotFound.
func GetManualForCompany(db *gorm.DB, manualID, companyID uint64) (*models.Manual, error) {
	var manual models.Manual
	err := db.
		Preload("Application").
		Joins("JOIN applications ON applications.application_id = manuals.application_id").
		Where("manuals.is_deleted = ? AND applications.is_deleted = ?", false, false).
		Where("manuals.manual_id = ? AND applications.company_id = ?", manualID, companyID).
		First(&manual).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &manual, nil
}

// CreateManual inserts a manual row and uploads its PDF. The row is
// created first so the object key can embed the manual id; when the
// upload fails the fresh row is removed again and the storage error is
// returned, leaving no dangling metadata.
func CreateManual(ctx context.Context, db *gorm.DB, store ObjectStore, applicationID uint64, input ManualInput) (*models.Manual, error) {
	if input.ManualName == "" {
		return nil, &types.ValidationError{Field: "manual_name", Reason: "required"}
	}
	if len(input.File) == 0 {
		return nil, &types.ValidationError{Field: "file", Reason: "required"}
	}

	manual := models.Manual{
		ApplicationID: applicationID,
		ManualName:    input.ManualName,
		Description:   input.Description,
		FileSize:      int64(len(input.File)),
	}
	if err := db.Create(&manual).Error; err != nil {
		return nil, err
	}

	key := objectstore.ManualKey(applicationID, manual.ManualID)
	if err := store.Upload(ctx, key, bytes.NewReader(input.File), manualContentType); err != nil {
		if delErr := db.Delete(&models.Manual{}, "manual_id = ?", manual.ManualID).Error; delErr != nil {
			log.Printf("manual create: failed to remove row %d after upload failure: %v", manual.ManualID, delErr)
		}
		return nil, err
	}

	manual.FilePath = key
	if err := db.Model(&models.Manual{}).
		Where("manual_id = ?", manual.ManualID).
		Update("file_path", key).Error; err != nil {
		return nil, err
	}
	return &manual, nil
}

// UpdateManual updates the manual's fields and, when a new PDF is
// provided, replaces the stored object. A legacy object under a
// different key is deleted best-effort after the replacement lands.
func UpdateManual(ctx context.Context, db *gorm.DB, store ObjectStore, manual *models.Manual, input ManualInput) (*models.Manual, error) {
	if input.ManualName == "" {
		return nil, &types.ValidationError{Field: "manual_name", Reason: "required"}
	}

	manual.ManualName = input.ManualName
	manual.Description = input.Description

	if len(input.File) > 0 {
		key := objectstore.ManualKey(manual.ApplicationID, manual.ManualID)
		if err := store.Upload(ctx, key, bytes.NewReader(input.File), manualContentType); err != nil {
			return nil, err
		}
		if manual.FilePath != "" && manual.FilePath != key {
			if err := store.Delete(ctx, manual.FilePath); err != nil {
				log.Printf("manual update: failed to delete superseded object %q: %v", manual.FilePath, err)
			}
		}
		manual.FilePath = key
		manual.FileSize = int64(len(input.File))
	}

	if err := db.Save(manual).Error; err != nil {
		return nil, err
	}
	return manual, nil
}

// DownloadManual fetches the manual's PDF bytes from object storage.
func DownloadManual(ctx context.Context, store ObjectStore, manual *models.Manual) ([]byte, error) {
	if manual.FilePath == "" {
		return nil, types.ErrNotFound
	}
	return store.Download(ctx, manual.FilePath)
}

// PresignManual returns a time-limited download URL for the manual's
// PDF.
func PresignManual(ctx context.Context, store ObjectStore, manual *models.Manual, ttl time.Duration) (string, error) {
	if manual.FilePath == "" {
		return "", types.ErrNotFound
	}
	return store.PresignGet(ctx, manual.FilePath, ttl)
}
