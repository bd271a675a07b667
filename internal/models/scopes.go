package models

import "gorm.io/gorm"

// Soft-delete filtering is applied at the repository level: every
// default query goes through NotDeleted, callers that need deleted or
// historical rows opt in explicitly with DeletedOnly or the bare
// handle (the "with deleted" view).

// NotDeleted restricts a query to rows that are not soft-deleted.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// DeletedOnly restricts a query to soft-deleted rows.
func DeletedOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}
