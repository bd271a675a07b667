package services

import (
	"context"
	"fmt"
	"log"

	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/teraonavi/navi-admin/internal/credentials"
	"github.com/teraonavi/navi-admin/internal/objectstore"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status          string            `json:"status"`
	Database        string            `json:"database"`
	CredentialStore string            `json:"credential_store"`
	ObjectStore     string            `json:"object_store"`
	Details         map[string]string `json:"details,omitempty"`
	ErrorMessage    string            `json:"error,omitempty"`
}

// HealthCheck probes the relational database, the credential store, and
// the object store.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, creds *credentials.Manager, store *objectstore.Client) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check credential store connectivity
	if err := creds.Ping(ctx); err != nil {
		result.Status = "unhealthy"
		result.CredentialStore = "unreachable"
		result.Details["credential_store_error"] = err.Error()
		appendHealthError(&result, fmt.Sprintf("Credential store ping failed: %v", err))
		log.Printf("Health check failed - credential store ping: %v", err)
	} else {
		result.CredentialStore = "ok"
	}

	// Check object store connectivity
	if err := store.Ping(ctx); err != nil {
		result.Status = "unhealthy"
		result.ObjectStore = "unreachable"
		result.Details["object_store_error"] = err.Error()
		appendHealthError(&result, fmt.Sprintf("Object store ping failed: %v", err))
		log.Printf("Health check failed - object store ping: %v", err)
	} else {
		result.ObjectStore = "ok"
		result.Details["object_store_bucket"] = cfg.S3Bucket
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}

func appendHealthError(result *HealthCheckResult, msg string) {
	if result.ErrorMessage == "" {
		result.ErrorMessage = msg
	} else {
		result.ErrorMessage += "; " + msg
	}
}
