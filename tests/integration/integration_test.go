package integration_test

import (
	"errors"
	"testing"

	"github.com/teraonavi/navi-admin/internal/database"
	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/types"
	"github.com/teraonavi/navi-admin/tests/helpers"
	"gorm.io/gorm"
)

// TestWithMariaDB runs the lifecycle engine against a real MariaDB
// container: cascade semantics, uniqueness under the real unique
// indexes, and restore asymmetry.
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	mariadb := helpers.StartMariaDB(t)
	defer mariadb.Terminate(t)

	db, err := database.Connect(mariadb.Config())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := database.SeedRoles(db); err != nil {
		t.Fatalf("Failed to seed roles: %v", err)
	}

	t.Run("CascadeDelete", func(t *testing.T) {
		company := seedCompany(t, db, "Cascade Co")
		app := models.Application{CompanyID: company.CompanyID, ApplicationName: "App"}
		if err := db.Create(&app).Error; err != nil {
			t.Fatalf("create application: %v", err)
		}
		manual := models.Manual{ApplicationID: app.ApplicationID, ManualName: "Manual"}
		if err := db.Create(&manual).Error; err != nil {
			t.Fatalf("create manual: %v", err)
		}
		user := mustCreateUser(t, db, company.CompanyID, "cascade_user")

		if err := services.DeleteCompany(db, company.CompanyID); err != nil {
			t.Fatalf("DeleteCompany: %v", err)
		}

		for _, check := range []struct {
			name  string
			model interface{}
			cond  string
			id    uint64
		}{
			{"company", &models.Company{}, "company_id = ?", company.CompanyID},
			{"application", &models.Application{}, "application_id = ?", app.ApplicationID},
			{"manual", &models.Manual{}, "manual_id = ?", manual.ManualID},
			{"user", &models.User{}, "user_id = ?", user.UserID},
		} {
			var count int64
			err := db.Model(check.model).
				Scopes(models.DeletedOnly).
				Where(check.cond, check.id).
				Count(&count).Error
			if err != nil {
				t.Fatalf("count deleted %s: %v", check.name, err)
			}
			if count != 1 {
				t.Errorf("%s not soft-deleted", check.name)
			}
		}
	})

	t.Run("UniquenessSpansSoftDeletedRows", func(t *testing.T) {
		company := seedCompany(t, db, "Unique Co")
		user := mustCreateUser(t, db, company.CompanyID, "unique_user")

		if err := services.DeleteUser(db, user.UserID); err != nil {
			t.Fatalf("DeleteUser: %v", err)
		}

		// The service pre-check rejects the reuse.
		_, err := services.CreateUser(db, company.CompanyID, services.UserInput{
			Username: "unique_user",
			Email:    "unique_user2@example.com",
			Password: "secret-pass",
		})
		var validationErr *types.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("service pre-check error = %v, want ValidationError", err)
		}

		// The unique index itself blocks a raw insert too.
		raw := models.User{
			CompanyID: company.CompanyID,
			RoleID:    models.RoleReadOnly,
			Username:  "unique_user",
			Email:     "unique_user3@example.com",
			Password:  "x",
		}
		if err := db.Create(&raw).Error; err == nil {
			t.Error("unique index accepted a duplicate username")
		}
	})

	t.Run("RestoreDoesNotCascade", func(t *testing.T) {
		company := seedCompany(t, db, "Restore Co")
		app := models.Application{CompanyID: company.CompanyID, ApplicationName: "App"}
		if err := db.Create(&app).Error; err != nil {
			t.Fatalf("create application: %v", err)
		}

		if err := services.DeleteCompany(db, company.CompanyID); err != nil {
			t.Fatalf("DeleteCompany: %v", err)
		}
		if err := services.RestoreCompany(db, company.CompanyID); err != nil {
			t.Fatalf("RestoreCompany: %v", err)
		}

		if _, err := services.GetCompany(db, company.CompanyID); err != nil {
			t.Errorf("restored company not visible: %v", err)
		}
		if _, err := services.GetApplicationForCompany(db, app.ApplicationID, company.CompanyID); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("application visible after company restore, want ErrNotFound, got %v", err)
		}

		if err := services.RestoreApplication(db, app.ApplicationID); err != nil {
			t.Fatalf("RestoreApplication: %v", err)
		}
		if _, err := services.GetApplicationForCompany(db, app.ApplicationID, company.CompanyID); err != nil {
			t.Errorf("application not visible after its own restore: %v", err)
		}
	})
}

func seedCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	t.Helper()
	company := models.Company{Name: name}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	return &company
}

func mustCreateUser(t *testing.T, db *gorm.DB, companyID uint64, username string) *models.User {
	t.Helper()
	user, err := services.CreateUser(db, companyID, services.UserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}
