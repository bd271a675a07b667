package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/teraonavi/navi-admin/internal/credentials"
	"github.com/teraonavi/navi-admin/internal/handlers"
	"github.com/teraonavi/navi-admin/internal/middleware"
	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type memObjectStore struct {
	objects map[string][]byte
}

func (m *memObjectStore) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	return m.objects[key], nil
}

func (m *memObjectStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key, nil
}

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	cfg   *config.Config
	creds *credentials.Manager
	store *memObjectStore
}

// setupTestApp builds a routed Fiber app over an in-memory SQLite
// database, an in-memory credential store, and a fake object store.
func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Role{},
		&models.Company{},
		&models.User{},
		&models.Application{},
		&models.Manual{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	for _, role := range models.SeedRoles() {
		if err := db.Create(&role).Error; err != nil {
			t.Fatalf("Failed to seed roles: %v", err)
		}
	}

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		SessionTTL:        time.Hour,
		SuperuserName:     "root",
		SuperuserPassword: "root-pass",
	}
	creds := credentials.NewManager(credentials.NewMemoryStore(), time.Second)
	store := &memObjectStore{objects: make(map[string][]byte)}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})

	api := app.Group("/api")
	api.Use(middleware.SessionAuth(cfg))

	authHandler := &handlers.AuthHandler{Cfg: cfg, DB: db, Creds: creds}
	companyHandler := &handlers.CompanyHandler{DB: db, Creds: creds}
	userHandler := &handlers.UserHandler{DB: db}
	appHandler := &handlers.ApplicationHandler{DB: db}
	manualHandler := &handlers.ManualHandler{DB: db, Store: store}

	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)
	api.Post("/admin/login", authHandler.AdminLogin)
	api.Post("/auth/client", authHandler.VerifyClient)

	admin := api.Group("/admin")
	admin.Get("/companies", companyHandler.List)
	admin.Post("/companies", companyHandler.Create)
	admin.Get("/companies/:id", companyHandler.Get)
	admin.Put("/companies/:id", companyHandler.Update)
	admin.Delete("/companies/:id", companyHandler.Delete)
	admin.Post("/companies/:id/restore", companyHandler.Restore)
	admin.Post("/companies/:id/credentials", companyHandler.IssueCredential)
	admin.Get("/companies/:id/credentials", companyHandler.ListCredentials)
	admin.Delete("/companies/:id/credentials/:clientID", companyHandler.RevokeCredential)
	admin.Get("/users", userHandler.AdminList)
	admin.Post("/users", userHandler.AdminCreate)

	api.Get("/users", userHandler.List)
	api.Post("/users", userHandler.Create)
	api.Get("/users/:id", userHandler.Get)
	api.Put("/users/:id", userHandler.Update)
	api.Delete("/users/:id", userHandler.Delete)

	api.Get("/applications", appHandler.List)
	api.Post("/applications", appHandler.Create)
	api.Get("/applications/:id", appHandler.Get)
	api.Put("/applications/:id", appHandler.Update)
	api.Delete("/applications/:id", appHandler.Delete)
	api.Get("/applications/:id/manuals", manualHandler.List)
	api.Get("/manuals/:id", manualHandler.Get)
	api.Get("/manuals/:id/url", manualHandler.PresignedURL)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	return &testEnv{app: app, db: db, cfg: cfg, creds: creds, store: store}
}

// seedUser creates a company and an active user in it.
func (e *testEnv) seedUser(t *testing.T, tag string, role models.RoleID) (*models.Company, *models.User) {
	t.Helper()

	company := models.Company{Name: "Company " + tag}
	if err := e.db.Create(&company).Error; err != nil {
		t.Fatalf("Failed to create company: %v", err)
	}

	user, err := services.CreateUser(e.db, company.CompanyID, services.UserInput{
		Username: "user_" + tag,
		Email:    fmt.Sprintf("user_%s@example.com", tag),
		Password: "secret-pass",
		RoleID:   role,
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &company, user
}

// login performs /api/login and returns the session cookie.
func (e *testEnv) login(t *testing.T, login, password string) *http.Cookie {
	t.Helper()
	return e.loginAt(t, "/api/login", login, password)
}

func (e *testEnv) adminLogin(t *testing.T) *http.Cookie {
	t.Helper()
	return e.loginAt(t, "/api/admin/login", e.cfg.SuperuserName, e.cfg.SuperuserPassword)
}

func (e *testEnv) loginAt(t *testing.T, path, login, password string) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"login": login, "password": password})
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := setupTestApp(t)

	resp := env.request(t, "GET", "/api/applications", nil, nil)
	if resp.StatusCode != 401 {
		t.Errorf("GET /api/applications = %d, want 401", resp.StatusCode)
	}

	resp = env.request(t, "GET", "/api/admin/companies", nil, nil)
	if resp.StatusCode != 401 {
		t.Errorf("GET /api/admin/companies = %d, want 401", resp.StatusCode)
	}
}

func TestTenantIsolation(t *testing.T) {
	env := setupTestApp(t)
	_, userA := env.seedUser(t, "a", models.RoleFullAccess)
	companyB, _ := env.seedUser(t, "b", models.RoleFullAccess)

	appB := models.Application{CompanyID: companyB.CompanyID, ApplicationName: "Foreign App"}
	if err := env.db.Create(&appB).Error; err != nil {
		t.Fatalf("create application: %v", err)
	}

	cookie := env.login(t, userA.Username, "secret-pass")

	// A's list never shows B's application.
	resp := env.request(t, "GET", "/api/applications", nil, cookie)
	if resp.StatusCode != 200 {
		t.Fatalf("GET /api/applications = %d", resp.StatusCode)
	}
	var list []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("tenant A sees %d foreign applications", len(list))
	}

	// Fetching B's application by id reads as missing, not forbidden.
	resp = env.request(t, "GET", fmt.Sprintf("/api/applications/%d", appB.ApplicationID), nil, cookie)
	if resp.StatusCode != 404 {
		t.Errorf("cross-tenant GET = %d, want 404", resp.StatusCode)
	}
}

func TestSuperuserCannotTouchTenantRoutes(t *testing.T) {
	env := setupTestApp(t)
	cookie := env.adminLogin(t)

	resp := env.request(t, "GET", "/api/applications", nil, cookie)
	if resp.StatusCode != 403 {
		t.Errorf("superuser GET /api/applications = %d, want 403", resp.StatusCode)
	}
}

func TestTenantCannotTouchAdminRoutes(t *testing.T) {
	env := setupTestApp(t)
	_, user := env.seedUser(t, "t", models.RoleFullAccess)
	cookie := env.login(t, user.Username, "secret-pass")

	resp := env.request(t, "GET", "/api/admin/companies", nil, cookie)
	if resp.StatusCode != 403 {
		t.Errorf("tenant GET /api/admin/companies = %d, want 403", resp.StatusCode)
	}
}

func TestReadOnlyUserCannotWrite(t *testing.T) {
	env := setupTestApp(t)
	_, user := env.seedUser(t, "ro", models.RoleReadOnly)
	cookie := env.login(t, user.Username, "secret-pass")

	resp := env.request(t, "POST", "/api/applications", map[string]string{"application_name": "X"}, cookie)
	if resp.StatusCode != 403 {
		t.Errorf("read-only POST /api/applications = %d, want 403", resp.StatusCode)
	}

	resp = env.request(t, "GET", "/api/applications", nil, cookie)
	if resp.StatusCode != 200 {
		t.Errorf("read-only GET /api/applications = %d, want 200", resp.StatusCode)
	}
}

func TestSelfDeleteDenied(t *testing.T) {
	env := setupTestApp(t)
	_, user := env.seedUser(t, "self", models.RoleFullAccess)
	cookie := env.login(t, user.Username, "secret-pass")

	resp := env.request(t, "DELETE", fmt.Sprintf("/api/users/%d", user.UserID), nil, cookie)
	if resp.StatusCode != 403 {
		t.Errorf("self delete = %d, want 403", resp.StatusCode)
	}
}

func TestRoleMatrixOnTenantUserCreate(t *testing.T) {
	env := setupTestApp(t)
	_, full := env.seedUser(t, "matrix", models.RoleFullAccess)
	cookie := env.login(t, full.Username, "secret-pass")

	// FullAccess may create a LimitedAccess user.
	resp := env.request(t, "POST", "/api/users", map[string]interface{}{
		"username": "lim",
		"email":    "lim@example.com",
		"password": "secret-pass",
		"role_id":  models.RoleLimitedAccess,
	}, cookie)
	if resp.StatusCode != 201 {
		t.Fatalf("create limited user = %d, want 201", resp.StatusCode)
	}

	// But never another FullAccess user.
	resp = env.request(t, "POST", "/api/users", map[string]interface{}{
		"username": "peer",
		"email":    "peer@example.com",
		"password": "secret-pass",
		"role_id":  models.RoleFullAccess,
	}, cookie)
	if resp.StatusCode != 403 {
		t.Errorf("create full-access peer = %d, want 403", resp.StatusCode)
	}
}

func TestAdminCompanyLifecycleWithCredentials(t *testing.T) {
	env := setupTestApp(t)
	cookie := env.adminLogin(t)

	// Create a company.
	resp := env.request(t, "POST", "/api/admin/companies", map[string]string{"name": "Acme"}, cookie)
	if resp.StatusCode != 201 {
		t.Fatalf("create company = %d, want 201", resp.StatusCode)
	}
	var company models.Company
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		t.Fatalf("decode company: %v", err)
	}

	// Issue a credential; the secret appears exactly once.
	resp = env.request(t, "POST", fmt.Sprintf("/api/admin/companies/%d/credentials", company.CompanyID), nil, cookie)
	if resp.StatusCode != 201 {
		t.Fatalf("issue credential = %d, want 201", resp.StatusCode)
	}
	var issued struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil {
		t.Fatalf("decode credential: %v", err)
	}
	if issued.ClientSecret == "" {
		t.Fatal("issued credential has no secret")
	}

	// The machine endpoint accepts the pair.
	resp = env.request(t, "POST", "/api/auth/client", map[string]string{
		"client_id":     issued.ClientID,
		"client_secret": issued.ClientSecret,
	}, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("client verify = %d, want 200", resp.StatusCode)
	}

	// The list shows the credential without the secret.
	resp = env.request(t, "GET", fmt.Sprintf("/api/admin/companies/%d/credentials", company.CompanyID), nil, cookie)
	if resp.StatusCode != 200 {
		t.Fatalf("list credentials = %d, want 200", resp.StatusCode)
	}

	// Deleting the company revokes its credentials.
	resp = env.request(t, "DELETE", fmt.Sprintf("/api/admin/companies/%d", company.CompanyID), nil, cookie)
	if resp.StatusCode != 200 {
		t.Fatalf("delete company = %d, want 200", resp.StatusCode)
	}
	var deleted struct {
		CredentialsRevoked bool `json:"credentials_revoked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&deleted); err != nil {
		t.Fatalf("decode delete response: %v", err)
	}
	if !deleted.CredentialsRevoked {
		t.Error("credentials not revoked on company delete")
	}

	resp = env.request(t, "POST", "/api/auth/client", map[string]string{
		"client_id":     issued.ClientID,
		"client_secret": issued.ClientSecret,
	}, nil)
	if resp.StatusCode != 401 {
		t.Errorf("client verify after revoke = %d, want 401", resp.StatusCode)
	}

	// Restore brings the company back, but not its credentials.
	resp = env.request(t, "POST", fmt.Sprintf("/api/admin/companies/%d/restore", company.CompanyID), nil, cookie)
	if resp.StatusCode != 200 {
		t.Fatalf("restore company = %d, want 200", resp.StatusCode)
	}
	resp = env.request(t, "GET", fmt.Sprintf("/api/admin/companies/%d", company.CompanyID), nil, cookie)
	if resp.StatusCode != 200 {
		t.Errorf("get restored company = %d, want 200", resp.StatusCode)
	}
}

func TestAdminCreatedUserForcedToFullAccess(t *testing.T) {
	env := setupTestApp(t)
	cookie := env.adminLogin(t)

	resp := env.request(t, "POST", "/api/admin/companies", map[string]string{"name": "Forced"}, cookie)
	if resp.StatusCode != 201 {
		t.Fatalf("create company = %d", resp.StatusCode)
	}
	var company models.Company
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		t.Fatalf("decode company: %v", err)
	}

	resp = env.request(t, "POST", "/api/admin/users", map[string]interface{}{
		"company_id": company.CompanyID,
		"username":   "forced",
		"email":      "forced@example.com",
		"password":   "secret-pass",
		"role_id":    models.RoleReadOnly,
	}, cookie)
	if resp.StatusCode != 201 {
		t.Fatalf("admin create user = %d, want 201", resp.StatusCode)
	}
	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.RoleID != models.RoleFullAccess {
		t.Errorf("admin-created role = %d, want RoleFullAccess", user.RoleID)
	}
}

func TestManualPresignedURL(t *testing.T) {
	env := setupTestApp(t)
	company, user := env.seedUser(t, "pdf", models.RoleFullAccess)
	cookie := env.login(t, user.Username, "secret-pass")

	app := models.Application{CompanyID: company.CompanyID, ApplicationName: "Docs"}
	if err := env.db.Create(&app).Error; err != nil {
		t.Fatalf("create application: %v", err)
	}
	manual, err := services.CreateManual(context.Background(), env.db, env.store, app.ApplicationID, services.ManualInput{
		ManualName: "Guide",
		File:       []byte("%PDF"),
	})
	if err != nil {
		t.Fatalf("CreateManual: %v", err)
	}

	resp := env.request(t, "GET", fmt.Sprintf("/api/manuals/%d/url", manual.ManualID), nil, cookie)
	if resp.StatusCode != 200 {
		t.Fatalf("presigned url = %d, want 200", resp.StatusCode)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode url: %v", err)
	}
	if out.URL == "" {
		t.Error("empty presigned url")
	}
}
