package services

import (
	"errors"

	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidLogin is returned for any failed authentication attempt;
// the boundary never reveals which part of the pair was wrong.
var ErrInvalidLogin = errors.New("invalid username or password")

// UserInput carries the writable user fields. A blank Password on edit
// keeps the existing hash.
type UserInput struct {
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	RoleID    models.RoleID `json:"role_id"`
	IsActive  *bool         `json:"is_active"`
}

// AuthenticateUser verifies a tenant login. The login value is tried as
// an email first, then as a username, against active, non-deleted
// users, mirroring the original backend's fallback order.
func AuthenticateUser(db *gorm.DB, login, password string) (*models.User, error) {
	user, err := findLoginCandidate(db, "email = ?", login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if user, err = findLoginCandidate(db, "username = ?", login); err != nil {
			return nil, err
		}
	}
	if user == nil {
		return nil, ErrInvalidLogin
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidLogin
	}
	return user, nil
}

func findLoginCandidate(db *gorm.DB, cond string, value string) (*models.User, error) {
	var user models.User
	err := db.Scopes(models.NotDeleted).
		Where("is_active = ?", true).
		Where(cond, value).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// HashPassword returns the one-way bcrypt digest for a raw password.
func HashPassword(raw string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// checkUserUniqueness scans ALL rows, soft-deleted included, so a
// deleted identity's username or email can never be reclaimed by a new
// record. excludeID skips the row being edited. The unique indexes
// remain the authoritative guard against concurrent creators.
func checkUserUniqueness(db *gorm.DB, username, email string, excludeID uint64) error {
	var count int64
	q := db.Model(&models.User{}).Where("username = ?", username)
	if excludeID != 0 {
		q = q.Where("user_id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &types.ValidationError{Field: "username", Reason: "already in use"}
	}

	q = db.Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("user_id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &types.ValidationError{Field: "email", Reason: "already in use"}
	}
	return nil
}

// CreateUser inserts a new user into a company. Role assignment limits
// (the tier matrix, or the forced FullAccess on the admin path) are the
// caller's responsibility; the service validates shape and uniqueness.
func CreateUser(db *gorm.DB, companyID uint64, input UserInput) (*models.User, error) {
	if input.Username == "" {
		return nil, &types.ValidationError{Field: "username", Reason: "required"}
	}
	if input.Email == "" {
		return nil, &types.ValidationError{Field: "email", Reason: "required"}
	}
	if input.Password == "" {
		return nil, &types.ValidationError{Field: "password", Reason: "required"}
	}
	roleID := input.RoleID
	if roleID == 0 {
		roleID = models.RoleReadOnly
	}
	if !roleID.Valid() {
		return nil, &types.ValidationError{Field: "role_id", Reason: "unknown role"}
	}

	if err := checkUserUniqueness(db, input.Username, input.Email, 0); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	user := models.User{
		CompanyID: companyID,
		RoleID:    roleID,
		Username:  input.Username,
		Email:     input.Email,
		Password:  hash,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsActive:  active,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, mapUniqueViolation(err)
	}
	return &user, nil
}

// UpdateUser applies input to an existing user. A blank password keeps
// the current hash.
func UpdateUser(db *gorm.DB, user *models.User, input UserInput) (*models.User, error) {
	if input.Username == "" {
		return nil, &types.ValidationError{Field: "username", Reason: "required"}
	}
	if input.Email == "" {
		return nil, &types.ValidationError{Field: "email", Reason: "required"}
	}
	if input.RoleID != 0 && !input.RoleID.Valid() {
		return nil, &types.ValidationError{Field: "role_id", Reason: "unknown role"}
	}

	if err := checkUserUniqueness(db, input.Username, input.Email, user.UserID); err != nil {
		return nil, err
	}

	user.Username = input.Username
	user.Email = input.Email
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	if input.RoleID != 0 {
		user.RoleID = input.RoleID
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != "" {
		hash, err := HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := db.Save(user).Error; err != nil {
		return nil, mapUniqueViolation(err)
	}
	return user, nil
}

// mapUniqueViolation converts a store-level unique constraint hit into
// the same ValidationError the pre-check produces, so racing creators
// see a consistent rejection.
func mapUniqueViolation(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &types.ValidationError{Field: "username", Reason: "already in use"}
	}
	return err
}

// GetUserForCompany returns an active user scoped to a company. A row
// belonging to another company yields NotFound, indistinguishable from
// a missing id.
func GetUserForCompany(db *gorm.DB, userID, companyID uint64) (*models.User, error) {
	var user models.User
	err := db.Scopes(models.NotDeleted).
		Preload("Company").Preload("Role").
		Where("user_id = ? AND company_id = ?", userID, companyID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUser returns an active user by id without tenant scoping (the
// superuser administration path).
func GetUser(db *gorm.DB, userID uint64) (*models.User, error) {
	var user models.User
	err := db.Scopes(models.NotDeleted).
		Preload("Company").Preload("Role").
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns active users across tenants, optionally filtered by
// a free-text query and a company id, newest first. Superuser only.
func ListUsers(db *gorm.DB, query string, companyID uint64) ([]models.User, error) {
	q := db.Scopes(models.NotDeleted).Preload("Company").Preload("Role")

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like, like)
	}
	if companyID != 0 {
		q = q.Where("company_id = ?", companyID)
	}

	var users []models.User
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListCompanyUsers returns a company's active users excluding the
// requesting actor, newest first.
func ListCompanyUsers(db *gorm.DB, companyID, excludeUserID uint64, query string) ([]models.User, error) {
	q := db.Scopes(models.NotDeleted).
		Preload("Role").
		Where("company_id = ?", companyID)
	if excludeUserID != 0 {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like, like)
	}

	var users []models.User
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
