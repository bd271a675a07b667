package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. ErrNotFound is used for both
// genuinely missing rows and cross-tenant rows: a tenant actor probing
// another company's ids must receive a signal indistinguishable from a
// nonexistent id.
var (
	ErrNotFound               = errors.New("not found")
	ErrAuthenticationRequired = errors.New("authentication required")
)

// AuthorizationDeniedError carries the guard's deny reason to the boundary.
type AuthorizationDeniedError struct {
	Reason string
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

// ValidationError reports a rejected field, e.g. a username or email
// already taken by any row including soft-deleted ones.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// CredentialStoreError reports a failed credential key-value store
// operation. During company create/delete it is surfaced as a warning,
// never rolled into the relational outcome.
type CredentialStoreError struct {
	Op  string
	Err error
}

func (e *CredentialStoreError) Error() string {
	return fmt.Sprintf("credential store %s failed: %v", e.Op, e.Err)
}

func (e *CredentialStoreError) Unwrap() error {
	return e.Err
}

// ObjectStoreError reports a failed object storage operation.
type ObjectStoreError struct {
	Op  string
	Err error
}

func (e *ObjectStoreError) Error() string {
	return fmt.Sprintf("object store %s failed: %v", e.Op, e.Err)
}

func (e *ObjectStoreError) Unwrap() error {
	return e.Err
}

// CascadeIntegrityError means the relational transaction backing a
// cascade failed and was rolled back; no partial cascade is visible.
type CascadeIntegrityError struct {
	Err error
}

func (e *CascadeIntegrityError) Error() string {
	return fmt.Sprintf("cascade transaction failed: %v", e.Err)
}

func (e *CascadeIntegrityError) Unwrap() error {
	return e.Err
}
