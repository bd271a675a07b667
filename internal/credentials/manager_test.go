package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/teraonavi/navi-admin/internal/credentials"
)

func newTestManager() (*credentials.Manager, *credentials.MemoryStore) {
	store := credentials.NewMemoryStore()
	return credentials.NewManager(store, time.Second), store
}

func TestIssueAndVerify(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	cred, secret, err := m.Issue(ctx, 7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(cred.ClientID) != 32 {
		t.Errorf("client id length = %d, want 32 hex chars", len(cred.ClientID))
	}
	if len(secret) != 64 {
		t.Errorf("client secret length = %d, want 64 hex chars", len(secret))
	}
	if cred.SecretHash == secret {
		t.Error("raw secret stored instead of hash")
	}

	companyID, ok := m.Verify(ctx, cred.ClientID, secret)
	if !ok || companyID != 7 {
		t.Errorf("Verify = (%d, %v), want (7, true)", companyID, ok)
	}

	if _, ok := m.Verify(ctx, cred.ClientID, "wrong-secret"); ok {
		t.Error("wrong secret verified")
	}
	if _, ok := m.Verify(ctx, "unknown-client", secret); ok {
		t.Error("unknown client verified")
	}
}

func TestDeactivateKeepsRecord(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	cred, secret, err := m.Issue(ctx, 3)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := m.Deactivate(ctx, cred.ClientID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, ok := m.Verify(ctx, cred.ClientID, secret); ok {
		t.Error("deactivated credential verified")
	}
	if store.Len() != 1 {
		t.Errorf("store has %d records after deactivate, want 1 (kept for audit)", store.Len())
	}
}

func TestListByCompanyUsesIndex(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	if _, _, err := m.Issue(ctx, 4); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := m.Issue(ctx, 4); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := m.Issue(ctx, 5); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// A legacy string-typed row is invisible to the index.
	store.PutLegacyString(credentials.Credential{
		ClientID:  "legacy-row",
		CompanyID: 4,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	})

	creds, err := m.ListByCompany(ctx, 4)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	if len(creds) != 2 {
		t.Errorf("ListByCompany = %d records, want 2 indexed records", len(creds))
	}
}

func TestRevokeAllNumericRecords(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	if _, _, err := m.Issue(ctx, 9); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := m.Issue(ctx, 9); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	keep, keepSecret, err := m.Issue(ctx, 10)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if ok := m.RevokeAll(ctx, 9); !ok {
		t.Fatal("RevokeAll returned false")
	}
	if store.Len() != 1 {
		t.Errorf("store has %d records, want only the other company's", store.Len())
	}
	if _, ok := m.Verify(ctx, keep.ClientID, keepSecret); !ok {
		t.Error("unrelated company's credential was revoked")
	}
}

func TestRevokeAllFallsBackToLegacyStringRecords(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	// Only drifted rows exist: the indexed query and the numeric scan
	// both come up empty, the string scan must sweep them.
	store.PutLegacyString(credentials.Credential{
		ClientID:  "legacy-1",
		CompanyID: 12,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	})
	store.PutLegacyString(credentials.Credential{
		ClientID:  "legacy-2",
		CompanyID: 12,
		IsActive:  false,
		CreatedAt: time.Now().UTC(),
	})

	if ok := m.RevokeAll(ctx, 12); !ok {
		t.Fatal("RevokeAll returned false")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d records after legacy revoke, want 0", store.Len())
	}
}

func TestRevokeAllNoRecordsIsSuccess(t *testing.T) {
	m, _ := newTestManager()

	if ok := m.RevokeAll(context.Background(), 999); !ok {
		t.Error("RevokeAll over an empty store returned false")
	}
}
