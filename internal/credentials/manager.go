package credentials

import (
	"context"
	"log"
	"time"

	"github.com/teraonavi/navi-admin/internal/types"
)

// Manager drives the credential lifecycle against a Store. Every store
// call runs under a bounded timeout; the manager itself is stateless.
type Manager struct {
	store   Store
	timeout time.Duration
}

// NewManager wraps a store. A zero timeout disables the bound.
func NewManager(store Store, timeout time.Duration) *Manager {
	return &Manager{store: store, timeout: timeout}
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

// Issue generates and stores a new active credential for a company and
// returns it together with the raw client secret — the only time the
// secret is ever visible. A store failure yields CredentialStoreError;
// callers treat the owning company as the source of truth and surface
// the failure as a warning instead of rolling the company back.
func (m *Manager) Issue(ctx context.Context, companyID uint64) (*Credential, string, error) {
	clientID, clientSecret, secretHash, err := Generate()
	if err != nil {
		return nil, "", err
	}

	cred := Credential{
		ClientID:   clientID,
		CompanyID:  companyID,
		SecretHash: secretHash,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if err := m.store.Put(ctx, cred); err != nil {
		return nil, "", &types.CredentialStoreError{Op: "put", Err: err}
	}

	return &cred, clientSecret, nil
}

// Verify checks a client_id/client_secret pair and returns the
// associated company id. ok is false when the record is absent,
// inactive, the secret hash does not match, or the store errs.
func (m *Manager) Verify(ctx context.Context, clientID, clientSecret string) (companyID uint64, ok bool) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cred, err := m.store.Get(ctx, clientID)
	if err != nil {
		log.Printf("credential verify: store get failed: %v", err)
		return 0, false
	}
	if cred == nil || !cred.IsActive {
		return 0, false
	}
	if HashSecret(clientSecret) != cred.SecretHash {
		return 0, false
	}
	return cred.CompanyID, true
}

// Deactivate revokes a single credential by flipping is_active off,
// keeping the record for audit. Company-wide teardown uses RevokeAll.
func (m *Manager) Deactivate(ctx context.Context, clientID string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if err := m.store.SetActive(ctx, clientID, false); err != nil {
		return &types.CredentialStoreError{Op: "update", Err: err}
	}
	return nil
}

// ListByCompany returns the credentials currently recorded for a
// company via the company_id index.
func (m *Manager) ListByCompany(ctx context.Context, companyID uint64) ([]Credential, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	creds, err := m.store.QueryByCompany(ctx, CompanyMatch{CompanyID: companyID, Numeric: true})
	if err != nil {
		return nil, &types.CredentialStoreError{Op: "query", Err: err}
	}
	return creds, nil
}

// RevokeAll removes every credential record associated with a company.
// Lookup strategies run in order, stopping at the first that yields
// records: the company_id index, a full scan matching company_id as a
// number, then a full scan matching it as a string — the last exists
// only for legacy rows written with drifted attribute typing. Zero
// matches is still success; false means an unrecoverable store error.
func (m *Manager) RevokeAll(ctx context.Context, companyID uint64) bool {
	deleted, err := m.revokeVia(ctx, companyID, func(ctx context.Context) ([]Credential, error) {
		return m.store.QueryByCompany(ctx, CompanyMatch{CompanyID: companyID, Numeric: true})
	})
	if err != nil {
		// The index may be missing or mistyped; fall through to scans.
		log.Printf("credential revoke: index query failed, falling back to scan: %v", err)
		deleted = 0
	}

	if deleted == 0 {
		deleted, err = m.revokeVia(ctx, companyID, func(ctx context.Context) ([]Credential, error) {
			return m.store.ScanByCompany(ctx, CompanyMatch{CompanyID: companyID, Numeric: true})
		})
		if err != nil {
			log.Printf("credential revoke: numeric scan failed for company %d: %v", companyID, err)
			return false
		}
	}

	if deleted == 0 {
		_, err = m.revokeVia(ctx, companyID, func(ctx context.Context) ([]Credential, error) {
			return m.store.ScanByCompany(ctx, CompanyMatch{CompanyID: companyID, Numeric: false})
		})
		if err != nil {
			log.Printf("credential revoke: string scan failed for company %d: %v", companyID, err)
			return false
		}
	}

	return true
}

// revokeVia runs one lookup strategy and deletes everything it finds.
func (m *Manager) revokeVia(ctx context.Context, companyID uint64, lookup func(context.Context) ([]Credential, error)) (int, error) {
	lookupCtx, cancel := m.withTimeout(ctx)
	defer cancel()

	creds, err := lookup(lookupCtx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, cred := range creds {
		delCtx, cancelDel := m.withTimeout(ctx)
		err := m.store.Delete(delCtx, cred.ClientID)
		cancelDel()
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Ping verifies the backing store is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	return m.store.Ping(ctx)
}
