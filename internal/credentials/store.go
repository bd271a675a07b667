package credentials

import "context"

// CompanyMatch describes how company_id is compared during a query or
// scan. Numeric is the canonical typing for new writes; the string form
// exists only to reach legacy records written with inconsistent typing.
type CompanyMatch struct {
	CompanyID uint64
	Numeric   bool
}

// Store is the key-value store backing credentials, keyed by client_id
// with a secondary index on company_id. Query and Scan paginate
// internally until the store is exhausted and return every match.
type Store interface {
	// Put writes a record keyed by ClientID, replacing any existing one.
	Put(ctx context.Context, cred Credential) error
	// Get returns the record for a client id, or nil when absent.
	Get(ctx context.Context, clientID string) (*Credential, error)
	// QueryByCompany uses the company_id index.
	QueryByCompany(ctx context.Context, match CompanyMatch) ([]Credential, error)
	// ScanByCompany walks the whole table filtering on company_id.
	ScanByCompany(ctx context.Context, match CompanyMatch) ([]Credential, error)
	// SetActive flips the is_active attribute without deleting.
	SetActive(ctx context.Context, clientID string, active bool) error
	// Delete removes the record for a client id.
	Delete(ctx context.Context, clientID string) error
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
