package credentials

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for unit tests and local
// development without a DynamoDB endpoint.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

// memoryItem keeps the raw company_id typing so legacy string-typed
// records can be simulated.
type memoryItem struct {
	cred            Credential
	companyAsString bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

// PutLegacyString stores a record whose company_id attribute is typed
// as a string, the way historical writers produced it. Only reachable
// via the string-typed scan fallback.
func (s *MemoryStore) PutLegacyString(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[cred.ClientID] = memoryItem{cred: cred, companyAsString: true}
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) Put(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[cred.ClientID] = memoryItem{cred: cred}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, clientID string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[clientID]
	if !ok {
		return nil, nil
	}
	cred := item.cred
	return &cred, nil
}

// QueryByCompany mimics the company_id index: like the real index it
// only covers number-typed attributes, so legacy string-typed rows are
// invisible here.
func (s *MemoryStore) QueryByCompany(_ context.Context, match CompanyMatch) ([]Credential, error) {
	if !match.Numeric {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var creds []Credential
	for _, item := range s.items {
		if !item.companyAsString && item.cred.CompanyID == match.CompanyID {
			creds = append(creds, item.cred)
		}
	}
	return creds, nil
}

// ScanByCompany matches by value AND attribute typing, mirroring
// DynamoDB filter-expression semantics.
func (s *MemoryStore) ScanByCompany(_ context.Context, match CompanyMatch) ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var creds []Credential
	for _, item := range s.items {
		if item.companyAsString == match.Numeric {
			continue
		}
		if item.cred.CompanyID == match.CompanyID {
			creds = append(creds, item.cred)
		}
	}
	return creds, nil
}

func (s *MemoryStore) SetActive(_ context.Context, clientID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[clientID]
	if !ok {
		return nil
	}
	item.cred.IsActive = active
	s.items[clientID] = item
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, clientID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
