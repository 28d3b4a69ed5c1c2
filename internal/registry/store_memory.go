package registry

import (
	"context"
	"sync"

	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

// In-memory stores keep dev mode and unit tests lightweight. They
// intentionally favor clarity over performance.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]Account
	byUser   map[string]id.AccountID
	byEmail  map[string]id.AccountID
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[id.AccountID]Account),
		byUser:   make(map[string]id.AccountID),
		byEmail:  make(map[string]id.AccountID),
	}
}

func (s *MemoryAccountStore) CreateAccount(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[account.Username]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byEmail[account.Email]; ok {
		return sentinel.ErrConflict
	}
	s.accounts[account.ID] = account
	s.byUser[account.Username] = account.ID
	s.byEmail[account.Email] = account.ID
	return nil
}

func (s *MemoryAccountStore) FindAccountByID(_ context.Context, accountID id.AccountID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[accountID]; ok {
		return cloneAccount(account), nil
	}
	return Account{}, sentinel.ErrNotFound
}

func (s *MemoryAccountStore) FindAccountByUsername(_ context.Context, username string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.byUser[username]
	if !ok {
		return Account{}, sentinel.ErrNotFound
	}
	return cloneAccount(s.accounts[accountID]), nil
}

// AppendRememberedToken holds the write lock across the whole read-modify-write,
// which is the memory-store equivalent of the atomic array UPDATE in Postgres.
func (s *MemoryAccountStore) AppendRememberedToken(_ context.Context, accountID id.AccountID, digest string, cap int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	tokens := append(append([]string(nil), account.RememberedTokens...), digest)
	evicted := 0
	if cap > 0 && len(tokens) > cap {
		evicted = len(tokens) - cap
		tokens = tokens[evicted:]
	}
	account.RememberedTokens = tokens
	s.accounts[accountID] = account
	return evicted, nil
}

func (s *MemoryAccountStore) RemoveRememberedToken(_ context.Context, accountID id.AccountID, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	tokens := account.RememberedTokens[:0:0]
	for _, t := range account.RememberedTokens {
		if t != digest {
			tokens = append(tokens, t)
		}
	}
	account.RememberedTokens = tokens
	s.accounts[accountID] = account
	return nil
}

func cloneAccount(a Account) Account {
	a.RememberedTokens = append([]string(nil), a.RememberedTokens...)
	return a
}

type MemoryAdultStore struct {
	mu     sync.RWMutex
	adults map[id.AdultID]Adult
	// order preserves insertion order per account for deterministic listings.
	order []id.AdultID
}

func NewMemoryAdultStore() *MemoryAdultStore {
	return &MemoryAdultStore{adults: make(map[id.AdultID]Adult)}
}

func (s *MemoryAdultStore) CreateAdult(_ context.Context, adult Adult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.adults[adult.ID]; ok {
		return sentinel.ErrConflict
	}
	s.adults[adult.ID] = adult
	s.order = append(s.order, adult.ID)
	return nil
}

func (s *MemoryAdultStore) FindAdultByID(_ context.Context, adultID id.AdultID) (Adult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if adult, ok := s.adults[adultID]; ok {
		return adult, nil
	}
	return Adult{}, sentinel.ErrNotFound
}

func (s *MemoryAdultStore) FindAdultsByIDs(_ context.Context, adultIDs []id.AdultID) ([]Adult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Adult, 0, len(adultIDs))
	for _, adultID := range adultIDs {
		if adult, ok := s.adults[adultID]; ok {
			out = append(out, adult)
		}
	}
	return out, nil
}

func (s *MemoryAdultStore) ListAdultsByAccount(_ context.Context, accountID id.AccountID) ([]Adult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Adult
	for _, adultID := range s.order {
		if adult := s.adults[adultID]; adult.AccountID == accountID {
			out = append(out, adult)
		}
	}
	return out, nil
}
