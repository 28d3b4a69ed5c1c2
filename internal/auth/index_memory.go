package auth

import (
	"context"
	"sync"
)

// RememberedIndex answers remembered-token membership without a round trip to
// the durable store. It is a cache: the account's remembered set in the store
// stays the source of truth.
type RememberedIndex interface {
	Add(ctx context.Context, accountID, digest string) error
	Contains(ctx context.Context, accountID, digest string) (bool, error)
	Remove(ctx context.Context, accountID, digest string) error
}

// MemoryIndex is the process-local implementation used in dev mode and tests.
type MemoryIndex struct {
	mu      sync.RWMutex
	digests map[string]map[string]struct{}
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{digests: make(map[string]map[string]struct{})}
}

func (i *MemoryIndex) Add(_ context.Context, accountID, digest string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	set, ok := i.digests[accountID]
	if !ok {
		set = make(map[string]struct{})
		i.digests[accountID] = set
	}
	set[digest] = struct{}{}
	return nil
}

func (i *MemoryIndex) Contains(_ context.Context, accountID, digest string) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.digests[accountID][digest]
	return ok, nil
}

func (i *MemoryIndex) Remove(_ context.Context, accountID, digest string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.digests[accountID], digest)
	return nil
}
