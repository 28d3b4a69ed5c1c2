package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "carelink/pkg/domain"
)

func seedAccount(t *testing.T, store *MemoryAccountStore) Account {
	t.Helper()
	account := Account{
		ID:       id.NewAccountID(),
		Username: "maria",
		Email:    "maria@example.com",
		Role:     id.RoleCaregiver,
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func TestAppendRememberedToken_CapEvictsOldest(t *testing.T) {
	store := NewMemoryAccountStore()
	account := seedAccount(t, store)

	for i := 0; i < 5; i++ {
		evicted, err := store.AppendRememberedToken(context.Background(), account.ID, fmt.Sprintf("digest-%d", i), 3)
		require.NoError(t, err)
		if i < 3 {
			assert.Zero(t, evicted)
		} else {
			assert.Equal(t, 1, evicted)
		}
	}

	stored, err := store.FindAccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"digest-2", "digest-3", "digest-4"}, stored.RememberedTokens)
}

func TestAppendRememberedToken_ConcurrentAppendsAllSurvive(t *testing.T) {
	store := NewMemoryAccountStore()
	account := seedAccount(t, store)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.AppendRememberedToken(context.Background(), account.ID, fmt.Sprintf("digest-%d", i), n)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := store.FindAccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Len(t, stored.RememberedTokens, n)
}

func TestRemoveRememberedToken(t *testing.T) {
	store := NewMemoryAccountStore()
	account := seedAccount(t, store)

	_, err := store.AppendRememberedToken(context.Background(), account.ID, "digest-a", 5)
	require.NoError(t, err)
	_, err = store.AppendRememberedToken(context.Background(), account.ID, "digest-b", 5)
	require.NoError(t, err)

	require.NoError(t, store.RemoveRememberedToken(context.Background(), account.ID, "digest-a"))

	stored, err := store.FindAccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"digest-b"}, stored.RememberedTokens)
}
