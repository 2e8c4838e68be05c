package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bestsplit/bestsplit/internal/ledger"
	"github.com/bestsplit/bestsplit/internal/storage/sqlite"
	"github.com/bestsplit/bestsplit/internal/syncer"
)

// testEnv wires a real store, an in-process ledger and a synchronizer
// the way the server does, with a short retry delay.
type testEnv struct {
	store    *sqlite.Store
	remote   *ledger.Memory
	sync     *syncer.Synchronizer
	groups   *GroupService
	expenses *ExpenseService
	settles  *SettlementService
	balances *BalanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	remote := ledger.NewMemory()
	sync := syncer.New(store, remote, syncer.WithRetryDelay(time.Millisecond))
	t.Cleanup(sync.Close)

	balances := NewBalanceService(store, sync)
	return &testEnv{
		store:    store,
		remote:   remote,
		sync:     sync,
		groups:   NewGroupService(store, sync),
		expenses: NewExpenseService(store, sync, balances),
		settles:  NewSettlementService(store, sync, balances),
		balances: balances,
	}
}
