// Package ledger provides an in-memory journaled asset ledger implementing
// the engine's AssetLedger collaborator. Balance mutations are recorded in a
// journal so callers can snapshot the ledger and revert every change made
// after the snapshot, giving pool operations all-or-nothing semantics.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

type balanceKey struct {
	holder string
	asset  string
}

// journalEntry records a single balance delta so it can be undone.
type journalEntry struct {
	key  balanceKey
	prev math.Int
}

// Ledger is an in-memory balance ledger keyed by (holder, asset). Safe for
// concurrent use; snapshots and reverts follow the journaling model of EVM
// state databases.
type Ledger struct {
	mu       sync.RWMutex
	balances map[balanceKey]math.Int
	journal  []journalEntry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[balanceKey]math.Int),
	}
}

// Mint credits amount of asset to holder, creating supply. Test and genesis
// helper; not part of the AssetLedger interface.
func (l *Ledger) Mint(holder, asset string, amount math.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := balanceKey{holder: holder, asset: asset}
	l.record(key)
	l.balances[key] = l.getLocked(key).Add(amount)
}

// Transfer moves amount of asset between holders. Fails without side effects
// when amount is not positive or the source balance is insufficient.
func (l *Ledger) Transfer(_ context.Context, from, to, asset string, amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("transfer amount must not be negative: %s", amount)
	}
	if amount.IsZero() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromKey := balanceKey{holder: from, asset: asset}
	toKey := balanceKey{holder: to, asset: asset}

	fromBal := l.getLocked(fromKey)
	if fromBal.LT(amount) {
		return fmt.Errorf("insufficient %s balance: %s has %s, need %s", asset, from, fromBal, amount)
	}

	l.record(fromKey)
	l.record(toKey)
	l.balances[fromKey] = fromBal.Sub(amount)
	l.balances[toKey] = l.getLocked(toKey).Add(amount)
	return nil
}

// BalanceOf returns the holder's balance of asset.
func (l *Ledger) BalanceOf(_ context.Context, holder, asset string) math.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.getLocked(balanceKey{holder: holder, asset: asset})
}

// Snapshot marks the current state and returns a revision id for
// RevertToSnapshot.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.journal)
}

// RevertToSnapshot undoes every balance change recorded after the given
// revision. A revision from a stale or already-reverted snapshot is a no-op
// beyond the journal's current length.
func (l *Ledger) RevertToSnapshot(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id > len(l.journal) {
		return
	}
	for i := len(l.journal) - 1; i >= id; i-- {
		entry := l.journal[i]
		if entry.prev.IsZero() {
			delete(l.balances, entry.key)
		} else {
			l.balances[entry.key] = entry.prev
		}
	}
	l.journal = l.journal[:id]
}

func (l *Ledger) getLocked(key balanceKey) math.Int {
	if bal, ok := l.balances[key]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (l *Ledger) record(key balanceKey) {
	l.journal = append(l.journal, journalEntry{key: key, prev: l.getLocked(key)})
}
