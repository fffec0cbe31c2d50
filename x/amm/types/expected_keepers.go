package types

import (
	"context"

	"cosmossdk.io/math"
)

// AssetLedger is the external balance ledger the engine settles against.
// Pools never pull funds: callers push assets into a pool's custody address
// and then invoke the pool (push-then-call), so the engine only needs
// transfer and balance queries plus journaling for atomic rollback.
//
// Snapshot/RevertToSnapshot give the engine all-or-nothing semantics for
// operations that move funds before their final validity check (optimistic
// swap transfers, flash-swap callbacks, multi-hop chains).
type AssetLedger interface {
	// Transfer moves amount of asset from one holder to another. It must
	// fail without side effects when the source balance is insufficient.
	Transfer(ctx context.Context, from, to, asset string, amount math.Int) error

	// BalanceOf returns the holder's balance of asset.
	BalanceOf(ctx context.Context, holder, asset string) math.Int

	// Snapshot marks the current ledger state and returns a revision id.
	Snapshot() int

	// RevertToSnapshot undoes every change made after the given revision.
	RevertToSnapshot(id int)
}

// SwapCallback is invoked synchronously during a swap, after the optimistic
// output transfer and before the invariant check. The callback is expected
// to push the owed input assets into the pool's custody; any error aborts
// the swap with full rollback.
type SwapCallback func(ctx context.Context, sender string, amountAOut, amountBOut math.Int) error
