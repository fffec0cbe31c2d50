package keeper

import (
	"context"
	"sync"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/benbjohnson/clock"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Keeper owns all engine state: the pool registry, per-pool share ledgers and
// the fee configuration. Asset custody lives in the injected AssetLedger;
// the keeper only moves funds through it (push-then-call, it never pulls).
//
// Concurrency model: opMu serializes top-level state-changing operations so
// snapshot/revert is race-free; mu guards the maps for readers. Per-pool
// reentrancy is caught by the locked flag, not a mutex, so a swap callback
// that re-enters the same pool fails with ErrReentrancy instead of
// deadlocking.
type Keeper struct {
	ledger  types.AssetLedger
	logger  log.Logger
	clock   clock.Clock
	metrics *Metrics
	events  *types.EventManager
	hooks   types.MultiAmmHooks
	params  types.Params

	// opMu serializes top-level mutating operations.
	opMu sync.Mutex
	// mu guards the maps and fee configuration below.
	mu sync.RWMutex

	pools      map[uint64]*types.Pool
	poolByPair map[string]uint64
	nextPoolID uint64

	// shares is the per-pool share ledger: pool id -> holder -> shares.
	shares map[uint64]map[string]math.Int

	// locked marks pools with a state-changing call in flight.
	locked map[uint64]bool

	feeAdmin     string
	feeRecipient string
}

// NewKeeper creates a new amm Keeper instance. feeAdmin is the sole
// authority allowed to change the protocol fee configuration.
func NewKeeper(ledger types.AssetLedger, logger log.Logger, clk clock.Clock, feeAdmin string) *Keeper {
	if clk == nil {
		clk = clock.New()
	}
	return &Keeper{
		ledger:     ledger,
		logger:     logger.With("module", "x/"+types.ModuleName),
		clock:      clk,
		metrics:    NewMetrics(),
		events:     types.NewEventManager(),
		params:     types.DefaultParams(),
		pools:      make(map[uint64]*types.Pool),
		poolByPair: make(map[string]uint64),
		nextPoolID: 1,
		shares:     make(map[uint64]map[string]math.Int),
		locked:     make(map[uint64]bool),
		feeAdmin:   feeAdmin,
	}
}

// SetHooks registers engine callbacks. Must be called before use, not
// concurrently with operations.
func (k *Keeper) SetHooks(hooks ...types.AmmHooks) {
	k.hooks = types.NewMultiAmmHooks(hooks...)
}

// SetParams replaces the engine parameters.
func (k *Keeper) SetParams(params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.params = params
	return nil
}

// GetParams returns the current engine parameters.
func (k *Keeper) GetParams() types.Params {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.params
}

// Events returns the engine's event manager.
func (k *Keeper) Events() *types.EventManager {
	return k.events
}

// Logger returns the keeper's logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// engineCallKey marks contexts that already hold the operation lock, so a
// swap callback can issue nested engine calls without deadlocking.
type engineCallKey struct{}

func markEngineCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, engineCallKey{}, true)
}

func inEngineCall(ctx context.Context) bool {
	v, _ := ctx.Value(engineCallKey{}).(bool)
	return v
}

// beginOp acquires the top-level operation lock unless the context already
// holds it (nested call from a swap callback). Returns the context to pass
// down and a release function.
func (k *Keeper) beginOp(ctx context.Context) (context.Context, func()) {
	if inEngineCall(ctx) {
		return ctx, func() {}
	}
	k.opMu.Lock()
	return markEngineCall(ctx), k.opMu.Unlock
}

// tryLockPool sets the pool's reentrancy flag, failing if a state-changing
// call is already in flight for it.
func (k *Keeper) tryLockPool(poolID uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locked[poolID] {
		return types.ErrReentrancy.Wrapf("pool %d is locked", poolID)
	}
	k.locked[poolID] = true
	return nil
}

func (k *Keeper) unlockPool(poolID uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.locked, poolID)
}

// stateSnapshot captures all keeper state plus a ledger revision, for
// all-or-nothing rollback of a failed operation.
type stateSnapshot struct {
	pools        map[uint64]*types.Pool
	poolByPair   map[string]uint64
	nextPoolID   uint64
	shares       map[uint64]map[string]math.Int
	feeAdmin     string
	feeRecipient string
	ledgerRev    int
}

// snapshotState copies the keeper's state and marks the ledger. Callers must
// hold the operation lock.
func (k *Keeper) snapshotState() *stateSnapshot {
	k.mu.RLock()
	defer k.mu.RUnlock()

	snap := &stateSnapshot{
		pools:        make(map[uint64]*types.Pool, len(k.pools)),
		poolByPair:   make(map[string]uint64, len(k.poolByPair)),
		nextPoolID:   k.nextPoolID,
		shares:       make(map[uint64]map[string]math.Int, len(k.shares)),
		feeAdmin:     k.feeAdmin,
		feeRecipient: k.feeRecipient,
		ledgerRev:    k.ledger.Snapshot(),
	}
	for id, pool := range k.pools {
		snap.pools[id] = pool.Clone()
	}
	for key, id := range k.poolByPair {
		snap.poolByPair[key] = id
	}
	for id, holders := range k.shares {
		cp := make(map[string]math.Int, len(holders))
		for holder, bal := range holders {
			cp[holder] = bal
		}
		snap.shares[id] = cp
	}
	return snap
}

// revertState restores the keeper and the ledger to the snapshot. Callers
// must hold the operation lock.
func (k *Keeper) revertState(snap *stateSnapshot) {
	k.ledger.RevertToSnapshot(snap.ledgerRev)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pools = snap.pools
	k.poolByPair = snap.poolByPair
	k.nextPoolID = snap.nextPoolID
	k.shares = snap.shares
	k.feeAdmin = snap.feeAdmin
	k.feeRecipient = snap.feeRecipient
}

// mutatePool runs fn under the state mutex. Live pool structs are shared
// with concurrent readers, so every pool field write goes through here.
func (k *Keeper) mutatePool(fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	fn()
}

// getPool returns the live pool struct. Callers must treat it as owned by
// the keeper and only mutate it through mutatePool while holding the
// operation lock.
func (k *Keeper) getPool(poolID uint64) (*types.Pool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pool, ok := k.pools[poolID]
	if !ok {
		return nil, types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}
	return pool, nil
}

// poolBalances reads the pool's actual custody balances from the ledger.
func (k *Keeper) poolBalances(ctx context.Context, pool *types.Pool) (balanceA, balanceB math.Int) {
	addr := pool.Address()
	return k.ledger.BalanceOf(ctx, addr, pool.AssetA), k.ledger.BalanceOf(ctx, addr, pool.AssetB)
}
