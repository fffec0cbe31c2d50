package keeper

import (
	"context"
	"fmt"
	"sort"

	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// MaxIterationLimit caps unbounded pool listings.
const MaxIterationLimit = 100

// CreatePool registers a new empty pool for an asset pair. The pair is
// canonicalized lexicographically; at most one pool exists per unordered
// pair. The pool starts with zero reserves and zero shares, to be seeded by
// a first Mint.
func (k *Keeper) CreatePool(ctx context.Context, creator, assetA, assetB string) (*types.Pool, error) {
	if assetA == assetB {
		return nil, types.ErrIdenticalAssets.Wrapf("cannot create pool for %s/%s", assetA, assetB)
	}
	if assetA == "" || assetB == "" {
		return nil, types.ErrEmptyAsset.Wrap("asset identifiers cannot be empty")
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	assetA, assetB = types.SortAssets(assetA, assetB)
	pairKey := types.PairKey(assetA, assetB)

	k.mu.Lock()
	if id, exists := k.poolByPair[pairKey]; exists {
		k.mu.Unlock()
		return nil, types.ErrPoolAlreadyExists.Wrapf("pool %d already exists for pair %s", id, pairKey)
	}
	poolID := k.nextPoolID
	k.nextPoolID++
	pool := types.NewPool(poolID, assetA, assetB, creator)
	pool.LastUpdateUnix = k.clock.Now().Unix()
	k.pools[poolID] = pool
	k.poolByPair[pairKey] = poolID
	k.shares[poolID] = make(map[string]math.Int)
	k.mu.Unlock()

	k.events.EmitEvent(types.NewEvent(
		types.EventTypePoolCreated,
		types.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
		types.NewAttribute(types.AttributeKeyAssetA, assetA),
		types.NewAttribute(types.AttributeKeyAssetB, assetB),
		types.NewAttribute(types.AttributeKeyCreator, creator),
	))
	k.metrics.PoolCreations.Inc()
	k.metrics.PoolsTotal.Inc()
	k.logger.Info("pool created", "pool_id", poolID, "pair", pairKey, "creator", creator)

	if err := k.hooks.AfterPoolCreated(ctx, poolID, assetA, assetB, creator); err != nil {
		k.logger.Error("pool creation hook failed", "pool_id", poolID, "error", err)
	}

	return pool.Clone(), nil
}

// GetPool retrieves a pool by its unique numeric ID. Returns a copy; the
// keeper owns the live struct.
func (k *Keeper) GetPool(_ context.Context, poolID uint64) (*types.Pool, error) {
	pool, err := k.getPool(poolID)
	if err != nil {
		return nil, err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return pool.Clone(), nil
}

// GetPoolByAssets retrieves a pool by its asset pair, order-independent.
func (k *Keeper) GetPoolByAssets(ctx context.Context, assetA, assetB string) (*types.Pool, error) {
	k.mu.RLock()
	poolID, ok := k.poolByPair[types.PairKey(assetA, assetB)]
	k.mu.RUnlock()
	if !ok {
		return nil, types.ErrPoolNotFound.Wrapf("no pool for pair %s", types.PairKey(assetA, assetB))
	}
	return k.GetPool(ctx, poolID)
}

// GetAllPools returns up to MaxIterationLimit pools ordered by ID.
func (k *Keeper) GetAllPools(_ context.Context) []types.Pool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	ids := make([]uint64, 0, len(k.pools))
	for id := range k.pools {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	pools := make([]types.Pool, 0, len(ids))
	for _, id := range ids {
		if len(pools) >= MaxIterationLimit {
			break
		}
		pools = append(pools, *k.pools[id].Clone())
	}
	return pools
}

// GetReserves returns the pool's tracked reserves and last update timestamp.
func (k *Keeper) GetReserves(_ context.Context, poolID uint64) (reserveA, reserveB math.Int, lastUpdateUnix int64, err error) {
	pool, err := k.getPool(poolID)
	if err != nil {
		return math.Int{}, math.Int{}, 0, err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return pool.ReserveA, pool.ReserveB, pool.LastUpdateUnix, nil
}

// SetFeeRecipient updates the address that accrues protocol fee shares.
// Restricted to the fee admin. An empty recipient disables the protocol fee.
func (k *Keeper) SetFeeRecipient(_ context.Context, caller, recipient string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if caller != k.feeAdmin {
		return types.ErrUnauthorized.Wrapf("caller %s is not the fee admin", caller)
	}
	k.feeRecipient = recipient
	k.events.EmitEvent(types.NewEvent(
		types.EventTypeFeeConfig,
		types.NewAttribute(types.AttributeKeyFeeRecipient, recipient),
	))
	return nil
}

// SetFeeAdmin transfers fee administration to a new address. Restricted to
// the current fee admin; the new admin cannot be empty.
func (k *Keeper) SetFeeAdmin(_ context.Context, caller, admin string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if caller != k.feeAdmin {
		return types.ErrUnauthorized.Wrapf("caller %s is not the fee admin", caller)
	}
	if admin == "" {
		return types.ErrEmptyAsset.Wrap("fee admin cannot be empty")
	}
	k.feeAdmin = admin
	k.events.EmitEvent(types.NewEvent(
		types.EventTypeFeeConfig,
		types.NewAttribute(types.AttributeKeyFeeAdmin, admin),
	))
	return nil
}

// FeeRecipient returns the configured protocol fee recipient ("" when off).
func (k *Keeper) FeeRecipient() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.feeRecipient
}

// FeeAdmin returns the current fee admin.
func (k *Keeper) FeeAdmin() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.feeAdmin
}
