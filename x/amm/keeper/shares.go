package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Pool share accounting. Shares are tracked per pool in the keeper's own
// ledger rather than as assets in the external AssetLedger, so share supply
// and reserve accounting stay in one place.

// GetShares returns the holder's share balance in a pool.
func (k *Keeper) GetShares(_ context.Context, poolID uint64, holder string) (math.Int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	holders, ok := k.shares[poolID]
	if !ok {
		return math.Int{}, types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}
	if bal, ok := holders[holder]; ok {
		return bal, nil
	}
	return math.ZeroInt(), nil
}

// TransferShares moves pool shares between holders. The null holder's locked
// minimum cannot be moved.
func (k *Keeper) TransferShares(ctx context.Context, poolID uint64, from, to string, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrapf("share transfer amount must be positive, got %s", amount)
	}
	if from == types.NullHolder {
		return types.ErrUnauthorized.Wrap("locked minimum shares cannot be transferred")
	}

	_, done := k.beginOp(ctx)
	defer done()

	k.mu.Lock()
	defer k.mu.Unlock()
	holders, ok := k.shares[poolID]
	if !ok {
		return types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}
	fromBal, ok := holders[from]
	if !ok {
		fromBal = math.ZeroInt()
	}
	if fromBal.LT(amount) {
		return types.ErrInsufficientShares.Wrapf("%s holds %s shares in pool %d, need %s",
			from, fromBal, poolID, amount)
	}
	holders[from] = fromBal.Sub(amount)
	if bal, ok := holders[to]; ok {
		holders[to] = bal.Add(amount)
	} else {
		holders[to] = amount
	}
	return nil
}

// mintShares credits shares to holder and grows the pool's supply. Callers
// must hold the operation lock.
func (k *Keeper) mintShares(pool *types.Pool, holder string, amount math.Int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	holders := k.shares[pool.Id]
	if bal, ok := holders[holder]; ok {
		holders[holder] = bal.Add(amount)
	} else {
		holders[holder] = amount
	}
	pool.ShareSupply = pool.ShareSupply.Add(amount)
}

// burnShares debits shares from holder and shrinks the pool's supply.
// Callers must hold the operation lock and have verified the balance.
func (k *Keeper) burnShares(pool *types.Pool, holder string, amount math.Int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	holders := k.shares[pool.Id]
	bal, ok := holders[holder]
	if !ok {
		bal = math.ZeroInt()
	}
	if bal.LT(amount) {
		return types.ErrInsufficientShares.Wrapf("%s holds %s shares in pool %d, need %s",
			holder, bal, pool.Id, amount)
	}
	holders[holder] = bal.Sub(amount)
	pool.ShareSupply = pool.ShareSupply.Sub(amount)
	return nil
}
