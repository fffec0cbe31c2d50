package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Liquidity provision follows push-then-call custody: the provider first
// transfers deposit assets (for Mint) or pool shares (for Burn) into the
// pool's custody, then invokes the operation. Amounts are measured as the
// difference between actual custody balances and tracked reserves, so the
// engine never pulls funds from the caller.

// Mint issues pool shares to the recipient for assets already pushed into
// the pool's custody. On the pool's first mint the issued shares are the
// geometric mean of the deposits minus a permanently locked minimum;
// afterwards they are proportional to the smaller side of the deposit so
// unbalanced deposits donate the excess to the pool.
func (k *Keeper) Mint(ctx context.Context, poolID uint64, to string) (math.Int, error) {
	if to == "" {
		return math.Int{}, types.ErrInvalidRecipient.Wrap("share recipient cannot be empty")
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	pool, err := k.getPool(poolID)
	if err != nil {
		return math.Int{}, err
	}
	if err := k.tryLockPool(poolID); err != nil {
		return math.Int{}, err
	}
	defer k.unlockPool(poolID)

	snap := k.snapshotState()
	shares, err := k.mintLocked(ctx, pool, to)
	if err != nil {
		k.revertState(snap)
		return math.Int{}, err
	}
	return shares, nil
}

func (k *Keeper) mintLocked(ctx context.Context, pool *types.Pool, to string) (math.Int, error) {
	balanceA, balanceB := k.poolBalances(ctx, pool)
	amountA, err := SafeSub(balanceA, pool.ReserveA)
	if err != nil {
		return math.Int{}, types.ErrInvalidPoolState.Wrapf("pool %d custody below reserves", pool.Id)
	}
	amountB, err := SafeSub(balanceB, pool.ReserveB)
	if err != nil {
		return math.Int{}, types.ErrInvalidPoolState.Wrapf("pool %d custody below reserves", pool.Id)
	}

	feeOn, err := k.mintProtocolFee(pool)
	if err != nil {
		return math.Int{}, err
	}

	params := k.GetParams()
	supply := pool.ShareSupply

	var shares math.Int
	if supply.IsZero() {
		product, err := SafeMul(amountA, amountB)
		if err != nil {
			return math.Int{}, err
		}
		root, err := IntSqrt(product)
		if err != nil {
			return math.Int{}, err
		}
		if root.LTE(params.MinimumShares) {
			return math.Int{}, types.ErrInsufficientLiquidityMinted.Wrapf(
				"initial deposit yields %s shares, minimum lock is %s", root, params.MinimumShares)
		}
		shares = root.Sub(params.MinimumShares)
		// The locked minimum keeps the supply away from zero forever; it is
		// issued to the null holder and can never be redeemed.
		k.mintShares(pool, types.NullHolder, params.MinimumShares)
	} else {
		sharesA, err := SafeMulDiv(amountA, supply, pool.ReserveA)
		if err != nil {
			return math.Int{}, err
		}
		sharesB, err := SafeMulDiv(amountB, supply, pool.ReserveB)
		if err != nil {
			return math.Int{}, err
		}
		shares = MinInt(sharesA, sharesB)
	}
	if !shares.IsPositive() {
		return math.Int{}, types.ErrInsufficientLiquidityMinted.Wrapf(
			"deposit of %s/%s mints zero shares", amountA, amountB)
	}
	k.mintShares(pool, to, shares)

	var kLast math.Int
	if feeOn {
		kLast, err = SafeMul(balanceA, balanceB)
		if err != nil {
			return math.Int{}, err
		}
	}
	k.mutatePool(func() {
		k.updateCumulativePrices(pool)
		pool.ReserveA = balanceA
		pool.ReserveB = balanceB
		if feeOn {
			pool.KLast = kLast
		}
	})

	poolLabel := fmt.Sprintf("%d", pool.Id)
	k.metrics.LiquidityAdded.WithLabelValues(poolLabel, pool.AssetA).Add(metricValue(amountA))
	k.metrics.LiquidityAdded.WithLabelValues(poolLabel, pool.AssetB).Add(metricValue(amountB))
	k.metrics.PoolReserves.WithLabelValues(poolLabel, pool.AssetA).Set(metricValue(balanceA))
	k.metrics.PoolReserves.WithLabelValues(poolLabel, pool.AssetB).Set(metricValue(balanceB))
	k.metrics.ShareSupply.WithLabelValues(poolLabel).Set(metricValue(pool.ShareSupply))

	k.events.EmitEvent(types.NewEvent(
		types.EventTypeMint,
		types.NewAttribute(types.AttributeKeyPoolID, poolLabel),
		types.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
		types.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
		types.NewAttribute(types.AttributeKeyShares, shares.String()),
		types.NewAttribute(types.AttributeKeyRecipient, to),
	))
	k.logger.Info("liquidity minted",
		"pool_id", pool.Id, "recipient", to,
		"amount_a", amountA.String(), "amount_b", amountB.String(), "shares", shares.String())

	if err := k.hooks.AfterLiquidityChanged(ctx, pool.Id, to, amountA, amountB, true); err != nil {
		k.logger.Error("liquidity hook failed", "pool_id", pool.Id, "error", err)
	}
	return shares, nil
}

// Burn redeems pool shares previously pushed into the pool's custody for a
// pro-rata slice of the pool's actual balances and sends both assets to the
// recipient. Untracked donations are paid out alongside reserves.
func (k *Keeper) Burn(ctx context.Context, poolID uint64, to string) (amountA, amountB math.Int, err error) {
	if to == "" {
		return math.Int{}, math.Int{}, types.ErrInvalidRecipient.Wrap("burn recipient cannot be empty")
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	pool, err := k.getPool(poolID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if to == pool.Address() {
		return math.Int{}, math.Int{}, types.ErrInvalidRecipient.Wrap("burn recipient cannot be the pool itself")
	}
	if err := k.tryLockPool(poolID); err != nil {
		return math.Int{}, math.Int{}, err
	}
	defer k.unlockPool(poolID)

	snap := k.snapshotState()
	amountA, amountB, err = k.burnLocked(ctx, pool, to)
	if err != nil {
		k.revertState(snap)
		return math.Int{}, math.Int{}, err
	}
	return amountA, amountB, nil
}

func (k *Keeper) burnLocked(ctx context.Context, pool *types.Pool, to string) (math.Int, math.Int, error) {
	poolAddr := pool.Address()
	balanceA, balanceB := k.poolBalances(ctx, pool)

	shares, err := k.GetShares(ctx, pool.Id, poolAddr)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if !shares.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidityBurned.Wrap("no shares pushed to pool custody")
	}

	feeOn, err := k.mintProtocolFee(pool)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	supply := pool.ShareSupply

	amountA, err := SafeMulDiv(shares, balanceA, supply)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	amountB, err := SafeMulDiv(shares, balanceB, supply)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if !amountA.IsPositive() || !amountB.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidityBurned.Wrapf(
			"%s shares redeem %s/%s", shares, amountA, amountB)
	}

	if err := k.burnShares(pool, poolAddr, shares); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if err := k.ledger.Transfer(ctx, poolAddr, to, pool.AssetA, amountA); err != nil {
		return math.Int{}, math.Int{}, types.ErrLedgerTransfer.Wrap(err.Error())
	}
	if err := k.ledger.Transfer(ctx, poolAddr, to, pool.AssetB, amountB); err != nil {
		return math.Int{}, math.Int{}, types.ErrLedgerTransfer.Wrap(err.Error())
	}

	balanceA, balanceB = k.poolBalances(ctx, pool)
	var kLast math.Int
	if feeOn {
		kLast, err = SafeMul(balanceA, balanceB)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
	}
	k.mutatePool(func() {
		k.updateCumulativePrices(pool)
		pool.ReserveA = balanceA
		pool.ReserveB = balanceB
		if feeOn {
			pool.KLast = kLast
		}
	})

	poolLabel := fmt.Sprintf("%d", pool.Id)
	k.metrics.LiquidityRemoved.WithLabelValues(poolLabel, pool.AssetA).Add(metricValue(amountA))
	k.metrics.LiquidityRemoved.WithLabelValues(poolLabel, pool.AssetB).Add(metricValue(amountB))
	k.metrics.PoolReserves.WithLabelValues(poolLabel, pool.AssetA).Set(metricValue(balanceA))
	k.metrics.PoolReserves.WithLabelValues(poolLabel, pool.AssetB).Set(metricValue(balanceB))
	k.metrics.ShareSupply.WithLabelValues(poolLabel).Set(metricValue(pool.ShareSupply))

	k.events.EmitEvent(types.NewEvent(
		types.EventTypeBurn,
		types.NewAttribute(types.AttributeKeyPoolID, poolLabel),
		types.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
		types.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
		types.NewAttribute(types.AttributeKeyShares, shares.String()),
		types.NewAttribute(types.AttributeKeyRecipient, to),
	))
	k.logger.Info("liquidity burned",
		"pool_id", pool.Id, "recipient", to,
		"amount_a", amountA.String(), "amount_b", amountB.String(), "shares", shares.String())

	if err := k.hooks.AfterLiquidityChanged(ctx, pool.Id, to, amountA, amountB, false); err != nil {
		k.logger.Error("liquidity hook failed", "pool_id", pool.Id, "error", err)
	}
	return amountA, amountB, nil
}
