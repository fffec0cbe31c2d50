package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Swap executes a trade against a single pool. Outputs are transferred
// optimistically before inputs are verified: the caller either pushes input
// assets into the pool's custody beforehand, or supplies a callback that
// pays during the swap (a flash swap). After the callback returns, inputs
// are measured as custody balance growth and the fee-adjusted constant
// product invariant is enforced; any violation rolls the whole operation
// back, ledger included.
func (k *Keeper) Swap(ctx context.Context, poolID uint64, sender string, amountAOut, amountBOut math.Int, to string, callback types.SwapCallback) error {
	if amountAOut.IsNil() || amountBOut.IsNil() || amountAOut.IsNegative() || amountBOut.IsNegative() {
		return types.ErrInvalidAmount.Wrap("swap output amounts cannot be negative")
	}
	if !amountAOut.IsPositive() && !amountBOut.IsPositive() {
		return types.ErrInsufficientOutputAmount.Wrap("at least one output amount must be positive")
	}
	if to == "" {
		return types.ErrInvalidRecipient.Wrap("swap recipient cannot be empty")
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	pool, err := k.getPool(poolID)
	if err != nil {
		return err
	}
	if to == pool.AssetA || to == pool.AssetB {
		return types.ErrInvalidRecipient.Wrapf("recipient %s collides with a pool asset", to)
	}
	if err := k.tryLockPool(poolID); err != nil {
		return err
	}
	defer k.unlockPool(poolID)

	start := k.clock.Now()
	snap := k.snapshotState()
	amountAIn, amountBIn, err := k.swapLocked(ctx, pool, sender, amountAOut, amountBOut, to, callback)
	poolLabel := fmt.Sprintf("%d", poolID)
	if err != nil {
		k.revertState(snap)
		k.metrics.SwapsTotal.WithLabelValues(poolLabel, "failed").Inc()
		return err
	}
	k.metrics.SwapsTotal.WithLabelValues(poolLabel, "success").Inc()
	k.metrics.SwapLatency.Observe(k.clock.Since(start).Seconds())

	if err := k.hooks.AfterSwap(ctx, poolID, sender, amountAIn, amountBIn, amountAOut, amountBOut); err != nil {
		k.logger.Error("swap hook failed", "pool_id", poolID, "error", err)
	}
	return nil
}

func (k *Keeper) swapLocked(ctx context.Context, pool *types.Pool, sender string, amountAOut, amountBOut math.Int, to string, callback types.SwapCallback) (amountAIn, amountBIn math.Int, err error) {
	if amountAOut.GTE(pool.ReserveA) || amountBOut.GTE(pool.ReserveB) {
		return math.Int{}, math.Int{}, types.ErrInsufficientLiquidity.Wrapf(
			"requested %s/%s exceeds reserves %s/%s", amountAOut, amountBOut, pool.ReserveA, pool.ReserveB)
	}

	poolAddr := pool.Address()
	if amountAOut.IsPositive() {
		if err := k.ledger.Transfer(ctx, poolAddr, to, pool.AssetA, amountAOut); err != nil {
			return math.Int{}, math.Int{}, types.ErrLedgerTransfer.Wrap(err.Error())
		}
	}
	if amountBOut.IsPositive() {
		if err := k.ledger.Transfer(ctx, poolAddr, to, pool.AssetB, amountBOut); err != nil {
			return math.Int{}, math.Int{}, types.ErrLedgerTransfer.Wrap(err.Error())
		}
	}
	if callback != nil {
		// Callback errors surface unchanged so callers can distinguish
		// reentrancy from repayment failures.
		if err := callback(ctx, sender, amountAOut, amountBOut); err != nil {
			return math.Int{}, math.Int{}, err
		}
	}

	balanceA, balanceB := k.poolBalances(ctx, pool)

	// Inputs are whatever grew the custody balance beyond what the
	// optimistic output left behind.
	expectedA := pool.ReserveA.Sub(amountAOut)
	expectedB := pool.ReserveB.Sub(amountBOut)
	amountAIn, amountBIn = math.ZeroInt(), math.ZeroInt()
	if balanceA.GT(expectedA) {
		amountAIn = balanceA.Sub(expectedA)
	}
	if balanceB.GT(expectedB) {
		amountBIn = balanceB.Sub(expectedB)
	}
	if !amountAIn.IsPositive() && !amountBIn.IsPositive() {
		return math.Int{}, math.Int{}, types.ErrInsufficientInputAmount.Wrap("no input assets were paid to the pool")
	}

	params := k.GetParams()
	feeRate := params.FeeDenominator.Sub(params.FeeNumerator)
	adjustedA, err := adjustedBalance(balanceA, amountAIn, params.FeeDenominator, feeRate)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	adjustedB, err := adjustedBalance(balanceB, amountBIn, params.FeeDenominator, feeRate)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	left, err := SafeMul(adjustedA, adjustedB)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	kBefore, err := SafeMul(pool.ReserveA, pool.ReserveB)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	denomSq, err := SafeMul(params.FeeDenominator, params.FeeDenominator)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	right, err := SafeMul(kBefore, denomSq)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if left.LT(right) {
		return math.Int{}, math.Int{}, types.ErrInvariantViolation.Wrapf(
			"fee-adjusted product %s below required %s", left, right)
	}

	k.mutatePool(func() {
		k.updateCumulativePrices(pool)
		pool.ReserveA = balanceA
		pool.ReserveB = balanceB
	})

	poolLabel := fmt.Sprintf("%d", pool.Id)
	if amountAIn.IsPositive() {
		k.metrics.SwapVolume.WithLabelValues(poolLabel, pool.AssetA).Add(metricValue(amountAIn))
	}
	if amountBIn.IsPositive() {
		k.metrics.SwapVolume.WithLabelValues(poolLabel, pool.AssetB).Add(metricValue(amountBIn))
	}
	k.metrics.PoolReserves.WithLabelValues(poolLabel, pool.AssetA).Set(metricValue(balanceA))
	k.metrics.PoolReserves.WithLabelValues(poolLabel, pool.AssetB).Set(metricValue(balanceB))

	k.events.EmitEvent(types.NewEvent(
		types.EventTypeSwap,
		types.NewAttribute(types.AttributeKeyPoolID, poolLabel),
		types.NewAttribute(types.AttributeKeySender, sender),
		types.NewAttribute(types.AttributeKeyAmountAIn, amountAIn.String()),
		types.NewAttribute(types.AttributeKeyAmountBIn, amountBIn.String()),
		types.NewAttribute(types.AttributeKeyAmountAOut, amountAOut.String()),
		types.NewAttribute(types.AttributeKeyAmountBOut, amountBOut.String()),
		types.NewAttribute(types.AttributeKeyRecipient, to),
	))
	k.logger.Info("swap executed",
		"pool_id", pool.Id, "sender", sender, "recipient", to,
		"amount_a_in", amountAIn.String(), "amount_b_in", amountBIn.String(),
		"amount_a_out", amountAOut.String(), "amount_b_out", amountBOut.String())
	return amountAIn, amountBIn, nil
}

// adjustedBalance scales a custody balance by the fee denominator and charges
// the fee on the freshly paid input: balance*denominator - input*feeRate.
func adjustedBalance(balance, amountIn, denominator, feeRate math.Int) (math.Int, error) {
	scaled, err := SafeMul(balance, denominator)
	if err != nil {
		return math.Int{}, err
	}
	fee, err := SafeMul(amountIn, feeRate)
	if err != nil {
		return math.Int{}, err
	}
	return SafeSub(scaled, fee)
}

// Sync force-matches tracked reserves to actual custody balances, absorbing
// direct donations into the pool.
func (k *Keeper) Sync(ctx context.Context, poolID uint64) error {
	ctx, done := k.beginOp(ctx)
	defer done()

	pool, err := k.getPool(poolID)
	if err != nil {
		return err
	}
	if err := k.tryLockPool(poolID); err != nil {
		return err
	}
	defer k.unlockPool(poolID)

	balanceA, balanceB := k.poolBalances(ctx, pool)
	k.mutatePool(func() {
		k.updateCumulativePrices(pool)
		pool.ReserveA = balanceA
		pool.ReserveB = balanceB
	})

	k.events.EmitEvent(types.NewEvent(
		types.EventTypeSync,
		types.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
		types.NewAttribute(types.AttributeKeyAmountA, balanceA.String()),
		types.NewAttribute(types.AttributeKeyAmountB, balanceB.String()),
	))
	k.logger.Debug("reserves synced", "pool_id", poolID,
		"reserve_a", balanceA.String(), "reserve_b", balanceB.String())
	return nil
}

// Skim transfers any custody balance above the tracked reserves to the
// recipient, restoring balance == reserve without touching reserves.
func (k *Keeper) Skim(ctx context.Context, poolID uint64, to string) error {
	if to == "" {
		return types.ErrInvalidRecipient.Wrap("skim recipient cannot be empty")
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	pool, err := k.getPool(poolID)
	if err != nil {
		return err
	}
	if err := k.tryLockPool(poolID); err != nil {
		return err
	}
	defer k.unlockPool(poolID)

	snap := k.snapshotState()
	poolAddr := pool.Address()
	balanceA, balanceB := k.poolBalances(ctx, pool)
	excessA := balanceA.Sub(pool.ReserveA)
	excessB := balanceB.Sub(pool.ReserveB)
	if excessA.IsPositive() {
		if err := k.ledger.Transfer(ctx, poolAddr, to, pool.AssetA, excessA); err != nil {
			k.revertState(snap)
			return types.ErrLedgerTransfer.Wrap(err.Error())
		}
	}
	if excessB.IsPositive() {
		if err := k.ledger.Transfer(ctx, poolAddr, to, pool.AssetB, excessB); err != nil {
			k.revertState(snap)
			return types.ErrLedgerTransfer.Wrap(err.Error())
		}
	}

	k.events.EmitEvent(types.NewEvent(
		types.EventTypeSkim,
		types.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
		types.NewAttribute(types.AttributeKeyAmountA, excessA.String()),
		types.NewAttribute(types.AttributeKeyAmountB, excessB.String()),
		types.NewAttribute(types.AttributeKeyRecipient, to),
	))
	return nil
}
