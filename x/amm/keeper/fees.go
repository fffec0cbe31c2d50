package keeper

import (
	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Protocol fee accrual. While a fee recipient is configured, a slice of the
// swap fee growth since the last mint or burn is captured as freshly minted
// shares. Growth is metered as the increase of sqrt(k) over sqrt(kLast), and
// the share math dilutes existing holders by exactly 1/ProtocolFeeCut of
// that growth.

// mintProtocolFee mints accrued protocol fee shares to the fee recipient and
// reports whether the protocol fee is currently enabled. When disabled it
// clears kLast so stale growth is never charged after re-enabling. Callers
// must hold the operation lock; reserves must not have been updated for the
// current operation yet.
func (k *Keeper) mintProtocolFee(pool *types.Pool) (feeOn bool, err error) {
	k.mu.RLock()
	recipient := k.feeRecipient
	cut := k.params.ProtocolFeeCut
	k.mu.RUnlock()

	feeOn = recipient != ""
	if !feeOn {
		if !pool.KLast.IsZero() {
			k.mutatePool(func() { pool.KLast = math.ZeroInt() })
		}
		return false, nil
	}
	if pool.KLast.IsZero() {
		return true, nil
	}

	kNow, err := SafeMul(pool.ReserveA, pool.ReserveB)
	if err != nil {
		return true, err
	}
	rootK, err := IntSqrt(kNow)
	if err != nil {
		return true, err
	}
	rootKLast, err := IntSqrt(pool.KLast)
	if err != nil {
		return true, err
	}
	if rootK.LTE(rootKLast) {
		return true, nil
	}

	numerator, err := SafeMul(pool.ShareSupply, rootK.Sub(rootKLast))
	if err != nil {
		return true, err
	}
	weighted, err := SafeMul(rootK, cut.SubRaw(1))
	if err != nil {
		return true, err
	}
	denominator, err := SafeAdd(weighted, rootKLast)
	if err != nil {
		return true, err
	}
	if denominator.IsZero() {
		return true, nil
	}
	feeShares := numerator.Quo(denominator)
	if feeShares.IsPositive() {
		k.mintShares(pool, recipient, feeShares)
		k.metrics.ProtocolFeeShares.Inc()
		k.logger.Debug("protocol fee shares minted",
			"pool_id", pool.Id, "recipient", recipient, "shares", feeShares.String())
	}
	return true, nil
}
