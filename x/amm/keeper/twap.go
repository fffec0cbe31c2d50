package keeper

import (
	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Time-weighted price accumulation. Each accumulator integrates the marginal
// pool price over wall-clock seconds, sampled from the reserves as they were
// at the START of the elapsed window. Consumers take two accumulator readings
// and divide the delta by the elapsed time to get a TWAP.

// updateCumulativePrices advances the pool's price accumulators using its
// current (pre-operation) reserves, then stamps the update time. At most one
// accumulation happens per clock second. Callers must hold the operation
// lock and the state mutex (via mutatePool) and call this BEFORE writing
// new reserves.
func (k *Keeper) updateCumulativePrices(pool *types.Pool) {
	now := k.clock.Now().Unix()
	elapsed := now - pool.LastUpdateUnix
	if elapsed <= 0 {
		return
	}
	if pool.ReserveA.IsPositive() && pool.ReserveB.IsPositive() {
		dt := math.LegacyNewDec(elapsed)
		priceA := math.LegacyNewDecFromInt(pool.ReserveB).QuoInt(pool.ReserveA)
		priceB := math.LegacyNewDecFromInt(pool.ReserveA).QuoInt(pool.ReserveB)
		pool.CumulativePriceA = pool.CumulativePriceA.Add(priceA.Mul(dt))
		pool.CumulativePriceB = pool.CumulativePriceB.Add(priceB.Mul(dt))
		k.metrics.TWAPUpdates.Inc()
	}
	pool.LastUpdateUnix = now
}

// GetCumulativePrices returns the pool's price accumulators and the timestamp
// of their last update. The A accumulator integrates the price of asset A
// quoted in asset B.
func (k *Keeper) GetCumulativePrices(poolID uint64) (priceA, priceB math.LegacyDec, lastUpdateUnix int64, err error) {
	pool, err := k.getPool(poolID)
	if err != nil {
		return math.LegacyDec{}, math.LegacyDec{}, 0, err
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return pool.CumulativePriceA, pool.CumulativePriceB, pool.LastUpdateUnix, nil
}
