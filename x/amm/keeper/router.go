package keeper

import (
	"context"
	"time"

	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Router operations compose single-pool primitives into user-facing calls
// with slippage and deadline protection. Quotes are computed against current
// reserves first; execution then chains custody transfers through each hop's
// pool, with the whole chain rolling back if any hop fails.

// GetAmountOut quotes the output for an exact input against one pool's
// reserves. The fee is charged on the input before the constant product is
// applied; the division floors, in the pool's favor.
func (k *Keeper) GetAmountOut(amountIn, reserveIn, reserveOut math.Int) (math.Int, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return math.Int{}, types.ErrInsufficientInputAmount.Wrap("input amount must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrap("pool has no liquidity")
	}
	params := k.GetParams()
	amountInWithFee, err := SafeMul(amountIn, params.FeeNumerator)
	if err != nil {
		return math.Int{}, err
	}
	numerator, err := SafeMul(amountInWithFee, reserveOut)
	if err != nil {
		return math.Int{}, err
	}
	scaledReserve, err := SafeMul(reserveIn, params.FeeDenominator)
	if err != nil {
		return math.Int{}, err
	}
	denominator, err := SafeAdd(scaledReserve, amountInWithFee)
	if err != nil {
		return math.Int{}, err
	}
	return numerator.Quo(denominator), nil
}

// GetAmountIn quotes the input required for an exact output against one
// pool's reserves. The division rounds up so the quote always satisfies the
// invariant check.
func (k *Keeper) GetAmountIn(amountOut, reserveIn, reserveOut math.Int) (math.Int, error) {
	if amountOut.IsNil() || !amountOut.IsPositive() {
		return math.Int{}, types.ErrInsufficientOutputAmount.Wrap("output amount must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrap("pool has no liquidity")
	}
	if amountOut.GTE(reserveOut) {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf(
			"requested output %s exceeds reserve %s", amountOut, reserveOut)
	}
	params := k.GetParams()
	scaled, err := SafeMul(reserveIn, amountOut)
	if err != nil {
		return math.Int{}, err
	}
	numerator, err := SafeMul(scaled, params.FeeDenominator)
	if err != nil {
		return math.Int{}, err
	}
	denominator, err := SafeMul(reserveOut.Sub(amountOut), params.FeeNumerator)
	if err != nil {
		return math.Int{}, err
	}
	return numerator.Quo(denominator).AddRaw(1), nil
}

// GetAmountsOut quotes a multi-hop trade forward along path, returning one
// amount per path element starting with amountIn. Every adjacent pair must
// have a pool.
func (k *Keeper) GetAmountsOut(ctx context.Context, amountIn math.Int, path []string) ([]math.Int, error) {
	if err := k.validatePath(path); err != nil {
		return nil, err
	}
	amounts := make([]math.Int, len(path))
	amounts[0] = amountIn
	for i := 0; i < len(path)-1; i++ {
		pool, err := k.GetPoolByAssets(ctx, path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		reserveIn, reserveOut, err := pool.ReservesFor(path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		amounts[i+1], err = k.GetAmountOut(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// GetAmountsIn quotes a multi-hop trade backward along path, returning one
// amount per path element ending with amountOut.
func (k *Keeper) GetAmountsIn(ctx context.Context, amountOut math.Int, path []string) ([]math.Int, error) {
	if err := k.validatePath(path); err != nil {
		return nil, err
	}
	amounts := make([]math.Int, len(path))
	amounts[len(path)-1] = amountOut
	for i := len(path) - 1; i > 0; i-- {
		pool, err := k.GetPoolByAssets(ctx, path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		reserveIn, reserveOut, err := pool.ReservesFor(path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		amounts[i-1], err = k.GetAmountIn(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

func (k *Keeper) validatePath(path []string) error {
	params := k.GetParams()
	if len(path) < 2 {
		return types.ErrInvalidPath.Wrapf("path needs at least 2 assets, got %d", len(path))
	}
	if len(path) > params.MaxPathLength {
		return types.ErrInvalidPath.Wrapf("path of %d assets exceeds limit %d", len(path), params.MaxPathLength)
	}
	for i := 0; i < len(path)-1; i++ {
		if path[i] == path[i+1] {
			return types.ErrInvalidPath.Wrapf("consecutive duplicate asset %s", path[i])
		}
	}
	return nil
}

func (k *Keeper) checkDeadline(deadline time.Time) error {
	if !deadline.IsZero() && k.clock.Now().After(deadline) {
		return types.ErrDeadlineExceeded.Wrapf("deadline %s has passed", deadline.Format(time.RFC3339))
	}
	return nil
}

// SwapExactAssetsForAssets trades an exact input along path for as much
// output as the pools give, failing if the final output is below
// amountOutMin or the deadline has passed. Returns the realized amount per
// path element.
func (k *Keeper) SwapExactAssetsForAssets(ctx context.Context, sender string, amountIn, amountOutMin math.Int, path []string, to string, deadline time.Time) ([]math.Int, error) {
	if err := k.checkDeadline(deadline); err != nil {
		return nil, err
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	amounts, err := k.GetAmountsOut(ctx, amountIn, path)
	if err != nil {
		return nil, err
	}
	if amounts[len(amounts)-1].LT(amountOutMin) {
		return nil, types.ErrInsufficientOutputAmount.Wrapf(
			"output %s below minimum %s", amounts[len(amounts)-1], amountOutMin)
	}
	if err := k.executeRoute(ctx, sender, amounts, path, to); err != nil {
		return nil, err
	}
	return amounts, nil
}

// SwapAssetsForExactAssets trades as little input as needed along path for an
// exact output, failing if the required input exceeds amountInMax or the
// deadline has passed. Returns the realized amount per path element.
func (k *Keeper) SwapAssetsForExactAssets(ctx context.Context, sender string, amountOut, amountInMax math.Int, path []string, to string, deadline time.Time) ([]math.Int, error) {
	if err := k.checkDeadline(deadline); err != nil {
		return nil, err
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	amounts, err := k.GetAmountsIn(ctx, amountOut, path)
	if err != nil {
		return nil, err
	}
	if amounts[0].GT(amountInMax) {
		return nil, types.ErrExcessiveInputAmount.Wrapf(
			"required input %s exceeds maximum %s", amounts[0], amountInMax)
	}
	if err := k.executeRoute(ctx, sender, amounts, path, to); err != nil {
		return nil, err
	}
	return amounts, nil
}

// executeRoute settles a pre-quoted route: the input is pushed into the first
// pool, then each hop swaps its input into the next hop's pool so custody
// chains forward, with the last hop paying the recipient. Any failure
// reverts the entire chain. Callers must hold the operation lock.
func (k *Keeper) executeRoute(ctx context.Context, sender string, amounts []math.Int, path []string, to string) error {
	snap := k.snapshotState()

	firstPool, err := k.GetPoolByAssets(ctx, path[0], path[1])
	if err != nil {
		return err
	}
	if err := k.ledger.Transfer(ctx, sender, firstPool.Address(), path[0], amounts[0]); err != nil {
		k.revertState(snap)
		return types.ErrLedgerTransfer.Wrap(err.Error())
	}

	for i := 0; i < len(path)-1; i++ {
		pool, err := k.GetPoolByAssets(ctx, path[i], path[i+1])
		if err != nil {
			k.revertState(snap)
			return err
		}
		amountAOut, amountBOut := math.ZeroInt(), math.ZeroInt()
		if path[i+1] == pool.AssetA {
			amountAOut = amounts[i+1]
		} else {
			amountBOut = amounts[i+1]
		}
		recipient := to
		if i < len(path)-2 {
			next, err := k.GetPoolByAssets(ctx, path[i+1], path[i+2])
			if err != nil {
				k.revertState(snap)
				return err
			}
			recipient = next.Address()
		}
		if err := k.Swap(ctx, pool.Id, sender, amountAOut, amountBOut, recipient, nil); err != nil {
			k.revertState(snap)
			return err
		}
	}
	return nil
}

// AddLiquidity deposits a pair of assets into the pool for assetA/assetB,
// creating the pool on first use. Deposits are trimmed to the pool's current
// reserve ratio; the trimmed amount must stay above the caller's minimum for
// that side. Returns the deposited amounts, in the caller's asset order, and
// the minted shares.
func (k *Keeper) AddLiquidity(ctx context.Context, sender, assetA, assetB string, amountADesired, amountBDesired, amountAMin, amountBMin math.Int, to string, deadline time.Time) (amountA, amountB, shares math.Int, err error) {
	if err := k.checkDeadline(deadline); err != nil {
		return math.Int{}, math.Int{}, math.Int{}, err
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	snap := k.snapshotState()
	pool, err := k.GetPoolByAssets(ctx, assetA, assetB)
	if err != nil {
		pool, err = k.CreatePool(ctx, sender, assetA, assetB)
		if err != nil {
			k.revertState(snap)
			return math.Int{}, math.Int{}, math.Int{}, err
		}
	}

	// Orient the caller's amounts to the pool's canonical order.
	desiredA, desiredB := amountADesired, amountBDesired
	minA, minB := amountAMin, amountBMin
	flipped := assetA != pool.AssetA
	if flipped {
		desiredA, desiredB = desiredB, desiredA
		minA, minB = minB, minA
	}

	depositA, depositB, err := k.optimalDeposit(pool, desiredA, desiredB, minA, minB)
	if err != nil {
		k.revertState(snap)
		return math.Int{}, math.Int{}, math.Int{}, err
	}

	poolAddr := pool.Address()
	if err := k.ledger.Transfer(ctx, sender, poolAddr, pool.AssetA, depositA); err != nil {
		k.revertState(snap)
		return math.Int{}, math.Int{}, math.Int{}, types.ErrLedgerTransfer.Wrap(err.Error())
	}
	if err := k.ledger.Transfer(ctx, sender, poolAddr, pool.AssetB, depositB); err != nil {
		k.revertState(snap)
		return math.Int{}, math.Int{}, math.Int{}, types.ErrLedgerTransfer.Wrap(err.Error())
	}
	shares, err = k.Mint(ctx, pool.Id, to)
	if err != nil {
		k.revertState(snap)
		return math.Int{}, math.Int{}, math.Int{}, err
	}

	if flipped {
		depositA, depositB = depositB, depositA
	}
	return depositA, depositB, shares, nil
}

// optimalDeposit trims a desired deposit to the pool's reserve ratio. An
// empty pool accepts the full desired amounts and sets the initial price.
func (k *Keeper) optimalDeposit(pool *types.Pool, desiredA, desiredB, minA, minB math.Int) (math.Int, math.Int, error) {
	if pool.ReserveA.IsZero() && pool.ReserveB.IsZero() {
		return desiredA, desiredB, nil
	}
	optimalB, err := SafeMulDiv(desiredA, pool.ReserveB, pool.ReserveA)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if optimalB.LTE(desiredB) {
		if optimalB.LT(minB) {
			return math.Int{}, math.Int{}, types.ErrInsufficientBAmount.Wrapf(
				"ratio-matched deposit %s below minimum %s", optimalB, minB)
		}
		return desiredA, optimalB, nil
	}
	optimalA, err := SafeMulDiv(desiredB, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if optimalA.GT(desiredA) {
		return math.Int{}, math.Int{}, types.ErrInvalidAmount.Wrapf(
			"ratio-matched deposit %s exceeds desired %s", optimalA, desiredA)
	}
	if optimalA.LT(minA) {
		return math.Int{}, math.Int{}, types.ErrInsufficientAAmount.Wrapf(
			"ratio-matched deposit %s below minimum %s", optimalA, minA)
	}
	return optimalA, desiredB, nil
}

// RemoveLiquidity redeems the sender's pool shares for both assets, sent to
// the recipient. Fails if either redeemed amount falls below its minimum or
// the deadline has passed. Returns the amounts in the caller's asset order.
func (k *Keeper) RemoveLiquidity(ctx context.Context, sender, assetA, assetB string, shares, amountAMin, amountBMin math.Int, to string, deadline time.Time) (amountA, amountB math.Int, err error) {
	if err := k.checkDeadline(deadline); err != nil {
		return math.Int{}, math.Int{}, err
	}

	ctx, done := k.beginOp(ctx)
	defer done()

	pool, err := k.GetPoolByAssets(ctx, assetA, assetB)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	minA, minB := amountAMin, amountBMin
	flipped := assetA != pool.AssetA
	if flipped {
		minA, minB = minB, minA
	}

	snap := k.snapshotState()
	if err := k.TransferShares(ctx, pool.Id, sender, pool.Address(), shares); err != nil {
		return math.Int{}, math.Int{}, err
	}
	outA, outB, err := k.Burn(ctx, pool.Id, to)
	if err != nil {
		k.revertState(snap)
		return math.Int{}, math.Int{}, err
	}
	if outA.LT(minA) {
		k.revertState(snap)
		return math.Int{}, math.Int{}, types.ErrInsufficientAAmount.Wrapf(
			"redeemed %s below minimum %s", outA, minA)
	}
	if outB.LT(minB) {
		k.revertState(snap)
		return math.Int{}, math.Int{}, types.ErrInsufficientBAmount.Wrapf(
			"redeemed %s below minimum %s", outB, minB)
	}

	if flipped {
		outA, outB = outB, outA
	}
	return outA, outB, nil
}
