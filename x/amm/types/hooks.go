package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// AmmHooks defines the interface for engine callbacks. External components
// such as the graduation trigger register hooks to observe pool lifecycle
// and trading activity.
type AmmHooks interface {
	// AfterPoolCreated is called after a new liquidity pool is created.
	AfterPoolCreated(ctx context.Context, poolID uint64, assetA, assetB string, creator string) error

	// AfterSwap is called after a successful swap against a pool.
	AfterSwap(ctx context.Context, poolID uint64, sender string, amountAIn, amountBIn, amountAOut, amountBOut sdkmath.Int) error

	// AfterLiquidityChanged is called when shares are minted or burned.
	AfterLiquidityChanged(ctx context.Context, poolID uint64, provider string, deltaA, deltaB sdkmath.Int, isMint bool) error
}

// MultiAmmHooks combines multiple hooks into a single hook that calls all of
// them in order.
type MultiAmmHooks []AmmHooks

func NewMultiAmmHooks(hooks ...AmmHooks) MultiAmmHooks {
	return hooks
}

func (h MultiAmmHooks) AfterPoolCreated(ctx context.Context, poolID uint64, assetA, assetB string, creator string) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterPoolCreated(ctx, poolID, assetA, assetB, creator); err != nil {
			return err
		}
	}
	return nil
}

func (h MultiAmmHooks) AfterSwap(ctx context.Context, poolID uint64, sender string, amountAIn, amountBIn, amountAOut, amountBOut sdkmath.Int) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterSwap(ctx, poolID, sender, amountAIn, amountBIn, amountAOut, amountBOut); err != nil {
			return err
		}
	}
	return nil
}

func (h MultiAmmHooks) AfterLiquidityChanged(ctx context.Context, poolID uint64, provider string, deltaA, deltaB sdkmath.Int, isMint bool) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterLiquidityChanged(ctx, poolID, provider, deltaA, deltaB, isMint); err != nil {
			return err
		}
	}
	return nil
}
