package keeper

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/swapforge/swapforge/pkg/ledger"
	"github.com/swapforge/swapforge/x/amm/keeper"
)

// TestFeeAdmin is the fee authority wired into test keepers.
const TestFeeAdmin = "admin"

// AmmKeeper creates a test keeper backed by an in-memory ledger and a mock
// clock pinned at a fixed start time.
func AmmKeeper(t testing.TB) (*keeper.Keeper, *ledger.Ledger, *clock.Mock, context.Context) {
	t.Helper()

	led := ledger.New()
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))

	k := keeper.NewKeeper(led, log.NewNopLogger(), clk, TestFeeAdmin)
	return k, led, clk, context.Background()
}

// CreateFundedPool creates a pool for the pair, funds the provider, pushes
// the deposits into pool custody and mints the first liquidity. Returns the
// pool id.
func CreateFundedPool(t testing.TB, k *keeper.Keeper, ctx context.Context, led *ledger.Ledger, provider, assetA, assetB string, amountA, amountB math.Int) uint64 {
	t.Helper()

	pool, err := k.CreatePool(ctx, provider, assetA, assetB)
	require.NoError(t, err)

	led.Mint(provider, assetA, amountA)
	led.Mint(provider, assetB, amountB)
	require.NoError(t, led.Transfer(ctx, provider, pool.Address(), assetA, amountA))
	require.NoError(t, led.Transfer(ctx, provider, pool.Address(), assetB, amountB))

	_, err = k.Mint(ctx, pool.Id, provider)
	require.NoError(t, err)
	return pool.Id
}
