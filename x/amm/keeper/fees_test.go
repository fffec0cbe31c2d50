package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	testkeeper "github.com/swapforge/swapforge/testutil/keeper"
)

func TestProtocolFee_MintedOnGrowth(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)
	require.NoError(t, k.SetFeeRecipient(ctx, testkeeper.TestFeeAdmin, "treasury"))

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(1_000_000))

	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, pool.ReserveA.Mul(pool.ReserveB), pool.KLast)

	// Trade back and forth to grow k through fees, then trigger fee
	// accrual with a fresh mint.
	led.Mint("bob", "uatom", newInt(200_000))
	for i := 0; i < 3; i++ {
		current, err := k.GetPool(ctx, poolID)
		require.NoError(t, err)
		out, err := k.GetAmountOut(newInt(50_000), current.ReserveA, current.ReserveB)
		require.NoError(t, err)
		require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uatom", newInt(50_000)))
		require.NoError(t, k.Swap(ctx, poolID, "bob", math.ZeroInt(), out, "bob", nil))
	}

	led.Mint("carol", "uatom", newInt(100_000))
	led.Mint("carol", "uusdc", newInt(100_000))
	current, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	// Deposit at the current ratio so the mint is clean.
	depositA := newInt(100_000)
	ratioB := depositA.Mul(current.ReserveB).Quo(current.ReserveA)
	require.NoError(t, led.Transfer(ctx, "carol", pool.Address(), "uatom", depositA))
	require.NoError(t, led.Transfer(ctx, "carol", pool.Address(), "uusdc", ratioB))
	_, err = k.Mint(ctx, poolID, "carol")
	require.NoError(t, err)

	treasuryShares, err := k.GetShares(ctx, poolID, "treasury")
	require.NoError(t, err)
	require.True(t, treasuryShares.IsPositive(), "fee growth should mint treasury shares")
}

func TestProtocolFee_DisabledMintsNothing(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(1_000_000))
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)

	// With no recipient, kLast stays untracked.
	require.True(t, pool.KLast.IsZero())

	led.Mint("bob", "uatom", newInt(50_000))
	out, err := k.GetAmountOut(newInt(50_000), pool.ReserveA, pool.ReserveB)
	require.NoError(t, err)
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uatom", newInt(50_000)))
	require.NoError(t, k.Swap(ctx, poolID, "bob", math.ZeroInt(), out, "bob", nil))

	require.NoError(t, k.TransferShares(ctx, poolID, "alice", pool.Address(), newInt(100_000)))
	_, _, err = k.Burn(ctx, poolID, "alice")
	require.NoError(t, err)

	treasuryShares, err := k.GetShares(ctx, poolID, "treasury")
	require.NoError(t, err)
	require.True(t, treasuryShares.IsZero())
}

func TestProtocolFee_DisablingClearsTracking(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)
	require.NoError(t, k.SetFeeRecipient(ctx, testkeeper.TestFeeAdmin, "treasury"))

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(1_000_000))
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.False(t, pool.KLast.IsZero())

	// Turn the fee off, then mint; the stale kLast must be dropped so no
	// back-charges happen if the fee is re-enabled later.
	require.NoError(t, k.SetFeeRecipient(ctx, testkeeper.TestFeeAdmin, ""))

	led.Mint("bob", "uatom", newInt(100_000))
	led.Mint("bob", "uusdc", newInt(100_000))
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uatom", newInt(100_000)))
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uusdc", newInt(100_000)))
	_, err = k.Mint(ctx, poolID, "bob")
	require.NoError(t, err)

	updated, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.True(t, updated.KLast.IsZero())
}
