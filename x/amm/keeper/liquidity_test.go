package keeper_test

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	testkeeper "github.com/swapforge/swapforge/testutil/keeper"
	"github.com/swapforge/swapforge/x/amm/types"
)

func TestMint_FirstDeposit(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	pool, err := k.CreatePool(ctx, "alice", "uatom", "uusdc")
	require.NoError(t, err)

	led.Mint("alice", "uatom", newInt(1_000_000))
	led.Mint("alice", "uusdc", newInt(4_000_000))
	require.NoError(t, led.Transfer(ctx, "alice", pool.Address(), "uatom", newInt(1_000_000)))
	require.NoError(t, led.Transfer(ctx, "alice", pool.Address(), "uusdc", newInt(4_000_000)))

	shares, err := k.Mint(ctx, pool.Id, "alice")
	require.NoError(t, err)

	// sqrt(1e6 * 4e6) = 2_000_000, minus the locked minimum.
	require.Equal(t, int64(1_999_000), shares.Int64())

	updated, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, int64(2_000_000), updated.ShareSupply.Int64())
	require.Equal(t, int64(1_000_000), updated.ReserveA.Int64())
	require.Equal(t, int64(4_000_000), updated.ReserveB.Int64())

	locked, err := k.GetShares(ctx, pool.Id, types.NullHolder)
	require.NoError(t, err)
	require.Equal(t, int64(1000), locked.Int64())
}

func TestMint_FirstDepositBelowMinimum(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	pool, err := k.CreatePool(ctx, "alice", "uatom", "uusdc")
	require.NoError(t, err)

	// sqrt(100 * 200) = 141, under the 1000 share lock.
	led.Mint("alice", "uatom", newInt(100))
	led.Mint("alice", "uusdc", newInt(200))
	require.NoError(t, led.Transfer(ctx, "alice", pool.Address(), "uatom", newInt(100)))
	require.NoError(t, led.Transfer(ctx, "alice", pool.Address(), "uusdc", newInt(200)))

	_, err = k.Mint(ctx, pool.Id, "alice")
	require.ErrorIs(t, err, types.ErrInsufficientLiquidityMinted)

	// The failed mint must not leave partial state behind.
	updated, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.True(t, updated.ShareSupply.IsZero())
	require.True(t, updated.ReserveA.IsZero())
}

func TestMint_ProportionalDeposit(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(4_000_000))
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)

	led.Mint("bob", "uatom", newInt(500_000))
	led.Mint("bob", "uusdc", newInt(2_000_000))
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uatom", newInt(500_000)))
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uusdc", newInt(2_000_000)))

	shares, err := k.Mint(ctx, poolID, "bob")
	require.NoError(t, err)
	// Half the reserves on both sides mints half the supply.
	require.Equal(t, int64(1_000_000), shares.Int64())
}

func TestMint_UnbalancedDepositTakesSmallerSide(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(4_000_000))
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)

	// 50% of reserve A but only 10% of reserve B: the B side governs.
	led.Mint("bob", "uatom", newInt(500_000))
	led.Mint("bob", "uusdc", newInt(400_000))
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uatom", newInt(500_000)))
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uusdc", newInt(400_000)))

	shares, err := k.Mint(ctx, poolID, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(200_000), shares.Int64())
}

func TestMint_NoDeposit(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(4_000_000))

	_, err := k.Mint(ctx, poolID, "bob")
	require.ErrorIs(t, err, types.ErrInsufficientLiquidityMinted)
}

func TestBurn_ProRata(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(4_000_000))
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)

	require.NoError(t, k.TransferShares(ctx, poolID, "alice", pool.Address(), newInt(1_999_000)))
	amountA, amountB, err := k.Burn(ctx, poolID, "alice")
	require.NoError(t, err)

	// 1_999_000 of 2_000_000 shares redeems 99.95% of each reserve. The
	// rounding loss plus the locked minimum stay in the pool, so a full
	// round trip never pays out more than was deposited.
	require.Equal(t, int64(999_500), amountA.Int64())
	require.Equal(t, int64(3_998_000), amountB.Int64())
	require.Equal(t, newInt(999_500), led.BalanceOf(ctx, "alice", "uatom"))
	require.Equal(t, newInt(3_998_000), led.BalanceOf(ctx, "alice", "uusdc"))

	updated, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), updated.ShareSupply.Int64())
	require.Equal(t, int64(500), updated.ReserveA.Int64())
	require.Equal(t, int64(2000), updated.ReserveB.Int64())
}

func TestBurn_IncludesDonations(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(1_000_000))
	pool, err := k.GetPool(ctx, poolID)
	require.NoError(t, err)

	// An untracked donation raises custody above reserves; burn pays out
	// against actual balances.
	led.Mint(pool.Address(), "uatom", newInt(1_000_000))

	require.NoError(t, k.TransferShares(ctx, poolID, "alice", pool.Address(), newInt(500_000)))
	amountA, amountB, err := k.Burn(ctx, poolID, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000), amountA.Int64())
	require.Equal(t, int64(500_000), amountB.Int64())
}

func TestBurn_NoSharesPushed(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(4_000_000))

	_, _, err := k.Burn(ctx, poolID, "alice")
	require.ErrorIs(t, err, types.ErrInsufficientLiquidityBurned)
}

func TestTransferShares_LockedMinimumImmovable(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(4_000_000))

	err := k.TransferShares(ctx, poolID, types.NullHolder, "alice", newInt(1000))
	require.ErrorIs(t, err, types.ErrUnauthorized)

	err = k.TransferShares(ctx, poolID, "alice", "bob", newInt(5_000_000))
	require.ErrorIs(t, err, types.ErrInsufficientShares)
}

// Pool math supports amounts well past int64; metric recording and share
// issuance must not choke on them.
func TestPoolOps_AmountsBeyondInt64(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	pool, err := k.CreatePool(ctx, "alice", "uatom", "uusdc")
	require.NoError(t, err)

	huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 72))
	led.Mint("alice", "uatom", huge)
	led.Mint("alice", "uusdc", huge)
	require.NoError(t, led.Transfer(ctx, "alice", pool.Address(), "uatom", huge))
	require.NoError(t, led.Transfer(ctx, "alice", pool.Address(), "uusdc", huge))

	shares, err := k.Mint(ctx, pool.Id, "alice")
	require.NoError(t, err)
	// sqrt(2^72 * 2^72) = 2^72, minus the locked minimum.
	require.Equal(t, huge.SubRaw(1000), shares)

	updated, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, huge, updated.ReserveA)
	require.Equal(t, huge, updated.ReserveB)

	amountIn := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 70))
	led.Mint("bob", "uatom", amountIn)
	require.NoError(t, led.Transfer(ctx, "bob", pool.Address(), "uatom", amountIn))
	out, err := k.GetAmountOut(amountIn, updated.ReserveA, updated.ReserveB)
	require.NoError(t, err)
	require.NoError(t, k.Swap(ctx, pool.Id, "bob", math.ZeroInt(), out, "bob", nil))
	require.Equal(t, out, led.BalanceOf(ctx, "bob", "uusdc"))
}
