package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	testkeeper "github.com/swapforge/swapforge/testutil/keeper"
	"github.com/swapforge/swapforge/x/amm/types"
)

func TestCreatePool_CanonicalOrder(t *testing.T) {
	k, _, _, ctx := testkeeper.AmmKeeper(t)

	pool, err := k.CreatePool(ctx, "alice", "uusdc", "uatom")
	require.NoError(t, err)
	require.Equal(t, "uatom", pool.AssetA)
	require.Equal(t, "uusdc", pool.AssetB)
	require.Equal(t, uint64(1), pool.Id)
	require.True(t, pool.ReserveA.IsZero())
	require.True(t, pool.ReserveB.IsZero())
	require.True(t, pool.ShareSupply.IsZero())
}

func TestCreatePool_Validation(t *testing.T) {
	k, _, _, ctx := testkeeper.AmmKeeper(t)

	tests := []struct {
		name    string
		assetA  string
		assetB  string
		wantErr error
	}{
		{"identical assets", "uatom", "uatom", types.ErrIdenticalAssets},
		{"empty asset a", "", "uatom", types.ErrEmptyAsset},
		{"empty asset b", "uatom", "", types.ErrEmptyAsset},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := k.CreatePool(ctx, "alice", tc.assetA, tc.assetB)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreatePool_DuplicatePair(t *testing.T) {
	k, _, _, ctx := testkeeper.AmmKeeper(t)

	_, err := k.CreatePool(ctx, "alice", "uatom", "uusdc")
	require.NoError(t, err)

	// Same pair in either order is rejected.
	_, err = k.CreatePool(ctx, "bob", "uusdc", "uatom")
	require.ErrorIs(t, err, types.ErrPoolAlreadyExists)
	_, err = k.CreatePool(ctx, "bob", "uatom", "uusdc")
	require.ErrorIs(t, err, types.ErrPoolAlreadyExists)
}

func TestGetPoolByAssets_OrderIndependent(t *testing.T) {
	k, _, _, ctx := testkeeper.AmmKeeper(t)

	created, err := k.CreatePool(ctx, "alice", "uatom", "uusdc")
	require.NoError(t, err)

	forward, err := k.GetPoolByAssets(ctx, "uatom", "uusdc")
	require.NoError(t, err)
	backward, err := k.GetPoolByAssets(ctx, "uusdc", "uatom")
	require.NoError(t, err)
	require.Equal(t, created.Id, forward.Id)
	require.Equal(t, created.Id, backward.Id)
}

func TestGetPool_NotFound(t *testing.T) {
	k, _, _, ctx := testkeeper.AmmKeeper(t)

	_, err := k.GetPool(ctx, 42)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
	_, err = k.GetPoolByAssets(ctx, "uatom", "uusdc")
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}

func TestGetAllPools_SortedByID(t *testing.T) {
	k, _, _, ctx := testkeeper.AmmKeeper(t)

	pairs := [][2]string{{"uatom", "uusdc"}, {"uosmo", "uusdc"}, {"uatom", "uosmo"}}
	for _, pair := range pairs {
		_, err := k.CreatePool(ctx, "alice", pair[0], pair[1])
		require.NoError(t, err)
	}

	pools := k.GetAllPools(ctx)
	require.Len(t, pools, 3)
	for i, pool := range pools {
		require.Equal(t, uint64(i+1), pool.Id)
	}
}

func TestFeeConfig_AdminOnly(t *testing.T) {
	k, _, _, ctx := testkeeper.AmmKeeper(t)

	require.ErrorIs(t, k.SetFeeRecipient(ctx, "mallory", "treasury"), types.ErrUnauthorized)
	require.ErrorIs(t, k.SetFeeAdmin(ctx, "mallory", "mallory"), types.ErrUnauthorized)

	require.NoError(t, k.SetFeeRecipient(ctx, testkeeper.TestFeeAdmin, "treasury"))
	require.Equal(t, "treasury", k.FeeRecipient())

	// Clearing the recipient disables the protocol fee.
	require.NoError(t, k.SetFeeRecipient(ctx, testkeeper.TestFeeAdmin, ""))
	require.Equal(t, "", k.FeeRecipient())

	require.NoError(t, k.SetFeeAdmin(ctx, testkeeper.TestFeeAdmin, "newadmin"))
	require.Equal(t, "newadmin", k.FeeAdmin())

	// The old admin lost its authority with the handover.
	require.ErrorIs(t, k.SetFeeRecipient(ctx, testkeeper.TestFeeAdmin, "treasury"), types.ErrUnauthorized)
	require.NoError(t, k.SetFeeRecipient(ctx, "newadmin", "treasury"))

	// An empty admin would brick the fee configuration.
	require.ErrorIs(t, k.SetFeeAdmin(ctx, "newadmin", ""), types.ErrEmptyAsset)
}

func TestGetReserves(t *testing.T) {
	k, led, _, ctx := testkeeper.AmmKeeper(t)

	poolID := testkeeper.CreateFundedPool(t, k, ctx, led, "alice", "uatom", "uusdc",
		newInt(1_000_000), newInt(4_000_000))

	reserveA, reserveB, _, err := k.GetReserves(ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000), reserveA.Int64())
	require.Equal(t, int64(4_000_000), reserveB.Int64())
}
