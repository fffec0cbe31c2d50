package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/swapforge/swapforge/x/amm/types"
)

func TestNewPool_CanonicalizesAssets(t *testing.T) {
	pool := types.NewPool(1, "uusdc", "uatom", "alice")
	require.Equal(t, "uatom", pool.AssetA)
	require.Equal(t, "uusdc", pool.AssetB)
	require.NoError(t, pool.Validate())
}

func TestPool_ReservesFor(t *testing.T) {
	pool := types.NewPool(1, "uatom", "uusdc", "alice")
	pool.ReserveA = math.NewInt(1000)
	pool.ReserveB = math.NewInt(2000)

	reserveIn, reserveOut, err := pool.ReservesFor("uatom", "uusdc")
	require.NoError(t, err)
	require.Equal(t, int64(1000), reserveIn.Int64())
	require.Equal(t, int64(2000), reserveOut.Int64())

	reserveIn, reserveOut, err = pool.ReservesFor("uusdc", "uatom")
	require.NoError(t, err)
	require.Equal(t, int64(2000), reserveIn.Int64())
	require.Equal(t, int64(1000), reserveOut.Int64())

	_, _, err = pool.ReservesFor("uatom", "uosmo")
	require.ErrorIs(t, err, types.ErrInvalidPath)
}

func TestPool_Validate(t *testing.T) {
	base := func() *types.Pool {
		pool := types.NewPool(1, "uatom", "uusdc", "alice")
		pool.ReserveA = math.NewInt(1000)
		pool.ReserveB = math.NewInt(2000)
		pool.ShareSupply = math.NewInt(1414)
		return pool
	}

	tests := []struct {
		name   string
		mutate func(*types.Pool)
		valid  bool
	}{
		{"funded pool", func(p *types.Pool) {}, true},
		{"empty pool", func(p *types.Pool) {
			p.ReserveA, p.ReserveB, p.ShareSupply = math.ZeroInt(), math.ZeroInt(), math.ZeroInt()
		}, true},
		{"negative reserve", func(p *types.Pool) { p.ReserveA = math.NewInt(-1) }, false},
		{"reserves without shares", func(p *types.Pool) { p.ShareSupply = math.ZeroInt() }, false},
		{"shares without reserves", func(p *types.Pool) { p.ReserveA = math.ZeroInt() }, false},
		{"non-canonical order", func(p *types.Pool) { p.AssetA, p.AssetB = p.AssetB, p.AssetA }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool := base()
			tc.mutate(pool)
			err := pool.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestPool_CloneIsIndependent(t *testing.T) {
	pool := types.NewPool(1, "uatom", "uusdc", "alice")
	pool.ReserveA = math.NewInt(1000)

	clone := pool.Clone()
	clone.ReserveA = math.NewInt(9999)
	require.Equal(t, int64(1000), pool.ReserveA.Int64())
}
