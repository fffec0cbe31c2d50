package types_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swapforge/swapforge/x/amm/types"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{
		types.ErrIdenticalAssets,
		types.ErrEmptyAsset,
		types.ErrPoolAlreadyExists,
		types.ErrPoolNotFound,
		types.ErrInsufficientLiquidity,
		types.ErrInsufficientLiquidityMinted,
		types.ErrInsufficientLiquidityBurned,
		types.ErrInsufficientInputAmount,
		types.ErrInsufficientOutputAmount,
		types.ErrExcessiveInputAmount,
		types.ErrInvariantViolation,
		types.ErrReentrancy,
		types.ErrDeadlineExceeded,
	}
	seen := make(map[string]bool)
	for _, err := range sentinels {
		require.NotEmpty(t, err.Error())
		require.False(t, seen[err.Error()], "duplicate message: %s", err.Error())
		seen[err.Error()] = true
	}
}

func TestWrappedSentinel_MatchesWithErrorsIs(t *testing.T) {
	wrapped := types.ErrPoolNotFound.Wrapf("pool %d not found", 7)
	require.ErrorIs(t, wrapped, types.ErrPoolNotFound)
	require.NotErrorIs(t, wrapped, types.ErrPoolAlreadyExists)
	require.Contains(t, wrapped.Error(), "pool 7 not found")
}

func TestGetRecoverySuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "registered sentinel",
			err:  types.ErrDeadlineExceeded,
			want: types.RecoverySuggestions[types.ErrDeadlineExceeded],
		},
		{
			name: "wrapped sentinel",
			err:  types.WrapWithRecovery(types.ErrReentrancy, "swap on pool %d", 3),
			want: types.RecoverySuggestions[types.ErrReentrancy],
		},
		{
			name: "unregistered error",
			err:  errors.New("something else"),
			want: "No recovery suggestion available. Check error message for details.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, types.GetRecoverySuggestion(tc.err))
		})
	}
}

func TestWrapWithRecovery_PreservesChain(t *testing.T) {
	err := types.WrapWithRecovery(types.ErrInvariantViolation, "pool %d", 1)
	require.ErrorIs(t, err, types.ErrInvariantViolation)

	var withRecovery *types.ErrorWithRecovery
	require.ErrorAs(t, err, &withRecovery)
	require.Equal(t, types.RecoverySuggestions[types.ErrInvariantViolation], withRecovery.Recovery)
	require.Contains(t, err.Error(), "pool 1")
}
