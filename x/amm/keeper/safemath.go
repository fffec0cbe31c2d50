package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/swapforge/swapforge/x/amm/types"
)

// Overflow-safe arithmetic for pool math. All intermediate products are
// bounded to 2^256 to match the fixed-width semantics the share and reserve
// accounting was designed around.

var maxInt = new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)

// SafeAdd adds two math.Int values with overflow checking.
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxInt) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrapf("addition overflow: %s + %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts b from a with underflow checking.
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, types.ErrOverflow.Wrapf("underflow: cannot subtract %s from %s", b, a)
	}
	return math.NewIntFromBigInt(new(big.Int).Sub(a.BigInt(), b.BigInt())), nil
}

// SafeMul multiplies two math.Int values with overflow checking.
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.Cmp(maxInt) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrapf("multiplication overflow: %s * %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeMulDiv computes floor((a * b) / c) with overflow protection. The
// truncation toward zero is load-bearing for fee accounting; do not round.
func SafeMulDiv(a, b, c math.Int) (math.Int, error) {
	if c.IsZero() {
		return math.Int{}, types.ErrOverflow.Wrap("division by zero")
	}
	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if intermediate.Cmp(maxInt) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrapf("overflow in multiplication step: %s * %s", a, b)
	}
	return math.NewIntFromBigInt(intermediate.Quo(intermediate, c.BigInt())), nil
}

// IntSqrt returns floor(sqrt(a)). Exact integer square root; the first-mint
// share formula depends on the floor, not an approximation.
func IntSqrt(a math.Int) (math.Int, error) {
	if a.IsNegative() {
		return math.Int{}, types.ErrOverflow.Wrapf("square root of negative value %s", a)
	}
	return math.NewIntFromBigInt(new(big.Int).Sqrt(a.BigInt())), nil
}

// MinInt returns the smaller of a and b.
func MinInt(a, b math.Int) math.Int {
	if a.LT(b) {
		return a
	}
	return b
}
