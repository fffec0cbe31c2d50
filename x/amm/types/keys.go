package types

import "fmt"

const (
	// ModuleName defines the module name
	ModuleName = "amm"

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// NullHolder is the unreachable share holder that receives the
	// permanently locked minimum shares on first mint. Nothing can spend
	// from it.
	NullHolder = "amm/void"
)

// PoolAddress returns the custody account for a pool. Each pool holds its
// own reserves (and any shares sent to it for burning) under this address.
func PoolAddress(poolID uint64) string {
	return fmt.Sprintf("amm/pool/%d", poolID)
}

// PairKey returns the canonical order-independent lookup key for an asset
// pair. Assets are sorted lexicographically so both orderings map to the
// same pool.
func PairKey(assetA, assetB string) string {
	if assetA > assetB {
		assetA, assetB = assetB, assetA
	}
	return assetA + "/" + assetB
}

// SortAssets returns the pair in canonical lexicographic order.
func SortAssets(assetA, assetB string) (string, string) {
	if assetA > assetB {
		return assetB, assetA
	}
	return assetA, assetB
}
