package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Pool is a two-asset constant-product liquidity pool. Assets are stored in
// canonical lexicographic order, fixed at creation. Reserves track the pool's
// last-known custody balances and change only through mint, burn, swap and
// sync. ShareSupply counts all issued pool shares, including the permanently
// locked minimum issued to NullHolder on first mint.
type Pool struct {
	Id     uint64 `json:"id"`
	AssetA string `json:"asset_a"`
	AssetB string `json:"asset_b"`

	ReserveA    math.Int `json:"reserve_a"`
	ReserveB    math.Int `json:"reserve_b"`
	ShareSupply math.Int `json:"share_supply"`

	// KLast is reserveA*reserveB as of the most recent mint or burn; used
	// to meter fee growth for protocol-fee share minting.
	KLast math.Int `json:"k_last"`

	// Time-weighted price accumulators, updated at most once per timestamp
	// on any reserve-changing call. CumulativePriceA accumulates the price
	// of asset A quoted in asset B, and vice versa.
	CumulativePriceA math.LegacyDec `json:"cumulative_price_a"`
	CumulativePriceB math.LegacyDec `json:"cumulative_price_b"`
	LastUpdateUnix   int64          `json:"last_update_unix"`

	Creator string `json:"creator,omitempty"`
}

// NewPool returns an initialized empty pool for a canonical asset pair.
func NewPool(id uint64, assetA, assetB, creator string) *Pool {
	assetA, assetB = SortAssets(assetA, assetB)
	return &Pool{
		Id:               id,
		AssetA:           assetA,
		AssetB:           assetB,
		ReserveA:         math.ZeroInt(),
		ReserveB:         math.ZeroInt(),
		ShareSupply:      math.ZeroInt(),
		KLast:            math.ZeroInt(),
		CumulativePriceA: math.LegacyZeroDec(),
		CumulativePriceB: math.LegacyZeroDec(),
		Creator:          creator,
	}
}

// Address returns the pool's custody account.
func (p *Pool) Address() string {
	return PoolAddress(p.Id)
}

// PairKey returns the canonical lookup key for the pool's asset pair.
func (p *Pool) PairKey() string {
	return PairKey(p.AssetA, p.AssetB)
}

// HasAsset reports whether asset is one of the pool's two assets.
func (p *Pool) HasAsset(asset string) bool {
	return asset == p.AssetA || asset == p.AssetB
}

// ReservesFor orients the pool's reserves for a trade from assetIn to
// assetOut. Returns ErrInvalidPath when the pair does not match the pool.
func (p *Pool) ReservesFor(assetIn, assetOut string) (reserveIn, reserveOut math.Int, err error) {
	switch {
	case assetIn == p.AssetA && assetOut == p.AssetB:
		return p.ReserveA, p.ReserveB, nil
	case assetIn == p.AssetB && assetOut == p.AssetA:
		return p.ReserveB, p.ReserveA, nil
	default:
		return math.Int{}, math.Int{}, ErrInvalidPath.Wrapf(
			"pool %d holds %s/%s, not %s/%s", p.Id, p.AssetA, p.AssetB, assetIn, assetOut)
	}
}

// Clone returns a deep copy of the pool, used for rollback snapshots.
func (p *Pool) Clone() *Pool {
	cp := *p
	return &cp
}

// Validate checks internal consistency of the pool state.
func (p *Pool) Validate() error {
	if p.AssetA == p.AssetB {
		return ErrIdenticalAssets.Wrapf("pool %d", p.Id)
	}
	if p.AssetA == "" || p.AssetB == "" {
		return ErrEmptyAsset.Wrapf("pool %d", p.Id)
	}
	if p.AssetA > p.AssetB {
		return ErrInvalidPoolState.Wrapf("pool %d assets not in canonical order", p.Id)
	}
	for name, v := range map[string]math.Int{
		"reserve_a":    p.ReserveA,
		"reserve_b":    p.ReserveB,
		"share_supply": p.ShareSupply,
		"k_last":       p.KLast,
	} {
		if v.IsNil() {
			return ErrInvalidPoolState.Wrapf("pool %d: nil %s", p.Id, name)
		}
		if v.IsNegative() {
			return ErrInvalidPoolState.Wrapf("pool %d: negative %s", p.Id, name)
		}
	}
	// Reserves without shares (or the reverse) means custody and the share
	// ledger disagree.
	if p.ShareSupply.IsZero() && (p.ReserveA.IsPositive() || p.ReserveB.IsPositive()) {
		return ErrInvalidPoolState.Wrapf("pool %d has reserves but zero shares", p.Id)
	}
	if p.ShareSupply.IsPositive() && (p.ReserveA.IsZero() || p.ReserveB.IsZero()) {
		return ErrInvalidPoolState.Wrapf("pool %d has shares but empty reserves", p.Id)
	}
	return nil
}

func (p *Pool) String() string {
	return fmt.Sprintf("Pool{id: %d, pair: %s/%s, reserves: %s/%s, shares: %s}",
		p.Id, p.AssetA, p.AssetB, p.ReserveA, p.ReserveB, p.ShareSupply)
}
