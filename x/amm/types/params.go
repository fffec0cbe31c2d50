package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Params holds the engine-wide parameters. The swap fee is expressed as an
// integer ratio so all pool math stays in exact integer arithmetic: an input
// is scaled by FeeNumerator/FeeDenominator before the invariant check
// (997/1000 == 0.3% fee).
type Params struct {
	FeeNumerator   math.Int `json:"fee_numerator"`
	FeeDenominator math.Int `json:"fee_denominator"`

	// MinimumShares is issued to NullHolder on first mint and never
	// redeemable, keeping the share supply away from the precision floor.
	MinimumShares math.Int `json:"minimum_shares"`

	// ProtocolFeeCut is the denominator of the protocol's slice of fee
	// growth: 1/ProtocolFeeCut of sqrt(k) growth is minted to the fee
	// recipient.
	ProtocolFeeCut math.Int `json:"protocol_fee_cut"`

	// MaxPathLength bounds router paths to keep multi-hop execution cheap.
	MaxPathLength int `json:"max_path_length"`
}

// DefaultParams returns default parameters for the amm module
func DefaultParams() Params {
	return Params{
		FeeNumerator:   math.NewInt(997),
		FeeDenominator: math.NewInt(1000),
		MinimumShares:  math.NewInt(1000),
		ProtocolFeeCut: math.NewInt(6),
		MaxPathLength:  6,
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if p.FeeDenominator.IsNil() || !p.FeeDenominator.IsPositive() {
		return fmt.Errorf("fee denominator must be positive")
	}
	if p.FeeNumerator.IsNil() || !p.FeeNumerator.IsPositive() {
		return fmt.Errorf("fee numerator must be positive")
	}
	if p.FeeNumerator.GT(p.FeeDenominator) {
		return fmt.Errorf("fee numerator %s exceeds denominator %s", p.FeeNumerator, p.FeeDenominator)
	}
	if p.MinimumShares.IsNil() || p.MinimumShares.IsNegative() {
		return fmt.Errorf("minimum shares cannot be negative")
	}
	if p.ProtocolFeeCut.IsNil() || !p.ProtocolFeeCut.IsPositive() {
		return fmt.Errorf("protocol fee cut must be positive")
	}
	if p.MaxPathLength < 2 {
		return fmt.Errorf("max path length must be at least 2")
	}
	return nil
}
