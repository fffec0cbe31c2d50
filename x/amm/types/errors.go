package types

import (
	"errors"
	"fmt"

	sdkerrors "cosmossdk.io/errors"
)

// AMM module sentinel errors
var (
	ErrIdenticalAssets             = sdkerrors.Register(ModuleName, 2, "identical assets")
	ErrEmptyAsset                  = sdkerrors.Register(ModuleName, 3, "empty asset identifier")
	ErrPoolAlreadyExists           = sdkerrors.Register(ModuleName, 4, "pool already exists")
	ErrPoolNotFound                = sdkerrors.Register(ModuleName, 5, "pool not found")
	ErrInsufficientLiquidity       = sdkerrors.Register(ModuleName, 6, "insufficient liquidity in pool")
	ErrInsufficientLiquidityMinted = sdkerrors.Register(ModuleName, 7, "insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = sdkerrors.Register(ModuleName, 8, "insufficient liquidity burned")
	ErrInsufficientInputAmount     = sdkerrors.Register(ModuleName, 9, "insufficient input amount")
	ErrInsufficientOutputAmount    = sdkerrors.Register(ModuleName, 10, "output amount less than minimum required")
	ErrExcessiveInputAmount        = sdkerrors.Register(ModuleName, 11, "input amount exceeds maximum allowed")
	ErrInsufficientAAmount         = sdkerrors.Register(ModuleName, 12, "amount of asset A below minimum")
	ErrInsufficientBAmount         = sdkerrors.Register(ModuleName, 13, "amount of asset B below minimum")
	ErrInvariantViolation          = sdkerrors.Register(ModuleName, 14, "constant product invariant violated")
	ErrInvalidRecipient            = sdkerrors.Register(ModuleName, 15, "invalid recipient")
	ErrDeadlineExceeded            = sdkerrors.Register(ModuleName, 16, "deadline exceeded")
	ErrReentrancy                  = sdkerrors.Register(ModuleName, 17, "reentrant call detected")
	ErrUnauthorized                = sdkerrors.Register(ModuleName, 18, "unauthorized")
	ErrInvalidPath                 = sdkerrors.Register(ModuleName, 19, "invalid swap path")
	ErrOverflow                    = sdkerrors.Register(ModuleName, 20, "arithmetic overflow")
	ErrInvalidAmount               = sdkerrors.Register(ModuleName, 21, "invalid amount")
	ErrInvalidPoolState            = sdkerrors.Register(ModuleName, 22, "invalid pool state")
	ErrInsufficientShares          = sdkerrors.Register(ModuleName, 23, "insufficient liquidity shares")
	ErrLedgerTransfer              = sdkerrors.Register(ModuleName, 24, "asset ledger transfer failed")
)

// RecoverySuggestions maps sentinel errors to actionable guidance surfaced
// alongside the error to API consumers.
var RecoverySuggestions = map[error]string{
	ErrIdenticalAssets:             "Verify the two asset identifiers differ; a pool requires two distinct assets.",
	ErrEmptyAsset:                  "Check that both asset identifiers are non-empty before creating a pool.",
	ErrPoolAlreadyExists:           "Query the registry for the existing pool and add liquidity to it instead.",
	ErrPoolNotFound:                "Verify the pool exists for this asset pair, or create it first.",
	ErrInsufficientLiquidity:       "Reduce the requested amount or wait for more liquidity to be provided.",
	ErrInsufficientLiquidityMinted: "Increase the deposit; the first mint must exceed the minimum locked shares.",
	ErrInsufficientLiquidityBurned: "Increase the shares burned; the pro-rata amounts rounded down to zero.",
	ErrInsufficientInputAmount:     "Ensure input assets were transferred into the pool before calling.",
	ErrInsufficientOutputAmount:    "Retry with a lower minimum output bound or a smaller trade.",
	ErrExcessiveInputAmount:        "Retry with a higher maximum input bound or a smaller requested output.",
	ErrInsufficientAAmount:         "Reduce the minimum bound for asset A or resubmit with fresh reserves.",
	ErrInsufficientBAmount:         "Reduce the minimum bound for asset B or resubmit with fresh reserves.",
	ErrInvariantViolation:          "Check that swap inputs cover the fee-adjusted constant product; reduce outputs or repay more.",
	ErrInvalidRecipient:            "Use a recipient that is not one of the pool's asset identifiers.",
	ErrDeadlineExceeded:            "Resubmit the transaction with a later deadline.",
	ErrReentrancy:                  "Wait for the in-flight pool operation to finish; nested calls are rejected.",
	ErrUnauthorized:                "Verify the caller is the configured fee admin.",
	ErrInvalidPath:                 "Check that the path has at least two assets and consecutive pairs have pools.",
	ErrOverflow:                    "Reduce the amounts involved; the computation exceeded the supported range.",
	ErrInvalidAmount:               "Check that all amounts are positive integers.",
	ErrInsufficientShares:          "Verify the share balance covers the amount being transferred or burned.",
}

// ErrorWithRecovery wraps an error with a recovery suggestion.
type ErrorWithRecovery struct {
	Err      error
	Recovery string
}

func (e *ErrorWithRecovery) Error() string { return e.Err.Error() }

func (e *ErrorWithRecovery) Unwrap() error { return e.Err }

// WrapWithRecovery wraps err with a formatted message and, when a recovery
// suggestion is registered for its sentinel, attaches it.
func WrapWithRecovery(err error, format string, args ...interface{}) error {
	wrapped := fmt.Errorf(format+": %w", append(args, err)...)
	if suggestion, ok := lookupRecovery(err); ok {
		return &ErrorWithRecovery{Err: wrapped, Recovery: suggestion}
	}
	return wrapped
}

// GetRecoverySuggestion returns the recovery suggestion for err, unwrapping
// as needed. Returns a generic message when none is registered.
func GetRecoverySuggestion(err error) string {
	if suggestion, ok := lookupRecovery(err); ok {
		return suggestion
	}
	return "No recovery suggestion available. Check error message for details."
}

func lookupRecovery(err error) (string, bool) {
	for err != nil {
		if suggestion, ok := RecoverySuggestions[err]; ok {
			return suggestion, true
		}
		err = errors.Unwrap(err)
	}
	return "", false
}
