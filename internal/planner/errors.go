package planner

import "errors"

// Precondition errors, raised before any sub-operation is assembled.
var (
	// ErrWalletNotConnected is returned when no owner address is set.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrObligationNotFound is returned when the reward map references an
	// obligation that is not part of the caller's refreshed set.
	ErrObligationNotFound = errors.New("obligation not found")

	// ErrNothingToClaim is returned for an empty reward map.
	ErrNothingToClaim = errors.New("nothing to claim")
)

// ErrNoConsolidationResult is fatal to a consolidation plan: every asset
// was skipped, so there is no coin to finalize. The plan is discarded
// before finalization.
var ErrNoConsolidationResult = errors.New("no consolidation result: all assets skipped")
