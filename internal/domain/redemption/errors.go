package redemption

import "errors"

var (
	// User-correctable outcomes. Returned as values, never retried.
	ErrRewardUnavailable  = errors.New("reward unavailable")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrNotFound           = errors.New("redemption not found")
	ErrAlreadyResolved    = errors.New("redemption already resolved")
	ErrNotInstructor      = errors.New("only the course instructor can resolve redemptions")

	// ErrTransactionFailed is surfaced after bounded retries of transient
	// storage conflicts are exhausted.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrInternal marks invariant violations (negative cost reward, orphaned
	// entry). Never silently succeeds.
	ErrInternal = errors.New("internal ledger error")
)
