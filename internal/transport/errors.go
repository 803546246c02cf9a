package transport

import "codeberg.org/rwein/barpoll/internal/errors"

const (
	// ErrHostGone means the status-bar host endpoint could not be reached
	// even after re-resolving it. Callers treat this as a clean shutdown
	// condition, not a failure: without a host there is nothing to report to.
	ErrHostGone = errors.ErrorCode("transport_host_gone")

	ErrEmptyMessage = errors.ErrorCode("transport_empty_message")
)
