package cpu

import "codeberg.org/rwein/barpoll/internal/errors"

const (
	ErrReadStats = errors.ErrorCode("cpu_read_stats_failed")
	ErrNoStats   = errors.ErrorCode("cpu_no_stats_available")
)
