package network

import "codeberg.org/rwein/barpoll/internal/errors"

const (
	ErrInterfaceNotFound = errors.ErrorCode("network_interface_not_found")
	ErrReadCounters      = errors.ErrorCode("network_read_counters_failed")
)
