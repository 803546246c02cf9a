package brew

import "codeberg.org/rwein/barpoll/internal/errors"

const (
	ErrNotInstalled     = errors.ErrorCode("brew_not_installed")
	ErrUpdateInProgress = errors.ErrorCode("brew_update_in_progress")
	ErrCommandFailed    = errors.ErrorCode("brew_command_failed")
	ErrBufferOverflow   = errors.ErrorCode("brew_buffer_overflow")
)
