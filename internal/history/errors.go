package history

import "codeberg.org/rwein/barpoll/internal/errors"

const (
	ErrInvalidConfig     = errors.ErrInvalidConfig
	ErrInvalidDBPath     = errors.ErrorCode("history_invalid_db_path")
	ErrInvalidSample     = errors.ErrorCode("history_invalid_sample")
	ErrSchemaInitFailed  = errors.ErrorCode("history_schema_init_failed")
	ErrTransactionFailed = errors.ErrorCode("history_transaction_failed")
	ErrStorageInit       = errors.ErrInitFailed
	ErrStorageClose      = errors.ErrShutdownFailed
	ErrRecordFailed      = errors.ErrorCode("history_record_failed")
	ErrOperationTimeout  = errors.ErrTimeout
)
