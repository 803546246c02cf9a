package history

import (
	"database/sql"

	"codeberg.org/rwein/barpoll/internal/errors"
)

// InitSchema creates the sample table on first use.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER NOT NULL,
            event TEXT NOT NULL,
            payload TEXT NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_samples_event_time
            ON samples (event, timestamp);
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}

// GetInsertSampleSQL returns the insert statement used by the batch flusher.
func GetInsertSampleSQL() string {
	return `INSERT INTO samples (timestamp, event, payload) VALUES (?, ?, ?)`
}
