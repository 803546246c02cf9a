package history

import "codeberg.org/rwein/barpoll/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/barpoll/history.db"
)

type Config struct {
	DBPath       string
	BatchSize    int
	BatchTimeout int // seconds
	Enabled      bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		BatchSize:    16,
		BatchTimeout: 30,
		Enabled:      false,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	return nil
}
