// Package brew tracks how many packages Homebrew considers outdated. The
// refresh shells out to the package manager, so it is rate-limited by an
// update interval, deferred while the system is loaded, and guarded against
// re-entrant runs.
package brew

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"codeberg.org/rwein/barpoll/internal/errors"
	"codeberg.org/rwein/barpoll/internal/logger"
	"codeberg.org/rwein/barpoll/internal/transport"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
)

// Options tune the refresh policy. Zero values fall back to defaults.
type Options struct {
	UpdateInterval time.Duration
	LoadThreshold  float64 // fraction of core count; default 0.75
	ListInitial    int
	ListCeiling    int
}

// Sampler owns the outdated-package state for one daemon. Single-threaded
// use only: the in-progress flag guards against re-entrancy from the same
// goroutine, not against concurrent access.
type Sampler struct {
	binary string
	runner Runner

	updateInterval time.Duration
	loadThreshold  float64

	loadAvg func() (float64, error)
	cores   func() (int, error)
	now     func() time.Time

	list             *PackageList
	outdatedCount    int
	lastUpdate       time.Time
	lastCheck        time.Time
	updateInProgress bool
	lastError        errors.ErrorCode
}

// New verifies the package manager is installed and caches its absolute
// path. A missing binary is an initialization error; the daemon has nothing
// to poll without it.
func New(opts Options) (*Sampler, error) {
	errFactory := errors.New()

	binary, err := exec.LookPath("brew")
	if err != nil {
		return nil, errFactory.Wrap(ErrNotInstalled, err)
	}

	if opts.LoadThreshold <= 0 {
		opts.LoadThreshold = 0.75
	}

	return &Sampler{
		binary:         binary,
		runner:         execRunner{},
		updateInterval: opts.UpdateInterval,
		loadThreshold:  opts.LoadThreshold,
		loadAvg:        loadAvg1,
		cores:          logicalCores,
		now:            time.Now,
		list:           NewPackageList(opts.ListInitial, opts.ListCeiling),
	}, nil
}

func loadAvg1() (float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return 0, err
	}

	return avg.Load1, nil
}

func logicalCores() (int, error) {
	return cpu.Counts(true)
}

// NeedsUpdate reports whether a refresh is due: the update interval has
// elapsed and the 1-minute load average sits below the configured fraction
// of the core count. Load-read failures do not block a due refresh.
func (s *Sampler) NeedsUpdate() bool {
	if s.now().Sub(s.lastUpdate) < s.updateInterval {
		return false
	}

	avg, err := s.loadAvg()
	if err != nil {
		return true
	}
	cores, err := s.cores()
	if err != nil || cores <= 0 {
		return true
	}

	if avg >= s.loadThreshold*float64(cores) {
		logger.Debug().
			Float64("load_avg", avg).
			Int("cores", cores).
			Msg("System under load, deferring package refresh")
		return false
	}

	return true
}

// Update runs a refresh when one is due. Called on every poll tick.
func (s *Sampler) Update(ctx context.Context) error {
	if !s.NeedsUpdate() {
		return nil
	}

	return s.Refresh(ctx)
}

// Refresh runs the package manager's database update followed by the
// outdated listing, rebuilding the package list from the output. A second
// call while one is in flight is rejected immediately rather than queued.
// The in-progress flag is cleared on every exit path.
func (s *Sampler) Refresh(ctx context.Context) error {
	errFactory := errors.New()

	if s.updateInProgress {
		return errFactory.New(ErrUpdateInProgress)
	}
	s.updateInProgress = true
	defer func() { s.updateInProgress = false }()

	s.lastCheck = s.now()

	if _, err := s.runner.Run(ctx, s.binary, "update"); err != nil {
		// Leave the package list untouched; stale names beat no names.
		s.lastError = ErrCommandFailed
		return errFactory.Wrap(ErrCommandFailed, err).WithMessage("brew update failed")
	}

	out, err := s.runner.Run(ctx, s.binary, "outdated", "--quiet")
	if err != nil {
		s.lastError = ErrCommandFailed
		return errFactory.Wrap(ErrCommandFailed, err).WithMessage("brew outdated failed")
	}

	s.list.Reset()
	count := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Status banners and warnings never start with an alphanumeric.
		if line == "" || !isAlnum(line[0]) {
			continue
		}

		if err := s.list.Append(line); err != nil {
			// Keep the partial list already accumulated.
			s.outdatedCount = count
			s.lastError = ErrBufferOverflow
			return err
		}
		count++
	}

	s.outdatedCount = count
	s.lastUpdate = s.now()
	s.lastError = ""

	return nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// OutdatedCount returns the number of outdated packages from the last
// successful refresh.
func (s *Sampler) OutdatedCount() int {
	return s.outdatedCount
}

// PendingUpdates returns the comma-joined outdated package names.
func (s *Sampler) PendingUpdates() string {
	return s.list.String()
}

// Fields returns the trigger-message payload in the order the host renders it.
func (s *Sampler) Fields() []transport.Field {
	lastCheck := "0"
	if !s.lastCheck.IsZero() {
		lastCheck = strconv.FormatInt(s.lastCheck.Unix(), 10)
	}

	errText := "none"
	if s.lastError != "" {
		errText = errors.GetErrorMessage(s.lastError)
	}

	return []transport.Field{
		{Key: "outdated_count", Value: strconv.Itoa(s.outdatedCount)},
		{Key: "pending_updates", Value: s.list.String()},
		{Key: "last_check", Value: lastCheck},
		{Key: "error", Value: errText},
	}
}

// Close releases sampler resources.
func (s *Sampler) Close() error {
	s.list.Reset()
	return nil
}
