// Package network derives per-interface upload and download throughput from
// the kernel's cumulative byte counters, scaled into a human display unit.
package network

import (
	"context"
	"fmt"
	"math"
	"time"

	"codeberg.org/rwein/barpoll/internal/errors"
	"codeberg.org/rwein/barpoll/internal/transport"
	"github.com/shirou/gopsutil/v3/net"
)

// Unit tags a throughput value with its display scale.
type Unit int

const (
	UnitBps Unit = iota
	UnitKBps
	UnitMBps
)

var unitStrings = [...]string{" Bps", "KBps", "MBps"}

func (u Unit) String() string {
	if u < UnitBps || u > UnitMBps {
		return "?"
	}

	return unitStrings[u]
}

// Counters is one snapshot of an interface's cumulative byte counters.
type Counters struct {
	In  uint64
	Out uint64
}

// Sampler computes throughput for one named interface. Not safe for
// concurrent use; each daemon owns exactly one.
type Sampler struct {
	ifname       string
	readCounters func(name string) (Counters, error)
	now          func() time.Time

	// Elapsed wall-clock bounds (seconds) outside which a sample is
	// discarded, e.g. right after a sleep/wake cycle.
	minElapsed float64
	maxElapsed float64

	prev     Counters
	prevTime time.Time

	Up       int
	Down     int
	UpUnit   Unit
	DownUnit Unit
}

// New resolves ifname against the kernel interface table and records the
// baseline counters. A missing interface is an initialization error; the
// caller is expected to exit rather than poll an interface that never
// existed.
func New(ifname string, minElapsed, maxElapsed float64) (*Sampler, error) {
	s := &Sampler{
		ifname:       ifname,
		readCounters: interfaceCounters,
		now:          time.Now,
		minElapsed:   minElapsed,
		maxElapsed:   maxElapsed,
	}

	counters, err := s.readCounters(ifname)
	if err != nil {
		return nil, err
	}

	s.prev = counters
	s.prevTime = s.now()

	return s, nil
}

func interfaceCounters(name string) (Counters, error) {
	errFactory := errors.New()

	stats, err := net.IOCounters(true)
	if err != nil {
		return Counters{}, errFactory.Wrap(ErrReadCounters, err)
	}

	for i := range stats {
		if stats[i].Name == name {
			return Counters{In: stats[i].BytesRecv, Out: stats[i].BytesSent}, nil
		}
	}

	return Counters{}, errFactory.WithData(ErrInterfaceNotFound, name)
}

// Update re-reads the counters and recomputes the throughput. An elapsed
// time outside the configured sane bounds makes the call a no-op: the
// derived values keep their previous state while the counter baseline moves
// forward. A counter that went backwards (wrap) contributes a zero rate.
func (s *Sampler) Update(_ context.Context) error {
	now := s.now()
	cur, err := s.readCounters(s.ifname)
	if err != nil {
		return err
	}

	elapsed := now.Sub(s.prevTime).Seconds()
	prev := s.prev
	s.prev = cur
	s.prevTime = now

	if elapsed < s.minElapsed || elapsed > s.maxElapsed {
		return nil
	}

	var inRate, outRate float64
	if cur.In > prev.In {
		inRate = float64(cur.In-prev.In) / elapsed
	}
	if cur.Out > prev.Out {
		outRate = float64(cur.Out-prev.Out) / elapsed
	}

	s.Down, s.DownUnit = scale(inRate)
	s.Up, s.UpUnit = scale(outRate)

	return nil
}

// scale picks a display unit from the decimal magnitude of a bytes/second
// rate and converts the value accordingly.
func scale(rate float64) (int, Unit) {
	var exponent float64
	if rate > 0 {
		exponent = math.Log10(rate)
	}

	switch {
	case exponent < 3:
		return int(rate), UnitBps
	case exponent < 6:
		return int(rate / 1e3), UnitKBps
	default:
		return int(rate / 1e6), UnitMBps
	}
}

// Fields returns the trigger-message payload in the order the host renders it.
func (s *Sampler) Fields() []transport.Field {
	return []transport.Field{
		{Key: "upload", Value: fmt.Sprintf("%03d%s", s.Up, s.UpUnit)},
		{Key: "download", Value: fmt.Sprintf("%03d%s", s.Down, s.DownUnit)},
	}
}

// Close releases sampler resources; the network sampler holds none.
func (s *Sampler) Close() error {
	return nil
}
