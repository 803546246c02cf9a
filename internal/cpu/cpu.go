// Package cpu derives instantaneous host CPU load percentages from the
// cumulative tick counters exposed by the kernel.
package cpu

import (
	"context"
	"fmt"
	"strconv"

	"codeberg.org/rwein/barpoll/internal/errors"
	"codeberg.org/rwein/barpoll/internal/transport"
	"github.com/shirou/gopsutil/v3/cpu"
)

// Ticks is one snapshot of the cumulative per-state CPU times.
type Ticks struct {
	User   float64
	System float64
	Idle   float64
}

// Sampler turns consecutive tick snapshots into integer load percentages.
// It is not safe for concurrent use; each daemon owns exactly one.
type Sampler struct {
	readTicks func() (Ticks, error)

	prev    Ticks
	hasPrev bool

	UserLoad  int
	SysLoad   int
	TotalLoad int
}

func New() *Sampler {
	return &Sampler{readTicks: hostTicks}
}

func hostTicks() (Ticks, error) {
	errFactory := errors.New()

	times, err := cpu.Times(false)
	if err != nil {
		return Ticks{}, errFactory.Wrap(ErrReadStats, err)
	}
	if len(times) == 0 {
		return Ticks{}, errFactory.New(ErrNoStats)
	}

	t := times[0]

	return Ticks{
		User:   t.User,
		System: t.System,
		Idle:   t.Idle,
	}, nil
}

// Update fetches the current tick counters and recomputes the load
// percentages against the previous snapshot. The first call only records the
// baseline and leaves all loads at zero. A zero total delta also reports
// zero load rather than dividing. On a read failure the previous derived
// values are retained.
func (s *Sampler) Update(_ context.Context) error {
	cur, err := s.readTicks()
	if err != nil {
		return err
	}

	if s.hasPrev {
		deltaUser := cur.User - s.prev.User
		deltaSystem := cur.System - s.prev.System
		deltaIdle := cur.Idle - s.prev.Idle
		deltaTotal := deltaUser + deltaSystem + deltaIdle

		if deltaTotal > 0 {
			s.UserLoad = int(deltaUser / deltaTotal * 100.0)
			s.SysLoad = int(deltaSystem / deltaTotal * 100.0)
			s.TotalLoad = s.UserLoad + s.SysLoad
		} else {
			s.UserLoad = 0
			s.SysLoad = 0
			s.TotalLoad = 0
		}
	}

	s.prev = cur
	s.hasPrev = true

	return nil
}

// Fields returns the trigger-message payload in the order the host renders it.
func (s *Sampler) Fields() []transport.Field {
	return []transport.Field{
		{Key: "user_load", Value: strconv.Itoa(s.UserLoad)},
		{Key: "sys_load", Value: fmt.Sprintf("%02d", s.SysLoad)},
		{Key: "total_load", Value: fmt.Sprintf("%02d", s.TotalLoad)},
	}
}

// Close releases sampler resources. The CPU sampler holds none; this keeps
// the daemon driver's lifecycle uniform across samplers.
func (s *Sampler) Close() error {
	return nil
}
