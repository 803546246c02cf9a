package cpu

import (
	"context"
	"testing"

	"codeberg.org/rwein/barpoll/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSampler(snapshots ...Ticks) *Sampler {
	s := New()
	i := 0
	s.readTicks = func() (Ticks, error) {
		t := snapshots[i]
		if i < len(snapshots)-1 {
			i++
		}
		return t, nil
	}
	return s
}

func TestFirstUpdateReportsZero(t *testing.T) {
	s := newTestSampler(Ticks{User: 100, System: 50, Idle: 850})

	require.NoError(t, s.Update(context.Background()))
	assert.Equal(t, 0, s.UserLoad)
	assert.Equal(t, 0, s.SysLoad)
	assert.Equal(t, 0, s.TotalLoad)
}

func TestLoadFromTickDeltas(t *testing.T) {
	s := newTestSampler(
		Ticks{User: 100, System: 50, Idle: 850},
		// Deltas: user 30, system 10, idle 60 => total 100.
		Ticks{User: 130, System: 60, Idle: 910},
	)

	ctx := context.Background()
	require.NoError(t, s.Update(ctx))
	require.NoError(t, s.Update(ctx))

	assert.Equal(t, 30, s.UserLoad)
	assert.Equal(t, 10, s.SysLoad)
	assert.Equal(t, 40, s.TotalLoad)
}

func TestTotalIsSumOfUserAndSys(t *testing.T) {
	s := newTestSampler(
		Ticks{User: 0, System: 0, Idle: 0},
		Ticks{User: 1, System: 2, Idle: 4},
	)

	ctx := context.Background()
	require.NoError(t, s.Update(ctx))
	require.NoError(t, s.Update(ctx))

	assert.GreaterOrEqual(t, s.UserLoad, 0)
	assert.LessOrEqual(t, s.UserLoad, 100)
	assert.GreaterOrEqual(t, s.SysLoad, 0)
	assert.LessOrEqual(t, s.SysLoad, 100)
	assert.Equal(t, s.UserLoad+s.SysLoad, s.TotalLoad)
}

func TestZeroDeltaGuardsDivision(t *testing.T) {
	same := Ticks{User: 100, System: 50, Idle: 850}
	s := newTestSampler(same, same)

	ctx := context.Background()
	require.NoError(t, s.Update(ctx))
	require.NoError(t, s.Update(ctx))

	assert.Equal(t, 0, s.UserLoad)
	assert.Equal(t, 0, s.SysLoad)
	assert.Equal(t, 0, s.TotalLoad)
}

func TestReadFailureRetainsValues(t *testing.T) {
	s := newTestSampler(
		Ticks{User: 100, System: 50, Idle: 850},
		Ticks{User: 130, System: 60, Idle: 910},
	)

	ctx := context.Background()
	require.NoError(t, s.Update(ctx))
	require.NoError(t, s.Update(ctx))
	require.Equal(t, 40, s.TotalLoad)

	errFactory := errors.New()
	s.readTicks = func() (Ticks, error) {
		return Ticks{}, errFactory.New(ErrReadStats)
	}

	err := s.Update(ctx)
	require.Error(t, err)
	assert.Equal(t, 30, s.UserLoad, "loads hold last known good value")
	assert.Equal(t, 10, s.SysLoad)
	assert.Equal(t, 40, s.TotalLoad)
}

func TestFields(t *testing.T) {
	s := newTestSampler(
		Ticks{User: 0, System: 0, Idle: 0},
		Ticks{User: 12, System: 3, Idle: 85},
	)

	ctx := context.Background()
	require.NoError(t, s.Update(ctx))
	require.NoError(t, s.Update(ctx))

	fields := s.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "user_load", fields[0].Key)
	assert.Equal(t, "12", fields[0].Value)
	assert.Equal(t, "sys_load", fields[1].Key)
	assert.Equal(t, "03", fields[1].Value)
	assert.Equal(t, "total_load", fields[2].Key)
	assert.Equal(t, "15", fields[2].Value)
}
