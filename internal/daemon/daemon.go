// Package daemon owns the poll-publish lifecycle shared by all event
// providers: register the event with the host, sample at a fixed frequency,
// publish a trigger message, and shut down cleanly on signals.
package daemon

import (
	"context"
	"strconv"
	"time"

	"codeberg.org/rwein/barpoll/internal/errors"
	"codeberg.org/rwein/barpoll/internal/history"
	"codeberg.org/rwein/barpoll/internal/logger"
	"codeberg.org/rwein/barpoll/internal/transport"
)

// MaxFrequency caps the poll frequency at one hour; anything longer is
// almost certainly a unit mistake on the command line.
const MaxFrequency = 3600 * time.Second

// Sampler is one metric domain: it refreshes its derived values on Update
// and exposes them as ordered trigger fields.
type Sampler interface {
	Update(ctx context.Context) error
	Fields() []transport.Field
	Close() error
}

// EventClient is the slice of the transport the driver needs.
type EventClient interface {
	AddEvent(event string) error
	Trigger(event string, fields []transport.Field) error
}

// Options configures one daemon instance.
type Options struct {
	Event    string
	Interval time.Duration
	Sampler  Sampler
	Client   EventClient
	History  history.Recorder
}

// Daemon drives one sampler. Single-threaded: sample N+1 never starts
// before sample N's publish completed.
type Daemon struct {
	event    string
	interval time.Duration
	sampler  Sampler
	client   EventClient
	history  history.Recorder
}

func New(opts Options) (*Daemon, error) {
	errFactory := errors.New()

	if opts.Event == "" {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "event name is required")
	}
	if opts.Interval <= 0 || opts.Interval > MaxFrequency {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, opts.Interval.String())
	}
	if opts.Sampler == nil || opts.Client == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "sampler and client are required")
	}

	return &Daemon{
		event:    opts.Event,
		interval: opts.Interval,
		sampler:  opts.Sampler,
		client:   opts.Client,
		history:  opts.History,
	}, nil
}

// Run registers the event and polls until ctx is cancelled. It returns nil
// on cancellation and a transport_host_gone error when the host disappears;
// the caller treats the latter as a clean exit, not a failure.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.sampler.Close()

	// Fire-and-forget registration. A missing host already ends the run.
	if err := d.client.AddEvent(d.event); err != nil {
		return err
	}

	logger.Info().
		Str("event", d.event).
		Str("interval", d.interval.String()).
		Msg("Entering poll loop")

	// Publish immediately so the bar shows data before the first full
	// interval elapses.
	if err := d.tick(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("event", d.event).Msg("Poll loop stopped")
			return nil
		case <-ticker.C:
			if err := d.tick(ctx); err != nil {
				return err
			}
		}
	}
}

// tick runs one sample-publish cycle. Sampling failures are transient: the
// retained field values are published and the loop continues. Only a gone
// host propagates up.
func (d *Daemon) tick(ctx context.Context) error {
	if err := d.sampler.Update(ctx); err != nil {
		logger.Warn().
			Err(err).
			Str("event", d.event).
			Msg("Sample update failed, publishing retained values")
	}

	fields := d.sampler.Fields()
	if err := d.client.Trigger(d.event, fields); err != nil {
		if errors.HasCode(err, transport.ErrHostGone) {
			return err
		}
		logger.Error().Err(err).Str("event", d.event).Msg("Failed to publish trigger")
		return nil
	}

	if d.history != nil {
		sample := &history.Sample{
			Timestamp: time.Now(),
			Event:     d.event,
			Payload:   transport.TriggerCommand(d.event, fields),
		}
		if err := d.history.Record(ctx, sample); err != nil {
			logger.Warn().Err(err).Msg("Failed to record sample history")
		}
	}

	return nil
}

// ParseFrequency converts a positional poll-frequency argument (float
// seconds) into a duration, rejecting non-positive and implausibly large
// values.
func ParseFrequency(arg string) (time.Duration, error) {
	errFactory := errors.New()

	seconds, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrInvalidInterval, err)
	}

	interval := time.Duration(seconds * float64(time.Second))
	if interval <= 0 || interval > MaxFrequency {
		return 0, errFactory.WithData(errors.ErrInvalidInterval, arg)
	}

	return interval, nil
}
