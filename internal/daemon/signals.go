package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/rwein/barpoll/internal/logger"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM. SIGHUP is
// accepted as a reload request but only logged; live reconfiguration is a
// deliberate no-op.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigs {
			if sig == syscall.SIGHUP {
				logger.Info().Msg("Received SIGHUP, reload not implemented")
				continue
			}

			logger.Info().Str("signal", sig.String()).Msg("Received termination signal")
			cancel()
			return
		}
	}()

	return ctx, cancel
}
