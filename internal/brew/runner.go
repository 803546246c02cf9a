package brew

import (
	"context"
	"io"
	"os/exec"
)

const captureInitialSize = 4096

// Runner executes the package manager and captures its standard output.
// Abstracted so tests can substitute canned output for real subprocesses.
type Runner interface {
	Run(ctx context.Context, path string, args ...string) ([]byte, error)
}

// execRunner spawns the command directly by absolute path, no shell in
// between, so PATH lookup ambiguity and injection are off the table in the
// minimal environment these daemons run under.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	buf := make([]byte, captureInitialSize)
	used := 0
	var readErr error
	for {
		if used == len(buf) {
			grown := make([]byte, len(buf)*2)
			copy(grown, buf)
			buf = grown
		}

		n, err := stdout.Read(buf[used:])
		used += n
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	if err := cmd.Wait(); err != nil {
		return buf[:used], err
	}
	if readErr != nil {
		return buf[:used], readErr
	}

	return buf[:used], nil
}
