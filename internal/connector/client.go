package connector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/vault-tools/connect-db/internal/logging"
)

// ErrClientStart means the client executable could not be started at all,
// as opposed to the client running and exiting non-zero.
var ErrClientStart = errors.New("failed to start database client")

// launch runs the client with the resolved URL as its only argument and
// the launcher's stdio attached, then waits for it to exit. The child's
// exit code is returned as-is so main can mirror it.
func (l *Launcher) launch(ctx context.Context, url, password string) (int, error) {
	log := logging.New("client")

	cmd := exec.Command(l.client, url)
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	cmd.Env = l.env
	if l.exportPassword {
		cmd.Env = append(cmd.Env, "PGPASSWORD="+password)
	}

	log.DebugContext(ctx, "starting client", "client", l.client)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrClientStart, l.client, err)
	}

	// The interactive session owns the terminal now. Ctrl+C is for the
	// client, not for us; the kernel delivers it to the whole foreground
	// process group, so stop reacting until the client is done.
	signal.Ignore(os.Interrupt)
	defer signal.Reset(os.Interrupt)

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		// ExitCode is -1 when the client died to a signal; report the
		// shell convention 128+sig instead so the mirrored status stays
		// meaningful.
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			code = 128 + int(status.Signal())
		}
		log.DebugContext(ctx, "client exited", "code", code)
		return code, nil
	}
	if err != nil {
		return 0, fmt.Errorf("wait for %s: %w", l.client, err)
	}

	log.DebugContext(ctx, "client exited", "code", 0)
	return 0, nil
}
