// Package supervisor runs the game as a child process and relays its
// output line by line.
package supervisor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/tie/mclaunch/models"
)

// Game logs can carry long stack trace lines.
const maxLineSize = 1 << 20

// Run starts argv in dir with stdout and stderr merged into one stream,
// calls onLine for every line as it arrives and returns the exit code once
// the process ends. A process that cannot be started yields ErrSpawn.
func Run(argv []string, dir string, onLine func(string)) (int, error) {
	if len(argv) == 0 {
		return -1, fmt.Errorf("%w: empty command", models.ErrSpawn)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return -1, fmt.Errorf("%w: %v", models.ErrSpawn, err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return -1, fmt.Errorf("%w: %v", models.ErrSpawn, err)
	}
	// The child holds its own copy; ours must go for EOF to arrive.
	_ = w.Close()

	relayErr := relay(r, onLine)
	_ = r.Close()

	err = cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, err
	}
	if relayErr != nil {
		return cmd.ProcessState.ExitCode(), relayErr
	}
	return cmd.ProcessState.ExitCode(), nil
}

func relay(r io.Reader, onLine func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if onLine != nil {
			onLine(line)
		}
	}
	if err := sc.Err(); err != nil {
		// Drain so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
		return fmt.Errorf("relay output: %w", err)
	}
	return nil
}
