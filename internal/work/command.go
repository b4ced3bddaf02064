package work

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// maxOutputInError caps how much combined output is attached to a failure.
const maxOutputInError = 512

// Command is a work unit that shells out to an external program.
//
// It is how the daemon turns config-declared tasks into schedulable work.
// The run context kills the process on timeout/shutdown (exec.CommandContext).
type Command struct {
	Path string
	Args []string
}

func (c Command) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if tail := lastOutput(out); tail != "" {
			return fmt.Errorf("%s: %w: %s", c.Path, err, tail)
		}
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}

// lastOutput returns the tail of the command output, trimmed for log hygiene.
func lastOutput(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) > maxOutputInError {
		out = out[len(out)-maxOutputInError:]
	}
	return string(out)
}
