package nix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes one nix invocation and returns its captured output.
// It exists as an interface so the evaluation protocol can be tested
// without a nix binary on the machine.
type Runner interface {
	// Run invokes `nix` with the given arguments and extra environment
	// variables. A non-zero exit is returned as a *CommandError carrying
	// the exit code and captured stderr; stderr is also returned on
	// success because some evaluations report their results there.
	Run(ctx context.Context, env map[string]string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, env map[string]string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "nix", args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr := &CommandError{Stderr: stderr.String()}
			if code := exitErr.ExitCode(); code >= 0 {
				cmdErr.ExitCode = &code
			}
			return stdout.String(), stderr.String(), cmdErr
		}
		// Launch failure: nix missing from PATH, fork failure, and the
		// like. Every subsequent call will most likely fail the same way,
		// which degrades the run to "everything fails" rather than
		// aborting it.
		return "", "", fmt.Errorf("could not invoke nix: %w", err)
	}

	return stdout.String(), stderr.String(), nil
}
