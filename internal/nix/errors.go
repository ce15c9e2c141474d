package nix

import "fmt"

// CommandError reports a nix invocation that ran but exited non-zero. The
// exit code is nil when the process was killed before it could exit.
type CommandError struct {
	ExitCode *int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.ExitCode == nil {
		return fmt.Sprintf("nix exited abnormally: %s", e.Stderr)
	}
	return fmt.Sprintf("nix exited with code %d: %s", *e.ExitCode, e.Stderr)
}

// PayloadError reports output from a nix invocation that could not be
// decoded into the expected document, tied to the attribute path that was
// being evaluated.
type PayloadError struct {
	AttributePath string
	Err           error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("could not parse nix output for %q: %v", e.AttributePath, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}
