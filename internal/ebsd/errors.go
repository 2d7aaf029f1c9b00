package ebsd

import (
	"errors"
	"fmt"
)

// Error classes reported by the pipeline. Callers match them with errors.Is;
// wrapped messages carry the specifics.
var (
	// ErrInput marks unusable input data or arguments: an unresolvable step
	// size, inconsistent coordinate spacing, a malformed header mapping, or
	// an out-of-range operation parameter.
	ErrInput = errors.New("invalid input")

	// ErrDomain marks a requested domain that does not overlap the current
	// non-void extent.
	ErrDomain = errors.New("domain out of range")

	// ErrState marks an operation issued before the grid exists, e.g. a
	// morphology pass before import.
	ErrState = errors.New("operation out of sequence")

	// ErrConsistency marks a registry/grid mismatch. This is an engine bug;
	// callers should abort rather than repair.
	ErrConsistency = errors.New("registry/grid mismatch")
)

// ExternalToolError reports a mesh-generator process that exited non-zero.
// The tool's own diagnostics are not interpreted; Output carries the tail of
// its combined output for the log.
type ExternalToolError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
}
