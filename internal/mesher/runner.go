package mesher

import "os/exec"

// Runner abstracts process invocation so jobs can run without a real MPI
// installation.
type Runner interface {
	// Run executes the command and returns the combined output (stdout+stderr).
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// Run executes the command and returns combined output.
func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// MockRunner implements Runner for testing.
type MockRunner struct {
	// Output is the output to return from Run.
	Output []byte
	// Err is the error to return from Run.
	Err error
	// Calls records all commands that were run.
	Calls []MockCall
}

// MockCall records details of one Run invocation.
type MockCall struct {
	Name string
	Args []string
}

// Run records the invocation and returns the configured output and error.
func (m *MockRunner) Run(name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args})
	return m.Output, m.Err
}

// LastCall returns the most recently recorded invocation, or nil if none.
func (m *MockRunner) LastCall() *MockCall {
	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}
