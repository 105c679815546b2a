package git

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CommandRunner executes external commands.
// Implementations return trimmed stdout on success and a *CommandError
// carrying the combined output on failure.
type CommandRunner interface {
	Run(workDir, name string, args ...string) (string, error)
}

// CommandError describes a failed command.
type CommandError struct {
	Command string
	Args    []string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env is appended to the current process environment for every command.
	Env []string

	// Logger receives one debug line per command. Defaults to a no-op logger.
	Logger *zap.Logger

	// Redact lists values replaced by "***" in logged arguments.
	Redact []string

	mu sync.Mutex
}

// Redactor is implemented by runners that can hide secrets from their logs.
type Redactor interface {
	AddRedaction(secret string)
}

// AddRedaction implements Redactor.
func (r *ExecRunner) AddRedaction(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Redact = append(r.Redact, secret)
}

// NewExecRunner creates a runner that inherits the process environment.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Logger: zap.NewNop()}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(workDir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Logger != nil {
		r.Logger.Debug("exec",
			zap.String("cmd", name),
			zap.Strings("args", r.redact(args)),
			zap.String("dir", workDir),
		)
	}

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		combined := strings.TrimSpace(strings.TrimSpace(stdout.String()) + "\n" + strings.TrimSpace(stderr.String()))
		return out, &CommandError{
			Command: name,
			Args:    r.redact(args),
			Output:  combined,
			Err:     err,
		}
	}
	return out, nil
}

func (r *ExecRunner) redact(args []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Redact) == 0 {
		return args
	}
	out := make([]string, len(args))
	for i, a := range args {
		for _, secret := range r.Redact {
			if secret != "" {
				a = strings.ReplaceAll(a, secret, "***")
			}
		}
		out[i] = a
	}
	return out
}

// MockResponse is a canned command result.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records one invocation.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner answers commands from a lookup table.
// Lookup order: exact "name args..." key, then "name", then "*", then DefaultResponse.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// MockExpectation is returned by OnCommand to set the response.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand registers a response for an exact command line.
func (m *MockRunner) OnCommand(name string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: commandKey(name, args)}
}

// OnAnyCommand registers a wildcard response.
func (m *MockRunner) OnAnyCommand() *MockExpectation {
	return &MockExpectation{runner: m, key: "*"}
}

// Return sets the response for the expectation.
func (e *MockExpectation) Return(stdout string, err error) {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = MockResponse{Stdout: stdout, Err: err}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(workDir, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{WorkDir: workDir, Command: name, Args: args})

	for _, key := range []string{commandKey(name, args), name, "*"} {
		if resp, ok := m.Responses[key]; ok {
			return resp.Stdout, resp.Err
		}
	}
	return m.DefaultResponse.Stdout, m.DefaultResponse.Err
}

// WasCalled reports whether a call with the given command and leading args was made.
func (m *MockRunner) WasCalled(name string, args ...string) bool {
	return m.CallCount(name, args...) > 0
}

// CallCount counts calls with the given command and leading args.
func (m *MockRunner) CallCount(name string, args ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, c := range m.Calls {
		if c.Command != name || len(c.Args) < len(args) {
			continue
		}
		if argsMatch(c.Args[:len(args)], args) {
			count++
		}
	}
	return count
}

// SequentialMockRunner returns queued responses in call order.
// Calls past the end of the queue succeed with empty output.
type SequentialMockRunner struct {
	mu        sync.Mutex
	responses []MockResponse
	next      int
	Calls     []MockCall
}

// NewSequentialMockRunner creates an empty SequentialMockRunner.
func NewSequentialMockRunner() *SequentialMockRunner {
	return &SequentialMockRunner{}
}

// AddOutput queues a response.
func (s *SequentialMockRunner) AddOutput(stdout string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, MockResponse{Stdout: stdout, Err: err})
}

// AddOutputError queues a failing response whose CommandError carries stderr.
// If err is nil a generic exit error is used.
func (s *SequentialMockRunner) AddOutputError(stdout, stderr string, err error) {
	s.AddOutput(stdout, &CommandError{Output: stderr, Err: err})
}

// Run implements CommandRunner.
func (s *SequentialMockRunner) Run(workDir, name string, args ...string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, MockCall{WorkDir: workDir, Command: name, Args: args})
	if s.next >= len(s.responses) {
		return "", nil
	}
	resp := s.responses[s.next]
	s.next++
	return resp.Stdout, resp.Err
}

func commandKey(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}
