// Package mocks provides test doubles for the process and notification seams.
package mocks

//go:generate mockgen -destination=mock_runner.go -package=mocks github.com/baldr/baldr/pkg/process Runner
//go:generate mockgen -destination=mock_notifier.go -package=mocks github.com/baldr/baldr/pkg/notifier Notifier

import (
	"sync"

	"github.com/baldr/baldr/pkg/process"
)

// RecordingRunner is a process.Runner that records every command and
// returns a configured error per program.
type RecordingRunner struct {
	mu       sync.Mutex
	commands []process.Command
	errors   map[string]error
	hook     func(process.Command)
}

// NewRecordingRunner creates a new recording runner
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{errors: make(map[string]error)}
}

// Run records cmd, calls the hook and returns the error set for its program
func (m *RecordingRunner) Run(cmd process.Command) error {
	m.mu.Lock()
	m.commands = append(m.commands, cmd)
	hook := m.hook
	err := m.errors[cmd.Program]
	m.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}
	return err
}

// SetError makes every run of program fail with err
func (m *RecordingRunner) SetError(program string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[program] = err
}

// OnRun registers a function called for each command, outside the lock
func (m *RecordingRunner) OnRun(hook func(process.Command)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

// Commands returns the recorded commands in order
func (m *RecordingRunner) Commands() []process.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]process.Command, len(m.commands))
	copy(out, m.commands)
	return out
}

// CommandLines returns the recorded commands as strings
func (m *RecordingRunner) CommandLines() []string {
	cmds := m.Commands()
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.String())
	}
	return out
}
