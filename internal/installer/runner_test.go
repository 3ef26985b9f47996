package installer

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner records invocations and fails for the configured packages.
type fakeRunner struct {
	calls  [][]string
	failOn map[string]bool
	output string
	outErr error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(args) > 0 && f.failOn[args[len(args)-1]] {
		return fmt.Errorf("exit status 1")
	}
	return nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.output), f.outErr
}

func (f *fakeRunner) commandLines() []string {
	lines := make([]string, len(f.calls))
	for i, c := range f.calls {
		lines[i] = strings.Join(c, " ")
	}
	return lines
}
