package orchestrator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"alumni-setup/internal/logger"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger.SetOutput(&buf)
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		logger.SetOutput(prev)
		color.NoColor = noColor
	})
	return &buf
}

// recorder builds steps that log their execution order.
type recorder struct {
	ran []string
}

func (r *recorder) step(name string, ok bool) Step {
	return Step{Name: name, Run: func(context.Context) bool {
		r.ran = append(r.ran, name)
		return ok
	}}
}

func TestRun_AllSucceed(t *testing.T) {
	captureOutput(t)
	r := &recorder{}

	s := Run(context.Background(), []Step{r.step("deps", true), r.step("db", true), r.step("autostart", true)})
	if !s.OK() {
		t.Fatalf("unexpected failures: %v", s.Failed)
	}
	if diff := cmp.Diff([]string{"deps", "db", "autostart"}, s.Completed); diff != "" {
		t.Errorf("unexpected completed steps (-want +got):\n%s", diff)
	}
}

func TestRun_FailedStepDoesNotBlockLaterSteps(t *testing.T) {
	captureOutput(t)
	r := &recorder{}

	s := Run(context.Background(), []Step{
		r.step("Install Python dependencies", false),
		r.step("Initialize database", true),
		r.step("Create autostart task", true),
	})
	if diff := cmp.Diff([]string{"Install Python dependencies", "Initialize database", "Create autostart task"}, r.ran); diff != "" {
		t.Errorf("unexpected execution order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Install Python dependencies"}, s.Failed); diff != "" {
		t.Errorf("unexpected failed steps (-want +got):\n%s", diff)
	}
}

func TestRun_PanickingStepIsRecorded(t *testing.T) {
	captureOutput(t)
	r := &recorder{}
	boom := Step{Name: "boom", Run: func(context.Context) bool { panic("kaputt") }}

	s := Run(context.Background(), []Step{boom, r.step("after", true)})
	if diff := cmp.Diff([]string{"boom"}, s.Failed); diff != "" {
		t.Errorf("unexpected failed steps (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"after"}, r.ran); diff != "" {
		t.Errorf("later step did not run (-want +got):\n%s", diff)
	}
}

func TestRun_StopsWhenCancelled(t *testing.T) {
	captureOutput(t)
	r := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancelling := Step{Name: "first", Run: func(context.Context) bool {
		cancel()
		return true
	}}

	Run(ctx, []Step{cancelling, r.step("second", true)})
	if len(r.ran) != 0 {
		t.Errorf("steps ran after cancellation: %v", r.ran)
	}
}

func TestPrintSummary(t *testing.T) {
	g := Guidance{Interpreter: "python3", Entrypoint: "main.py", Port: 5000, AdminUsername: "admin", AdminPassword: "password"}

	t.Run("success", func(t *testing.T) {
		out := captureOutput(t)
		PrintSummary(Summary{Completed: []string{"Initialize database"}}, g)
		for _, want := range []string{
			"INSTALLATION FINISHED",
			"• Initialize database",
			"python3 main.py",
			"http://localhost:5000/admin",
			"admin / password",
			"change the admin password",
		} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("missing %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("failure", func(t *testing.T) {
		out := captureOutput(t)
		PrintSummary(Summary{Failed: []string{"Install Python dependencies", "Initialize database"}}, g)
		if !strings.Contains(out.String(), "Failed steps: Install Python dependencies, Initialize database") {
			t.Errorf("missing failed step list in output:\n%s", out)
		}
		if strings.Contains(out.String(), "admin / password") {
			t.Errorf("success guidance printed on failure:\n%s", out)
		}
	})
}
