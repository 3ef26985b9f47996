package autostart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"howett.net/plist"

	"alumni-setup/internal/logger"
)

// captureOutput collects console output without colors.
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

func testOptions(t *testing.T, goos string) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		GOOS:         goos,
		Program:      "/usr/bin/python3",
		Entrypoint:   "main.py",
		WorkDir:      "/srv/datenerfassung",
		Env:          map[string]string{"FLASK_ENV": "production"},
		ServiceName:  "datenerfassung",
		Description:  "Ehemaligen Datenerfassung",
		User:         "www-data",
		ServicePath:  filepath.Join(dir, "datenerfassung.service"),
		Label:        "com.datenerfassung.app",
		AgentDir:     filepath.Join(dir, "Library", "LaunchAgents"),
		LogPath:      "/tmp/datenerfassung.log",
		ErrorLogPath: "/tmp/datenerfassung-error.log",
	}
}

// listFiles returns every regular file below dir.
func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return files
}

func TestRenderUnit(t *testing.T) {
	opts := testOptions(t, "linux")
	data, err := RenderUnit(opts)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := unit.Deserialize(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("rendered unit does not parse: %v\n%s", err, data)
	}
	got := make([]string, len(parsed))
	for i, o := range parsed {
		got[i] = o.Section + "." + o.Name + "=" + o.Value
	}
	want := []string{
		"Unit.Description=Ehemaligen Datenerfassung",
		"Unit.After=network.target",
		"Service.Type=simple",
		"Service.User=www-data",
		"Service.WorkingDirectory=/srv/datenerfassung",
		"Service.ExecStart=/usr/bin/python3 main.py",
		"Service.Restart=always",
		"Service.RestartSec=3",
		"Service.Environment=FLASK_ENV=production",
		"Service.Environment=PYTHONPATH=/srv/datenerfassung",
		"Install.WantedBy=multi-user.target",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected unit (-want +got):\n%s", diff)
	}
}

func TestQuoteUnitArg(t *testing.T) {
	tests := map[string]string{
		"/usr/bin/python3":      "/usr/bin/python3",
		"/opt/My App/python":    `"/opt/My App/python"`,
		`PYTHONPATH=C:\app dir`: `"PYTHONPATH=C:\\app dir"`,
		`say "hi"`:              `"say \"hi\""`,
		"/srv/100%app":          "/srv/100%%app",
		"RATE=50% off":          `"RATE=50%% off"`,
	}
	for in, want := range tests {
		if got := quoteUnitArg(in); got != want {
			t.Errorf("quoteUnitArg(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderUnit_EscapesValues(t *testing.T) {
	out := captureOutput(t)
	opts := testOptions(t, "linux")
	opts.WorkDir = "/srv/100%app"
	opts.Env = map[string]string{
		"RATE":     "50%",
		"INJECTED": "a\nExecStartPre=/bin/rm -rf /tmp/x",
		"CR":       "a\rb",
	}

	data, err := RenderUnit(opts)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := unit.Deserialize(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("rendered unit does not parse: %v\n%s", err, data)
	}
	var got []string
	for _, o := range parsed {
		if o.Section == "Service" {
			got = append(got, o.Name+"="+o.Value)
		}
	}
	want := []string{
		"Type=simple",
		"User=www-data",
		"WorkingDirectory=/srv/100%%app",
		"ExecStart=/usr/bin/python3 main.py",
		"Restart=always",
		"RestartSec=3",
		"Environment=PYTHONPATH=/srv/100%%app",
		"Environment=RATE=50%%",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected service section (-want +got):\n%s", diff)
	}
	if strings.Contains(string(data), "ExecStartPre") {
		t.Errorf("multi-line environment value leaked into the unit:\n%s", data)
	}
	for _, name := range []string{"INJECTED", "CR"} {
		if !strings.Contains(out.String(), "Skipping environment variable \""+name+"\"") {
			t.Errorf("expected a warning for %s, got:\n%s", name, out)
		}
	}
}

func TestRenderUnit_RejectsLineBreaks(t *testing.T) {
	tests := map[string]func(*Options){
		"description": func(o *Options) { o.Description = "App\nExecStartPre=/bin/false" },
		"workdir":     func(o *Options) { o.WorkDir = "/srv/app\r" },
		"program":     func(o *Options) { o.Program = "/usr/bin/python3\nUser=root" },
		"entrypoint":  func(o *Options) { o.Entrypoint = "main.py\n" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			opts := testOptions(t, "linux")
			mutate(&opts)
			if _, err := RenderUnit(opts); !errors.Is(err, errLineBreak) {
				t.Errorf("RenderUnit error = %v, want errLineBreak", err)
			}
		})
	}
}

func TestGenerate_LinuxRejectedValueWritesNothing(t *testing.T) {
	out := captureOutput(t)
	opts := testOptions(t, "linux")
	opts.Description = "App\nExecStartPre=/bin/false"

	if !Generate(opts) {
		t.Fatal("Generate must report success")
	}
	if _, err := os.Stat(opts.ServicePath); !os.IsNotExist(err) {
		t.Errorf("no unit file expected, stat err = %v", err)
	}
	if !strings.Contains(out.String(), "could not be rendered") {
		t.Errorf("expected a warning, got:\n%s", out)
	}
}

func TestGenerate_Linux(t *testing.T) {
	out := captureOutput(t)
	opts := testOptions(t, "linux")

	if !Generate(opts) {
		t.Fatal("Generate must report success")
	}
	data, err := os.ReadFile(opts.ServicePath)
	if err != nil {
		t.Fatalf("service file not written: %v", err)
	}
	if !strings.Contains(string(data), "ExecStart=/usr/bin/python3 main.py") {
		t.Errorf("unexpected service file:\n%s", data)
	}
	for _, cmd := range []string{
		"sudo mv " + opts.ServicePath + " /etc/systemd/system/datenerfassung.service",
		"sudo systemctl daemon-reload",
		"sudo systemctl enable datenerfassung",
		"sudo systemctl start datenerfassung",
	} {
		if !strings.Contains(out.String(), cmd) {
			t.Errorf("missing follow-up command %q in output:\n%s", cmd, out)
		}
	}
}

func TestGenerate_LinuxWriteFailureIsNotFatal(t *testing.T) {
	out := captureOutput(t)
	opts := testOptions(t, "linux")
	opts.ServicePath = filepath.Join(t.TempDir(), "missing-dir", "datenerfassung.service")

	if !Generate(opts) {
		t.Fatal("Generate must report success even if the file cannot be written")
	}
	if _, err := os.Stat(opts.ServicePath); !os.IsNotExist(err) {
		t.Errorf("no file expected, stat err = %v", err)
	}
	if !strings.Contains(out.String(), "could not be created") {
		t.Errorf("expected a warning, got:\n%s", out)
	}
	if strings.Contains(out.String(), "systemctl") {
		t.Errorf("follow-up commands printed for a file that was not written:\n%s", out)
	}
}

func TestGenerate_Darwin(t *testing.T) {
	out := captureOutput(t)
	opts := testOptions(t, "darwin")

	if !Generate(opts) {
		t.Fatal("Generate must report success")
	}
	path := filepath.Join(opts.AgentDir, "com.datenerfassung.app.plist")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("launch agent not written: %v", err)
	}

	var got LaunchAgent
	if _, err := plist.Unmarshal(data, &got); err != nil {
		t.Fatalf("launch agent does not parse: %v\n%s", err, data)
	}
	want := LaunchAgent{
		Label:            "com.datenerfassung.app",
		ProgramArguments: []string{"/usr/bin/python3", "/srv/datenerfassung/main.py"},
		WorkingDirectory: "/srv/datenerfassung",
		EnvironmentVariables: map[string]string{
			"FLASK_ENV":  "production",
			"PYTHONPATH": "/srv/datenerfassung",
		},
		RunAtLoad:         true,
		KeepAlive:         true,
		StandardOutPath:   "/tmp/datenerfassung.log",
		StandardErrorPath: "/tmp/datenerfassung-error.log",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected launch agent (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "launchctl load "+path) ||
		!strings.Contains(out.String(), "launchctl start com.datenerfassung.app") {
		t.Errorf("missing launchctl commands in output:\n%s", out)
	}
}

func TestGenerate_DarwinUnwritableAgentDir(t *testing.T) {
	captureOutput(t)
	opts := testOptions(t, "darwin")
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	opts.AgentDir = filepath.Join(blocker, "LaunchAgents")

	if !Generate(opts) {
		t.Fatal("Generate must report success even if the agent cannot be written")
	}
}

func TestGenerate_Windows(t *testing.T) {
	out := captureOutput(t)
	opts := testOptions(t, "windows")
	opts.Program = `C:\Python312\python.exe`
	opts.WorkDir = `C:\datenerfassung`

	if !Generate(opts) {
		t.Fatal("Generate must report success")
	}
	for _, line := range []string{
		`Program: C:\Python312\python.exe`,
		`Arguments: C:\datenerfassung\main.py`,
		`Working directory: C:\datenerfassung`,
		"Trigger: At system startup",
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("missing %q in output:\n%s", line, out)
		}
	}
	if files := listFiles(t, filepath.Dir(opts.ServicePath)); len(files) != 0 {
		t.Errorf("no files expected on windows, got %v", files)
	}
}

func TestGenerate_UnknownFamily(t *testing.T) {
	out := captureOutput(t)
	opts := testOptions(t, "plan9")

	if !Generate(opts) {
		t.Fatal("Generate must report success for unknown systems")
	}
	if files := listFiles(t, filepath.Dir(opts.ServicePath)); len(files) != 0 {
		t.Errorf("no files expected, got %v", files)
	}
	if !strings.Contains(out.String(), "not supported on plan9") {
		t.Errorf("expected a warning naming the system, got:\n%s", out)
	}
}

func TestDefaultUser(t *testing.T) {
	t.Setenv("USER", "alice")
	if got := DefaultUser(); got != "alice" {
		t.Errorf("DefaultUser() = %q", got)
	}
	t.Setenv("USER", "")
	if got := DefaultUser(); got != "www-data" {
		t.Errorf("DefaultUser() without $USER = %q", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.service")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(path, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "new" {
		t.Fatalf("content = %q, %v", data, err)
	}
	if files := listFiles(t, dir); len(files) != 1 {
		t.Errorf("temporary files left behind: %v", files)
	}
}
