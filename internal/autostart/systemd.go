package autostart

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/coreos/go-systemd/v22/unit"

	"alumni-setup/internal/logger"
)

// errLineBreak is returned when a value would span more than one unit file line.
var errLineBreak = errors.New("value contains a line break")

// RenderUnit returns the systemd service unit for opts.
// Every value is escaped so that systemd reads it literally: '%' is doubled
// to stop specifier expansion, and values with line breaks are rejected
// because they would start a new directive.
func RenderUnit(opts Options) ([]byte, error) {
	for _, v := range []struct{ name, value string }{
		{"Description", opts.Description},
		{"User", opts.User},
		{"WorkingDirectory", opts.WorkDir},
		{"ExecStart", opts.Program},
		{"ExecStart", opts.Entrypoint},
	} {
		if hasLineBreak(v.value) {
			return nil, fmt.Errorf("%s: %w: %q", v.name, errLineBreak, v.value)
		}
	}

	options := []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", escapeSpecifiers(opts.Description)),
		unit.NewUnitOption("Unit", "After", "network.target"),

		unit.NewUnitOption("Service", "Type", "simple"),
		unit.NewUnitOption("Service", "User", escapeSpecifiers(opts.User)),
		unit.NewUnitOption("Service", "WorkingDirectory", escapeSpecifiers(opts.WorkDir)),
		unit.NewUnitOption("Service", "ExecStart", execStart(opts.Program, opts.Entrypoint)),
		unit.NewUnitOption("Service", "Restart", "always"),
		unit.NewUnitOption("Service", "RestartSec", "3"),
	}
	// environment() already dropped entries with line breaks.
	for _, kv := range opts.environment() {
		options = append(options, unit.NewUnitOption("Service", "Environment", quoteUnitArg(kv[0]+"="+kv[1])))
	}
	options = append(options, unit.NewUnitOption("Install", "WantedBy", "multi-user.target"))

	return io.ReadAll(unit.Serialize(options))
}

// hasLineBreak reports whether s contains a newline or carriage return.
func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// escapeSpecifiers doubles every '%' so systemd does not expand it as a
// specifier such as %h or %n.
func escapeSpecifiers(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// execStart builds the ExecStart command line.
func execStart(program string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteUnitArg(program))
	for _, a := range args {
		parts = append(parts, quoteUnitArg(a))
	}
	return strings.Join(parts, " ")
}

// quoteUnitArg escapes specifiers in s and double-quotes it when systemd
// would otherwise split it. s must not contain line breaks.
func quoteUnitArg(s string) string {
	s = escapeSpecifiers(s)
	if !strings.ContainsAny(s, " \t\"\\") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func generateSystemd(opts Options) {
	data, err := RenderUnit(opts)
	if err != nil {
		logger.Warn("Linux service file could not be rendered: %v", err)
		return
	}
	if err := writeFileAtomic(opts.ServicePath, data, 0644); err != nil {
		logger.Warn("Linux service file could not be created: %v", err)
		return
	}

	logger.Success("Linux systemd service created: %s", opts.ServicePath)
	logger.Warn("Run the following commands as root:")
	for _, line := range []string{
		fmt.Sprintf("sudo mv %s /etc/systemd/system/%s.service", opts.ServicePath, opts.ServiceName),
		"sudo systemctl daemon-reload",
		"sudo systemctl enable " + opts.ServiceName,
		"sudo systemctl start " + opts.ServiceName,
	} {
		logger.Info("  %s", line)
	}
}
