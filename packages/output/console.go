package output

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/http"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating long strings
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case []int:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprint(n)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		if maxLen > 0 && len(val) > maxLen {
			return fmt.Sprintf("%q...", val[:maxLen])
		}
		return fmt.Sprintf("%q", val)
	}
	str := fmt.Sprintf("%v", v)
	if maxLen > 0 && len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose prints bodies in full instead of truncating them.
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) maxLen() int {
	if f.verbose {
		return 0
	}
	return 200
}

// FormatEnv prints the entries of e in insertion order.
func (f *ConsoleFormatter) FormatEnv(e *environ.Env) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold(fmt.Sprintf("%s %s", e.String(environ.KeyRequestMethod), e.String(environ.KeyPathInfo))))

	width := 0
	for _, k := range e.Keys() {
		width = max(width, len(k))
	}
	for k := range e.All() {
		fmt.Fprintf(f.writer, "  %s  %s\n", cyan(fmt.Sprintf("%-*s", width, k)), formatValue(e.Display(k), f.maxLen()))
	}
}

// FormatCookies prints one line per cookie with its attributes.
func (f *ConsoleFormatter) FormatCookies(jar cookie.Jar) {
	green := color.New(color.FgGreen).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	names := make([]string, 0, len(jar))
	for name := range jar {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		a := jar[name]
		fmt.Fprintf(f.writer, "%s=%s", green(name), a.Value)
		if attrs := describeAttributes(a); attrs != "" {
			fmt.Fprintf(f.writer, " %s", faint(attrs))
		}
		fmt.Fprintf(f.writer, "\n")
	}
}

func describeAttributes(a *cookie.Attributes) string {
	var parts []string
	if a.Path != "" {
		parts = append(parts, "path="+a.Path)
	}
	if a.Domain != "" {
		parts = append(parts, "domain="+a.Domain)
	}
	if a.Expires != "" {
		parts = append(parts, "expires="+a.Expires)
	}
	if a.MaxAge != nil {
		parts = append(parts, fmt.Sprintf("max-age=%d", *a.MaxAge))
	}
	if a.Secure {
		parts = append(parts, "secure")
	}
	if a.HTTPOnly {
		parts = append(parts, "http-only")
	}
	return strings.Join(parts, " ")
}

// FormatResponse prints the status line, sorted headers and the body.
func (f *ConsoleFormatter) FormatResponse(resp *http.Response) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	status := resp.Status
	switch {
	case resp.IsSuccess():
		status = green(status)
	case resp.IsRedirect():
		status = yellow(status)
	case resp.IsClientError(), resp.IsServerError():
		status = red(status)
	}
	fmt.Fprintf(f.writer, "%s %s\n", status, cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	names := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, v := range strings.Split(resp.Headers[name], "\n") {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(name), v)
		}
	}

	body, err := resp.BodyText()
	if err != nil {
		body = resp.BodyString()
	}
	if body == "" {
		return
	}
	if n := f.maxLen(); n > 0 && len(body) > n {
		body = body[:n] + "..."
	}
	fmt.Fprintf(f.writer, "\n%s\n", body)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitrack"), version)
}
