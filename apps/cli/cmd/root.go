package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/core/config"
	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/output"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	outputFlag  string
	noColorFlag bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "hitrack",
	Short: "Build in-process HTTP requests. No network.",
	Long: `hitrack builds the request env a handler would see for a given
method, path, query, body, headers and cookies, and inspects the
pieces that go into it: Set-Cookie values and multipart bodies.`,
	SilenceUsage: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HITRACK_CONFIG", ""), "Path to config file (env: HITRACK_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", getEnvString("HITRACK_OUTPUT", "console"), "Output format: console, json, yaml (env: HITRACK_OUTPUT)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITRACK_NO_COLOR", false), "Disable colored output (env: HITRACK_NO_COLOR)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output and debug logging")
	_ = rootCmd.RegisterFlagCompletionFunc("output", completeOutput)

	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(cookieCmd)
	rootCmd.AddCommand(multipartCmd)
	rootCmd.AddCommand(versionCmd)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return val == "yes"
		}
		return b
	}
	return defaultVal
}

// loadConfig reads --config, or searches the working directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	if noColorFlag {
		cfg.NoColor = config.BoolPtr(true)
	}
	return cfg, nil
}

// newLogger logs to stderr at debug level with --verbose, at the
// configured level otherwise, and discards without either.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level, ok, err := cfg.SlogLevel()
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	if verboseFlag {
		level, ok = slog.LevelDebug, true
	}
	if !ok {
		return slog.New(slog.DiscardHandler), nil
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatEnv(e *environ.Env)
	FormatCookies(jar cookie.Jar)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush() error
}

func newFormatter(w io.Writer, cfg *config.Config) (Formatter, error) {
	switch strings.ToLower(outputFlag) {
	case "console", "":
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verboseFlag),
			output.WithNoColor(cfg.GetNoColor()),
		), nil
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w)), nil
	case "yaml", "yml":
		return output.NewYAMLFormatter(output.YAMLWithWriter(w)), nil
	default:
		return nil, withCode(ExitUsageError, fmt.Errorf("unknown output format %q", outputFlag))
	}
}

func flush(f Formatter) error {
	if flushable, ok := f.(Flushable); ok {
		if err := flushable.Flush(); err != nil {
			return withCode(ExitIOError, err)
		}
	}
	return nil
}
