package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/abdul-hamid-achik/hitrack/packages/core/environ"
	"github.com/abdul-hamid-achik/hitrack/packages/query"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env <method> <path>",
	Short: "Build and print a request env",
	Long: `Build the env a handler would receive for a request, without calling
any handler.

Examples:
  hitrack env GET '/search?q=go'
  hitrack env POST /login --form 'user=bob&pass=x'
  hitrack env POST /items --json '{"name":"x"}' -H 'Accept: application/json'
  hitrack env POST /upload -F title=report -F doc=@report.pdf
  hitrack env GET / --cookie 'sid=abc' --env REMOTE_USER=bob -o yaml`,
	Args: cobra.ExactArgs(2),
	RunE: envCommand,
}

var (
	envQueryFlag   string
	envFormFlag    string
	envJSONFlag    string
	envInputFlag   string
	envHeaderFlags []string
	envCookieFlag  string
	envFieldFlags  []string
	envExtraFlags  []string
)

func init() {
	envCmd.Flags().StringVar(&envQueryFlag, "query", "", "Query string, conflicts with a query in the path")
	envCmd.Flags().StringVar(&envFormFlag, "form", "", "URL-encoded form body")
	envCmd.Flags().StringVar(&envJSONFlag, "json", "", "JSON body, or @file")
	envCmd.Flags().StringVar(&envInputFlag, "input", "", "Raw body, or @file")
	envCmd.Flags().StringArrayVarP(&envHeaderFlags, "header", "H", nil, "Request header 'Name: value' (repeatable)")
	envCmd.Flags().StringVar(&envCookieFlag, "cookie", "", "Cookie header value")
	envCmd.Flags().StringArrayVarP(&envFieldFlags, "field", "F", nil, "Multipart field name=value or name=@file (repeatable)")
	envCmd.Flags().StringArrayVar(&envExtraFlags, "env", nil, "Extra env entry KEY=VALUE (repeatable)")
}

func envCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}

	opts, cleanup, err := envOptions(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	opts.Headers = withDefaults(opts.Headers, cfg.Headers)
	opts.Env = cfg.BaseEnv().Merge(opts.Env)

	method := strings.ToUpper(args[0])
	logger.Debug("building env", "method", method, "path", args[1], "headers", len(opts.Headers))

	e, err := environ.Build(method, args[1], opts)
	if err != nil {
		formatter.FormatError(err)
		if ferr := flush(formatter); ferr != nil {
			return ferr
		}
		return withCode(ExitBuildError, err)
	}

	formatter.FormatEnv(e)
	return flush(formatter)
}

// envOptions maps the body, cookie and env flags onto build options.
func envOptions(cmd *cobra.Command) (*environ.Options, func(), error) {
	opts := &environ.Options{Headers: map[string]string{}}
	cleanup := func() {}

	if cmd.Flags().Changed("query") {
		opts.Query = query.String(envQueryFlag)
	}
	if cmd.Flags().Changed("form") {
		opts.Form = query.String(envFormFlag)
	}
	if cmd.Flags().Changed("json") {
		data, err := readArg(envJSONFlag)
		if err != nil {
			return nil, nil, err
		}
		if !json.Valid(data) {
			return nil, nil, withCode(ExitParseError, fmt.Errorf("--json is not valid JSON"))
		}
		opts.JSON = json.RawMessage(data)
	}
	if cmd.Flags().Changed("input") {
		data, err := readArg(envInputFlag)
		if err != nil {
			return nil, nil, err
		}
		opts.Input = data
	}
	for _, h := range envHeaderFlags {
		name, value, err := parseHeader(h)
		if err != nil {
			return nil, nil, err
		}
		opts.Headers[name] = value
	}
	if envCookieFlag != "" {
		opts.Cookies = cookie.Raw(envCookieFlag)
	}

	if len(envExtraFlags) > 0 {
		extra := environ.New()
		for _, kv := range envExtraFlags {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return nil, nil, withCode(ExitParseError, fmt.Errorf("invalid env entry %q, expected KEY=VALUE", kv))
			}
			extra.Set(k, v)
		}
		opts.Env = extra
	}

	if len(envFieldFlags) > 0 {
		fields, closeFields, err := parseFields(envFieldFlags)
		if err != nil {
			return nil, nil, err
		}
		opts.Multipart = fields
		cleanup = closeFields
	}
	return opts, cleanup, nil
}

// withDefaults adds the default headers that headers does not already set
// under any spelling.
func withDefaults(headers, defaults map[string]string) map[string]string {
	out := maps.Clone(headers)
	set := make(map[string]bool, len(headers))
	for name := range headers {
		set[environ.HeaderKey(name)] = true
	}
	for name, value := range defaults {
		if !set[environ.HeaderKey(name)] {
			out[name] = value
		}
	}
	return out
}
