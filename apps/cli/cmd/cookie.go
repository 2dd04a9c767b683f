package cmd

import (
	"github.com/abdul-hamid-achik/hitrack/packages/cookie"
	"github.com/spf13/cobra"
)

var cookieCmd = &cobra.Command{
	Use:   "cookie <set-cookie>...",
	Short: "Parse Set-Cookie values",
	Long: `Parse one or more Set-Cookie header values and print the resulting
cookie jar. A later cookie with the same name replaces an earlier one.

Examples:
  hitrack cookie 'sid=abc; Path=/; HttpOnly'
  hitrack cookie 'a=1; Max-Age=60' 'b=2; Secure' -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: cookieCommand,
}

func cookieCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}

	jar := cookie.Jar{}
	for _, arg := range args {
		parsed, err := cookie.ParseJar(arg)
		if err != nil {
			formatter.FormatError(err)
			if ferr := flush(formatter); ferr != nil {
				return ferr
			}
			return withCode(ExitParseError, err)
		}
		for name, attrs := range parsed {
			jar[name] = attrs
		}
	}

	formatter.FormatCookies(jar)
	return flush(formatter)
}
