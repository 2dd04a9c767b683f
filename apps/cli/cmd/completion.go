package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for hitrack.

Completions cover the subcommands, the request method of 'hitrack env'
and the values of --output.

Examples:
  $ source <(hitrack completion bash)
  $ hitrack completion zsh > "${fpath[1]}/_hitrack"
  $ hitrack completion fish > ~/.config/fish/completions/hitrack.fish
  PS> hitrack completion powershell | Out-String | Invoke-Expression

After loading, 'hitrack env <TAB>' offers GET, POST and the other methods,
and 'hitrack env GET / -o <TAB>' offers console, json and yaml.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

var (
	outputFormats  = []string{"console", "json", "yaml"}
	requestMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodHead, http.MethodPatch, http.MethodOptions, http.MethodTrace,
	}
)

// completeMethod offers request methods for the first argument of env.
func completeMethod(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return requestMethods, cobra.ShellCompDirectiveNoFileComp
}

func completeOutput(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return outputFormats, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(completionCmd)
	envCmd.ValidArgsFunction = completeMethod
}
