package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cximage/pkg/jobclient"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: fmt.Sprintf(`Generate a shell completion script for %[1]s.

Load it for the current session:

  bash:        source <(%[1]s completion bash)
  zsh:         source <(%[1]s completion zsh)
  fish:        %[1]s completion fish | source
  powershell:  %[1]s completion powershell | Out-String | Invoke-Expression

To load it in every session, write the script to your shell's completion
directory, e.g. %[1]s completion bash > /etc/bash_completion.d/%[1]s.`, appName),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return root.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return root.GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}

// completeNetworkSource suggests CX files for the first positional argument
// and image files for the second.
func completeNetworkSource(exts ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return []cobra.Completion{"cx", "cx2", "json"}, cobra.ShellCompDirectiveFilterFileExt
		case 1:
			return exts, cobra.ShellCompDirectiveFilterFileExt
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	}
}

// registerRenderCompletions adds value completion for the render flags.
func registerRenderCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("algorithm", cobra.FixedCompletions(
		[]cobra.Completion{jobclient.DefaultAlgorithm}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("param", cobra.NoFileCompletions)
}
