package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/scene"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command. Scripts are written to
// the command output so they can be redirected into a shell's completion
// directory.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate a shell completion script",
		Long: `Completion prints a completion script for bash, zsh, fish, or powershell.

Tree names, formats and scene paths complete after the script is loaded.`,
		Example: `  source <(arbor completion bash)
  arbor completion zsh > "${fpath[1]}/_arbor"
  arbor completion fish > ~/.config/fish/completions/arbor.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeScenes restricts positional completion to scene files.
func completeScenes(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeTrees offers the tree names accepted by --tree.
func completeTrees(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return scene.TreeNames(), cobra.ShellCompDirectiveNoFileComp
}
