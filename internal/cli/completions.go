package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/marketmind/internal/util"
	"github.com/mithrel/marketmind/pkg/api"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "completion",
		Short:       "Generate shell completion scripts",
		Annotations: map[string]string{skipApp: "true"},
	}

	gen := &cobra.Command{
		Use:       "generate bash|zsh|fish",
		Short:     "Print a completion script",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			default:
				return cmd.Root().GenFishCompletion(out, true)
			}
		},
	}
	gen.Annotations = map[string]string{skipApp: "true"}
	cmd.AddCommand(gen)
	return cmd
}

// completeModules offers module ids ranked by fuzzy match.
func completeModules(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return util.ScoreCompletions(toComplete, api.ModuleNames(), 0), cobra.ShellCompDirectiveNoFileComp
}

func completeValues(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
