package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/loog-project/instrux/internal/config"
	"github.com/loog-project/instrux/internal/service"
)

var completionCmd = &cobra.Command{
	Use:       "completion [SHELL]",
	Short:     "Prints shell completion scripts",
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// instructionCompletion completes the IDs of stored instructions, described
// by their title.
func instructionCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 && cmd.Name() != "import" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	_ = withService(cmd, func(_ config.Config, svc *service.DocumentService) error {
		list, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, inst := range list {
			if strings.HasPrefix(inst.ID, toComplete) {
				out = append(out, inst.ID+"\t"+inst.Title)
			}
		}
		return nil
	})
	return out, cobra.ShellCompDirectiveNoFileComp
}

// revisionCompletion completes revision IDs of all instructions, newest first.
func revisionCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	_ = withService(cmd, func(_ config.Config, svc *service.DocumentService) error {
		list, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, inst := range list {
			revs, err := svc.Revisions(cmd.Context(), inst.ID)
			if err != nil {
				return err
			}
			for _, rev := range revs {
				id := rev.ID.String()
				if strings.HasPrefix(id, toComplete) {
					out = append(out, id+"\t"+inst.Title+" rev "+rev.Revision)
				}
			}
		}
		return nil
	})
	return out, cobra.ShellCompDirectiveNoFileComp
}
