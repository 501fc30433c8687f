package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loog-project/instrux/internal/config"
	"github.com/loog-project/instrux/internal/filter"
	"github.com/loog-project/instrux/internal/logging"
	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/internal/store"
	"github.com/loog-project/instrux/internal/ui"
)

var (
	compareOpts outputOptions
	compareTUI  bool
)

var compareCmd = &cobra.Command{
	Use:               "compare OLD_REV NEW_REV",
	Short:             "Compares two stored revisions",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: revisionCompletion,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return compareOpts.validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		oldID, err := store.ParseRevisionID(args[0])
		if err != nil {
			return err
		}
		newID, err := store.ParseRevisionID(args[1])
		if err != nil {
			return err
		}

		return withService(cmd, func(_ config.Config, svc *service.DocumentService) error {
			cmp, err := svc.Compare(cmd.Context(), oldID, newID)
			if err != nil {
				return err
			}
			if compareOpts.Verify {
				if err := verifyDiff(cmp.Old, cmp.New, cmp.Diff); err != nil {
					return err
				}
			}
			if !compareTUI {
				return writeDiff(cmd.OutOrStdout(), cmp.Diff,
					[]byte(cmp.Old.String()), []byte(cmp.New.String()), compareOpts)
			}

			prog, err := filter.Compile(compareOpts.Filter)
			if err != nil {
				return err
			}
			filtered, err := prog.Apply(cmp.Diff)
			if err != nil {
				return err
			}
			theme := ui.DarkTheme
			if compareOpts.NoColor {
				theme = ui.PlainTheme
			}
			// by default, we shouldn't log anything as this would break our TUI.
			logging.Silence()
			return ui.Run(cmp.WithDiff(filtered), theme)
		})
	},
}

func init() {
	addOutputFlags(compareCmd, &compareOpts)
	compareCmd.Flags().BoolVarP(&compareTUI, "tui", "t", false,
		"Browse the comparison in the interactive terminal viewer")
	rootCmd.AddCommand(compareCmd)
}
