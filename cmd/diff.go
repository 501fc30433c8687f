package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/pkg/jsonvalue"
)

var diffOpts outputOptions

var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Compares two JSON files structurally",
	Long: `Compares two JSON documents read from files ("-" reads standard input)
without touching the revision store. The documents do not need to be instructions.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(_ *cobra.Command, args []string) error {
		if args[0] == "-" && args[1] == "-" {
			return fmt.Errorf("only one document can be read from standard input")
		}
		return diffOpts.validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		oldRaw, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		newRaw, err := readInput(cmd, args[1])
		if err != nil {
			return err
		}

		// no store is needed to compare raw documents
		svc := service.New(nil, service.Options{DisableCache: true})
		result, err := svc.CompareDocuments(oldRaw, newRaw)
		if err != nil {
			return err
		}
		if diffOpts.Verify {
			// both documents were already parsed successfully above
			oldValue, _ := jsonvalue.Parse(oldRaw)
			newValue, _ := jsonvalue.Parse(newRaw)
			if err := verifyDiff(oldValue, newValue, result); err != nil {
				return err
			}
		}
		return writeDiff(cmd.OutOrStdout(), result, oldRaw, newRaw, diffOpts)
	},
}

func init() {
	addOutputFlags(diffCmd, &diffOpts)
	rootCmd.AddCommand(diffCmd)
}

func addOutputFlags(cmd *cobra.Command, opts *outputOptions) {
	cmd.Flags().StringVarP(&opts.Format, "format", "F", formatPretty,
		"Output format: pretty, json, delta or dump")
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "",
		`Filter expression selecting the entries to show, e.g. 'Under("steps") && !Added()'`)
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false,
		"Check that replaying the diff onto the old document yields the new one")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(outputFormats, cobra.ShellCompDirectiveNoFileComp))
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return raw, nil
}
