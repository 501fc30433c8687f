package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loog-project/instrux/internal/document"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Prints a sample instruction document",
	Long: `Prints a complete, valid instruction document. Use it as a template:

  instrux sample > doc.json
  instrux import doc.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(document.SampleJSON())
		return err
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
