package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/loog-project/instrux/internal/config"
	"github.com/loog-project/instrux/internal/document"
	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/internal/store"
)

var importID string

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Stores an instruction document as a new revision",
	Long: `Validates the instruction document in FILE ("-" reads standard input) and
stores it. Without --id a new instruction is created; with --id the document
becomes the latest revision of that instruction, which is created if needed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		return withService(cmd, func(_ config.Config, svc *service.DocumentService) error {
			var (
				inst *store.Instruction
				rev  *store.Revision
				err  error
			)
			if importID == "" {
				inst, rev, err = svc.Create(cmd.Context(), raw)
			} else {
				inst, rev, err = svc.Import(cmd.Context(), importID, raw)
			}
			if err != nil {
				var verr *document.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Fields {
						log.Error().Str("field", f.Field).Msg(f.Message)
					}
				}
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "instruction %s revision %s\n", inst.ID, rev.ID)
			return err
		})
	},
}

func init() {
	importCmd.Flags().StringVar(&importID, "id", "",
		"Instruction to append the revision to (default: create a new instruction)")
	_ = importCmd.RegisterFlagCompletionFunc("id", instructionCompletion)
	rootCmd.AddCommand(importCmd)
}
