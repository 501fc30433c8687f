package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/loog-project/instrux/internal/config"
	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/internal/store"
)

var revisionsCmd = &cobra.Command{
	Use:               "revisions [ID]",
	Short:             "Lists instructions, or the revisions of one instruction",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: instructionCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(_ config.Config, svc *service.DocumentService) error {
			var out string
			if len(args) == 0 {
				list, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				out = instructionTable(list)
			} else {
				list, err := svc.Revisions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out = revisionTable(list)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(revisionsCmd)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		})
}

func instructionTable(list []*store.Instruction) string {
	t := newTable("ID", "NUMBER", "TITLE", "REV", "REVISIONS", "UPDATED")
	for _, inst := range list {
		t.Row(
			inst.ID,
			inst.DocumentNumber,
			inst.Title,
			inst.Revision,
			strconv.Itoa(inst.RevisionCount),
			humanize.Time(inst.UpdatedAt),
		)
	}
	return t.String()
}

func revisionTable(list []*store.Revision) string {
	t := newTable("ID", "REV", "DATE", "AUTHOR", "DESCRIPTION", "SECTIONS", "STORED", "SIZE")
	for _, rev := range list {
		t.Row(
			rev.ID.String(),
			rev.Revision,
			rev.Date,
			rev.Author,
			rev.Description,
			strings.Join(rev.Sections, ", "),
			humanize.Time(rev.CreatedAt),
			humanize.Bytes(uint64(len(rev.Content))),
		)
	}
	return t.String()
}
