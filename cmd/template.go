package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reqsync/core/excel"
)

var templateOutput string

// templateCmd writes a sample workbook; no config or remote needed.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a sample workbook showing each row pattern",
	Long: `Template writes a workbook with example rows for each operation:
create (empty JAMA_ID), update (Description更新 set to 「する」), skip,
delete (メモ set to 「削除」) and a SYSP item with its description
table. Use it to learn the sheet format without touching a project.`,
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "template.xlsx", "Output workbook path")

	RootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	if err := excel.WriteTemplate(templateOutput); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	fmt.Printf("Template written to %s\n", templateOutput)
	return nil
}
