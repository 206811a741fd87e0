package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addProjectName string
	addDesc        string
	addFlags       parseFlags
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a sample file to a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if addProjectName == "" {
			return fmt.Errorf("--project is required")
		}
		p, err := loadProjectByName(addProjectName)
		if err != nil {
			return err
		}
		s := baseSettings()
		s.applyProject(p)
		s.applyGlobalFlags()
		if err := addFlags.apply(&s); err != nil {
			return err
		}
		pl, err := s.build()
		if err != nil {
			return err
		}
		d, err := p.AddDataset(args[0], addDesc, pl.parse, pl.mapper)
		if err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Dataset added: %s (%d rows, %d samples)\n", d.Name, d.Rows, d.Accepted)
		if d.Rejected > 0 {
			fmt.Fprintf(out, "⚠ %d rows had no usable readings and will be reported as rejected\n", d.Rejected)
		}
		if d.Truncated > 0 {
			fmt.Fprintf(out, "⚠ %d rows past the row limit were not read (raise --max-rows)\n", d.Truncated)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addProjectName, "project", "p", "", "project name")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "dataset description")
	addCmd.Flags().StringVar(&addFlags.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	addCmd.Flags().StringVar(&addFlags.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	addCmd.Flags().StringVar(&addFlags.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	addCmd.Flags().StringVar(&addFlags.sheetName, "sheet-name", "", "XLSX: sheet to read; remembered for this dataset")
	addCmd.Flags().IntVar(&addFlags.maxRows, "max-rows", 0, "maximum rows to read (default 100000)")
}
