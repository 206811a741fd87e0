package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/waterlens-cli/internal/report"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

var (
	stdCategory string
	stdJSON     bool
)

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "Show the permissible limits samples are scored against",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := baseSettings()
		s.applyGlobalFlags()
		pl, err := s.build()
		if err != nil {
			return err
		}
		list := pl.reg.All()
		if stdCategory != "" {
			c := standards.Category(strings.ToLower(strings.ReplaceAll(stdCategory, "-", "_")))
			list = pl.reg.ByCategory(c)
			if len(list) == 0 {
				return fmt.Errorf("no standards in category %q (use physical|chemical|heavy_metal|nutrient|microbiological)", stdCategory)
			}
		}
		out := cmd.OutOrStdout()
		if stdJSON {
			b, err := json.MarshalIndent(list, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal standards: %w", err)
			}
			_, err = fmt.Fprintln(out, string(b))
			return err
		}
		var current standards.Category
		for _, std := range list {
			if std.Category != current {
				current = std.Category
				fmt.Fprintf(out, "[%s]\n", strings.ToUpper(strings.ReplaceAll(string(current), "_", " ")))
			}
			fmt.Fprintf(out, "- %-22s %-26s %-12s %s\n", std.Name, std.DisplayName(), report.Limit(&std), std.Unit)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(standardsCmd)
	standardsCmd.Flags().StringVar(&stdCategory, "category", "", "only this category: physical|chemical|heavy_metal|nutrient|microbiological")
	standardsCmd.Flags().BoolVar(&stdJSON, "json", false, "print as JSON")
}
