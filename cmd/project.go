package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/waterlens-cli/internal/project"
)

var (
	pmProject string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage per-project settings and datasets",
}

var projectSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set or clear a project override (standards_file, decimal_separator, thousands_separator, key_parameters)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pmProject == "" {
			return fmt.Errorf("--project is required")
		}
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		if p.Config == nil {
			p.Config = &project.ProjectConfig{}
		}
		val := ""
		if len(args) == 2 {
			val = strings.TrimSpace(args[1])
		}
		switch args[0] {
		case "standards_file":
			p.Config.StandardsFile = val
		case "decimal_separator", "thousands_separator":
			if len([]rune(val)) > 1 {
				return fmt.Errorf("%s must be a single character", args[0])
			}
			if args[0] == "decimal_separator" {
				p.Config.DecimalSeparator = val
			} else {
				p.Config.ThousandsSeparator = val
			}
		case "key_parameters":
			var keys []string
			for _, k := range strings.Split(val, ",") {
				if k = strings.TrimSpace(k); k != "" {
					keys = append(keys, k)
				}
			}
			p.Config.KeyParameters = keys
		default:
			return fmt.Errorf("unknown project key %q", args[0])
		}
		// Fail early on an override the pipeline would reject.
		s := baseSettings()
		s.applyProject(p)
		if s.Decimal != 0 && s.Decimal == s.Thousands {
			return fmt.Errorf("decimal and thousands separators must differ")
		}
		if _, err := s.build(); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		if val == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s for %s\n", args[0], pmProject)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s for %s: %s\n", args[0], pmProject, val)
		}
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <dataset-id|file-name>",
	Short: "Remove a dataset from a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pmProject == "" {
			return fmt.Errorf("--project is required")
		}
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		if err := p.RemoveDataset(args[0]); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed dataset %s from %s\n", args[0], pmProject)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	projectCmd.PersistentFlags().StringVarP(&pmProject, "project", "p", "", "project name")
}
