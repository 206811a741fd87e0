package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	listProjects bool
	listDatasets bool
	listReports  bool
	listProjName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, or the datasets or reports of a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		for _, b := range []bool{listProjects, listDatasets, listReports} {
			if b {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("specify exactly one of --projects, --datasets or --reports")
		}
		out := cmd.OutOrStdout()
		if listProjects {
			return listAllProjects(cmd)
		}
		if listProjName == "" {
			return fmt.Errorf("--project is required when using --datasets or --reports")
		}
		p, err := loadProjectByName(listProjName)
		if err != nil {
			return err
		}
		if listReports {
			if len(p.Reports) == 0 {
				fmt.Fprintln(out, "(no reports)")
				return nil
			}
			for _, r := range p.Reports {
				fmt.Fprintf(out, "- %s %s [%s] %d samples, %d critical: %s\n",
					r.CreatedAt.Format("2006-01-02 15:04"), r.ID, r.Format, r.Samples, r.Critical, r.Path)
			}
			return nil
		}
		ds := p.SortedDatasets()
		if len(ds) == 0 {
			fmt.Fprintln(out, "(no datasets)")
			return nil
		}
		for _, d := range ds {
			fmt.Fprintf(out, "- %s: %s (%d rows, %d accepted, %d rejected)", d.ID, d.Name, d.Rows, d.Accepted, d.Rejected)
			if d.Description != "" {
				fmt.Fprintf(out, " %s", d.Description)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func listAllProjects(cmd *cobra.Command) error {
	root, err := defaultProjectsDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		pj := filepath.Join(root, e.Name(), "project.json")
		if _, err := os.Stat(pj); err == nil {
			fmt.Fprintf(out, "- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Fprintln(out, "(no projects)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listProjects, "projects", false, "list projects")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets in a project")
	listCmd.Flags().BoolVar(&listReports, "reports", false, "list reports generated for a project")
	listCmd.Flags().StringVarP(&listProjName, "project", "p", "", "project name for --datasets or --reports")
}
