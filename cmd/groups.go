package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stonk0105/volleysched/pkg/export"
	"github.com/stonk0105/volleysched/pkg/input"
)

var (
	groupsInput  string
	groupsOutput string
	groupsSeed   uint64
	groupsJSON   bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Draw groups A to J from a roster document",
	RunE:  runGroups,
}

func init() {
	groupsCmd.Flags().StringVarP(&groupsInput, "input", "i", "roster.yaml", "roster document (yaml or json)")
	groupsCmd.Flags().StringVarP(&groupsOutput, "output", "o", "", "output file, stdout when empty")
	groupsCmd.Flags().Uint64Var(&groupsSeed, "seed", 0, "draw seed, overrides the roster and configuration seeds")
	groupsCmd.Flags().BoolVar(&groupsJSON, "json", false, "write the draw and referee conflicts as JSON instead of CSV")
	rootCmd.AddCommand(groupsCmd)
}

func runGroups(cmd *cobra.Command, args []string) error {
	doc, err := input.LoadRoster(groupsInput)
	if err != nil {
		return fmt.Errorf("read %s: %w", groupsInput, err)
	}
	svc, _, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)

	seed := doc.Seed
	if groupsSeed != 0 {
		seed = groupsSeed
	}
	d, err := svc.Draw(doc.Teams, doc.Affiliations, seed)
	if err != nil {
		return err
	}
	for _, w := range d.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	var out io.Writer = cmd.OutOrStdout()
	if groupsOutput != "" {
		f, err := os.Create(groupsOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if groupsJSON {
		return export.WriteJSON(out, d)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "seed %d\n", d.Seed)
	return export.WriteGroupingsCSV(out, d.Memberships)
}
