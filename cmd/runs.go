package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stonk0105/volleysched/core/store"
	"github.com/stonk0105/volleysched/pkg/export"
)

var (
	runsStatus string
	runsSince  time.Duration
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored scheduling runs",
}

var runsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored runs",
	RunE:    listRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one stored run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  showRun,
}

func init() {
	runsListCmd.Flags().StringVar(&runsStatus, "status", "", "only runs with this status")
	runsListCmd.Flags().DurationVar(&runsSince, "since", 0, "only runs started within this duration")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "most recent runs to show, 0 for all")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func listRuns(cmd *cobra.Command, args []string) error {
	svc, _, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)

	q := store.RunQuery{Status: runsStatus, Limit: runsLimit}
	if runsSince > 0 {
		q.Start = time.Now().Add(-runsSince)
	}
	recs, err := svc.Runs(cmd.Context(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tMATCHES\tMAKESPAN\tDURATION")
	for _, r := range recs {
		makespan := "-"
		if r.Result != nil {
			makespan = fmt.Sprint(r.Result.Makespan)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.Timestamp.Format(time.RFC3339), r.Status, r.Matches, makespan, r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	svc, _, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)

	rec, err := svc.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return export.WriteJSON(cmd.OutOrStdout(), rec)
}
