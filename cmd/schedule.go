package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stonk0105/volleysched/core/store"
	"github.com/stonk0105/volleysched/pkg/export"
	"github.com/stonk0105/volleysched/pkg/input"
)

var (
	scheduleInput  string
	scheduleOutput string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a tournament document and export the result",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleInput, "input", "i", "tournament.yaml", "tournament document (yaml or json)")
	scheduleCmd.Flags().StringVarP(&scheduleOutput, "output", "o", "out", "directory receiving the exported tables")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := input.LoadTournament(scheduleInput)
	if err != nil {
		return fmt.Errorf("read %s: %w", scheduleInput, err)
	}
	svc, _, err := newService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)

	rec, err := svc.Schedule(ctx, t)
	for _, w := range warnings(rec) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	if err != nil {
		return fmt.Errorf("run %s %s: %w", rec.ID, rec.Status, err)
	}
	if err := export.WriteAll(scheduleOutput, rec.Result); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s %s: %d matches, makespan %d, objective %.2f, written to %s\n",
		rec.ID, rec.Status, len(rec.Result.Schedule), rec.Result.Makespan, rec.Result.Objective, scheduleOutput)
	return nil
}

func warnings(rec store.RunRecord) []string {
	if rec.Result == nil {
		return nil
	}
	return rec.Result.Warnings
}
