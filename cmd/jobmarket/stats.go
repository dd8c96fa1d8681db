package main

import (
	"fmt"

	"github.com/jonathan/jobmarket/internal/observability"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts of every table",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		observability.NewPrinter(out).PrintCounts(counts)
		return nil
	}
	fmt.Fprintf(out, "companies: %d\n", counts.Companies)
	fmt.Fprintf(out, "locations: %d\n", counts.Locations)
	fmt.Fprintf(out, "skills: %d\n", counts.Skills)
	fmt.Fprintf(out, "job_postings: %d\n", counts.JobPostings)
	fmt.Fprintf(out, "job_skills: %d\n", counts.JobSkills)
	return nil
}
