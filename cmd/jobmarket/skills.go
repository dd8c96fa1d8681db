package main

import (
	"fmt"
	"strings"

	"github.com/jonathan/jobmarket/internal/observability"
	"github.com/jonathan/jobmarket/internal/parsing"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the skill vocabulary or extract skills from text",
	Args:  cobra.NoArgs,
	RunE:  runSkills,
}

var skillsText string

func init() {
	skillsCmd.Flags().StringVarP(&skillsText, "text", "t", "", "Job description (plain text or HTML) to extract skills from")

	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, _ []string) error {
	vocab, err := loadVocabulary()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if skillsText != "" {
		for _, name := range vocab.Extract(parsing.PlainText(skillsText)) {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	entries := vocab.Entries()
	if cfg.Verbose {
		observability.NewPrinter(out).PrintVocabulary(entries)
		return nil
	}
	for _, e := range entries {
		if len(e.Aliases) == 0 {
			fmt.Fprintln(out, e.Name)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", e.Name, strings.Join(e.Aliases, ", "))
	}
	return nil
}
