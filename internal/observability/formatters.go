// Package observability provides logging setup and formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobmarket/internal/db"
	"github.com/jonathan/jobmarket/internal/ingestion"
	"github.com/jonathan/jobmarket/internal/skills"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintSummary outputs the outcome counts of an ingestion batch with the
// first failures and rejections.
func (p *Printer) PrintSummary(summary *ingestion.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Records:    %d\n", summary.Total)
	fmt.Fprintf(&sb, "Added:      %d\n", summary.Added)
	fmt.Fprintf(&sb, "Duplicates: %d\n", summary.Duplicates)
	fmt.Fprintf(&sb, "Rejected:   %d\n", summary.Rejected)
	fmt.Fprintf(&sb, "Failed:     %d\n", summary.Failed)
	if skipped := summary.Total - summary.Processed(); skipped > 0 {
		fmt.Fprintf(&sb, "Not run:    %d\n", skipped)
	}

	if len(summary.Errors) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(summary.Errors), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := summary.Errors[i]
			fmt.Fprintf(&sb, "  ✗ #%d %s: %v\n", e.Index, e.Stage, e.Err)
		}
		if len(summary.Errors) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(summary.Errors)-maxItemsToShow)
		}
	}

	if len(summary.Rejections) > 0 {
		sb.WriteString("\nRejections:\n")
		count := min(len(summary.Rejections), maxItemsToShow)
		for i := 0; i < count; i++ {
			r := summary.Rejections[i]
			fmt.Fprintf(&sb, "  • #%d %s\n", r.Index, r.Reason)
		}
		if len(summary.Rejections) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(summary.Rejections)-maxItemsToShow)
		}
	}

	p.printBox("INGESTION SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCounts outputs the row count of every table.
func (p *Printer) PrintCounts(counts *db.TableCounts) {
	if counts == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "companies:    %d\n", counts.Companies)
	fmt.Fprintf(&sb, "locations:    %d\n", counts.Locations)
	fmt.Fprintf(&sb, "skills:       %d\n", counts.Skills)
	fmt.Fprintf(&sb, "job_postings: %d\n", counts.JobPostings)
	fmt.Fprintf(&sb, "job_skills:   %d", counts.JobSkills)

	p.printBox("TABLE COUNTS", sb.String())
}

// PrintVocabulary outputs every canonical skill with its aliases.
func (p *Printer) PrintVocabulary(entries []skills.Entry) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d skills:\n\n", len(entries))
	for _, e := range entries {
		sb.WriteString("• " + e.Name)
		if len(e.Aliases) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(e.Aliases, ", "))
		}
		sb.WriteString("\n")
	}

	p.printBox("SKILL VOCABULARY", strings.TrimSuffix(sb.String(), "\n"))
}
