package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/jobmarket/internal/fetch"
	"github.com/jonathan/jobmarket/internal/ingestion"
	"github.com/jonathan/jobmarket/internal/observability"
	"github.com/jonathan/jobmarket/internal/parsing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest raw job records from a file or the JSearch API",
	Long: "Ingest a batch of raw job records, either from a JSON file (an array of records or " +
		"a {\"data\": [...]} envelope) or from a JSearch search, and store every new posting.",
	Args: cobra.NoArgs,
	RunE: runIngest,
}

var (
	recordsFile string
	search      bool
)

func init() {
	ingestCmd.Flags().StringVarP(&recordsFile, "file", "f", "", "Path to JSON file of raw records")
	ingestCmd.Flags().BoolVar(&search, "search", false, "Fetch records from the JSearch API")
	ingestCmd.Flags().StringP("query", "q", "", "JSearch query (default from config)")
	ingestCmd.Flags().String("country", "", "JSearch country code (default from config)")
	ingestCmd.Flags().Int("pages", 1, "Number of JSearch result pages")
	ingestCmd.Flags().Bool("strict", false, "Reject records without title or company")
	ingestCmd.Flags().Bool("abort-on-error", false, "Stop the batch at the first failed record")

	rootCmd.AddCommand(ingestCmd)
}

// validateIngestFlags requires exactly one record source.
func validateIngestFlags(file string, search bool) error {
	if file == "" && !search {
		return fmt.Errorf("either --file or --search must be provided")
	}
	if file != "" && search {
		return fmt.Errorf("--file and --search are mutually exclusive; provide only one")
	}
	return nil
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := validateIngestFlags(recordsFile, search); err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx := cmd.Context()

	records, err := loadRecords(ctx)
	if err != nil {
		return err
	}

	vocab, err := loadVocabulary()
	if err != nil {
		return err
	}
	policy := parsing.LenientPolicy()
	if cfg.StrictRecords {
		policy = parsing.StrictPolicy()
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := ingestion.New(store, parsing.NewNormalizer(vocab, policy), logger, ingestion.Options{
		AbortOnFirstError: cfg.AbortOnFirstError,
	})
	summary, err := pipeline.Ingest(ctx, records)

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		observability.NewPrinter(out).PrintSummary(summary)
	} else {
		fmt.Fprintln(out, summary.String())
	}

	var batchErr *ingestion.BatchError
	if errors.As(err, &batchErr) {
		return fmt.Errorf("ingestion aborted, %d of %d records processed before the stop: %w",
			batchErr.Processed, batchErr.Total, batchErr.Err)
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d records failed", summary.Failed, summary.Total)
	}
	return nil
}

func loadRecords(ctx context.Context) ([]parsing.RawRecord, error) {
	if recordsFile != "" {
		records, err := fetch.LoadFile(recordsFile)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"file": recordsFile, "records": len(records)}).Info("records loaded")
		return records, nil
	}

	if err := cfg.RequireJSearch(); err != nil {
		return nil, err
	}
	client, err := fetch.NewJSearchClient(&fetch.Options{
		APIKey:  cfg.JSearch.APIKey,
		Host:    cfg.JSearch.Host,
		BaseURL: cfg.JSearch.BaseURL,
		Timeout: cfg.JSearch.Timeout,
	})
	if err != nil {
		return nil, err
	}

	q := fetch.SearchQuery{
		Query:    cfg.JSearch.Query,
		Country:  cfg.JSearch.Country,
		NumPages: cfg.JSearch.NumPages,
	}
	records, err := client.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"query": q.Query, "country": q.Country, "records": len(records)}).Info("records fetched")
	return records, nil
}
