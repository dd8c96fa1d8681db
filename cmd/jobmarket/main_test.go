package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/jobmarket/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns its combined
// output. Flags are reset first since commands are package globals.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, name := range []string{"DATABASE_URL", "JSEARCH_API_KEY", "JOBMARKET_DATABASE_URL", "JOBMARKET_JSEARCH_API_KEY", "JOBMARKET_LOG_LEVEL", "JOBMARKET_LOG_FORMAT"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestValidateIngestFlags(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		search  bool
		wantErr string
	}{
		{name: "file", file: "records.json"},
		{name: "search", search: true},
		{name: "neither", wantErr: "either --file or --search must be provided"},
		{name: "both", file: "records.json", search: true, wantErr: "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateIngestFlags(tt.file, tt.search)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSkillsCommand_Extract(t *testing.T) {
	out, err := executeCommand(t, "skills", "--text", "<p>Python and Postgres</p><p>R programming</p>")
	require.NoError(t, err)
	assert.Equal(t, "postgresql\npython\nr\n", out)
}

func TestSkillsCommand_List(t *testing.T) {
	out, err := executeCommand(t, "skills")
	require.NoError(t, err)
	assert.Contains(t, out, "postgresql: postgres")
	assert.Contains(t, out, "python\n")
}

func TestSkillsCommand_CustomVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills:\n  - name: golang\n    aliases: [go]\n"), 0644))

	out, err := executeCommand(t, "skills", "--skills-file", path, "--text", "Go services")
	require.NoError(t, err)
	assert.Equal(t, "golang\n", out)
}

func TestCommands_RequireDatabase(t *testing.T) {
	for _, args := range [][]string{
		{"migrate"},
		{"stats"},
		{"ingest", "--file", "records.json"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, err := executeCommand(t, args...)
			assert.ErrorIs(t, err, config.ErrNoDatabase)
		})
	}
}

func TestIngestCommand_MissingSource(t *testing.T) {
	_, err := executeCommand(t, "ingest", "--database-url", "sqlite:///tmp/unused.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either --file or --search")
}

func TestIngestCommand_SearchRequiresAPIKey(t *testing.T) {
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "jobmarket.db")
	_, err := executeCommand(t, "ingest", "--search", "--database-url", dbURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSearch API key is required")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := executeCommand(t, "skills", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

const recordsJSON = `{"status": "OK", "data": [
  {
    "job_title": "Senior Data Analyst",
    "employer_name": "Acme Analytics",
    "job_city": "Toronto",
    "job_state": "ON",
    "job_min_salary": 85000,
    "job_max_salary": 110000,
    "job_is_remote": false,
    "job_description": "<p>Python and SQL</p><p>Postgres a plus</p>",
    "job_apply_link": "https://jobs.example.com/analyst-1",
    "job_posted_at_datetime_utc": "2024-01-15T10:30:00.000Z"
  },
  {
    "job_title": "R Developer",
    "employer_name": "Globex",
    "job_description": "R programming",
    "job_apply_link": "https://jobs.example.com/r-dev-2"
  },
  {
    "job_title": null,
    "employer_name": "Initech",
    "job_apply_link": "https://jobs.example.com/untitled"
  }
]}`

func TestEndToEnd_SQLite(t *testing.T) {
	dir := t.TempDir()
	dbURL := "sqlite://" + filepath.Join(dir, "jobmarket.db")
	recordsPath := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(recordsPath, []byte(recordsJSON), 0644))

	out, err := executeCommand(t, "migrate", "--database-url", dbURL, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema at version 1")

	out, err = executeCommand(t, "ingest", "--file", recordsPath, "--strict", "--database-url", dbURL, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "added=2 duplicates=0 rejected=1 failed=0\n", out)

	out, err = executeCommand(t, "ingest", "--file", recordsPath, "--database-url", dbURL, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "added=1 duplicates=2 rejected=0 failed=0\n", out)

	out, err = executeCommand(t, "stats", "--database-url", dbURL, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "companies: 3\n")
	assert.Contains(t, out, "job_postings: 3\n")
	assert.Contains(t, out, "job_skills: 4\n")

	out, err = executeCommand(t, "stats", "--verbose", "--database-url", dbURL, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE COUNTS")
}
