package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ContainsOriginalSkillList(t *testing.T) {
	v := Default()
	tokens := v.Tokens()

	for _, skill := range []string{"python", "sql", "aws", "java", "tableau", "power bi", "excel", "r", "spark", "azure", "postgresql"} {
		assert.Contains(t, tokens, skill)
	}
}

func TestCanonicalize(t *testing.T) {
	v := Default()

	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{"alias folds to canonical", "postgres", "postgresql"},
		{"canonical stays canonical", "postgresql", "postgresql"},
		{"alias is case-insensitive", "Postgres", "postgresql"},
		{"multi-word alias", "amazon web services", "aws"},
		{"k8s to kubernetes", "k8s", "kubernetes"},
		{"unknown token passes through", "cobol", "cobol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.Canonicalize(tt.token))
		})
	}
}

func TestNewVocabulary_NormalizesTokens(t *testing.T) {
	v, err := NewVocabulary([]Entry{
		{Name: "  PostgreSQL ", Aliases: []string{"Postgres"}},
		{Name: "Python"},
		{Name: "Power\tBI", Aliases: []string{"power  bi tool"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"postgresql", "postgres", "python", "power bi", "power bi tool"}, v.Tokens())
	assert.Equal(t, []Entry{
		{Name: "postgresql", Aliases: []string{"postgres"}},
		{Name: "python"},
		{Name: "power bi", Aliases: []string{"power bi tool"}},
	}, v.Entries())
}

func TestNewVocabulary_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		errMsg  string
	}{
		{
			name:    "empty name",
			entries: []Entry{{Name: "  "}},
			errMsg:  "empty name",
		},
		{
			name:    "empty alias",
			entries: []Entry{{Name: "go", Aliases: []string{""}}},
			errMsg:  "empty alias",
		},
		{
			name:    "duplicate canonical name",
			entries: []Entry{{Name: "sql"}, {Name: "SQL"}},
			errMsg:  `"sql" already maps to "sql"`,
		},
		{
			name:    "alias collides with another skill",
			entries: []Entry{{Name: "postgresql"}, {Name: "mysql", Aliases: []string{"postgresql"}}},
			errMsg:  `"postgresql" already maps to "postgresql"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVocabulary(tt.entries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	v, err := NewVocabulary([]Entry{{Name: "postgresql", Aliases: []string{"postgres"}}})
	require.NoError(t, err)

	entries := v.Entries()
	entries[0].Aliases[0] = "mutated"

	assert.Equal(t, "postgresql", v.Canonicalize("postgres"))
	assert.Equal(t, []string{"postgres"}, v.Entries()[0].Aliases)
}

func TestParse(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		v, err := Parse([]byte("skills:\n  - name: go\n    aliases: [golang]\n"))
		require.NoError(t, err)
		assert.Equal(t, "go", v.Canonicalize("golang"))
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte("skills:\n  - aliases: [golang]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validate")
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := Parse([]byte("skills: []\n"))
		require.Error(t, err)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		_, err := Parse([]byte("skills: [name: go"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills:\n  - name: rust\n"), 0o644))

	v, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, v.Tokens())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read skill vocabulary")
}
