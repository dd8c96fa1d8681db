// Package skills holds the skill vocabulary and extracts canonical skills from job descriptions.
package skills

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Entry is one canonical skill and the alias tokens that fold into it.
type Entry struct {
	Name    string   `yaml:"name" validate:"required"`
	Aliases []string `yaml:"aliases,omitempty" validate:"omitempty,dive,required"`
}

type vocabularyFile struct {
	Skills []Entry `yaml:"skills" validate:"required,min=1,dive"`
}

// Vocabulary is an immutable table of recognized skill tokens.
type Vocabulary struct {
	entries   []Entry
	tokens    []string          // scan order
	canonical map[string]string // token -> canonical name
}

// NewVocabulary builds a vocabulary from entries. Every name and alias is
// lower-cased, and a token may map to only one canonical name.
func NewVocabulary(entries []Entry) (*Vocabulary, error) {
	v := &Vocabulary{
		entries:   make([]Entry, 0, len(entries)),
		canonical: make(map[string]string),
	}

	for _, e := range entries {
		name := normalizeToken(e.Name)
		if name == "" {
			return nil, fmt.Errorf("skill entry has an empty name")
		}
		if err := v.addToken(name, name); err != nil {
			return nil, err
		}

		normalized := Entry{Name: name}
		for _, alias := range e.Aliases {
			alias = normalizeToken(alias)
			if alias == "" {
				return nil, fmt.Errorf("skill %q has an empty alias", name)
			}
			if err := v.addToken(alias, name); err != nil {
				return nil, err
			}
			normalized.Aliases = append(normalized.Aliases, alias)
		}
		v.entries = append(v.entries, normalized)
	}

	return v, nil
}

func (v *Vocabulary) addToken(token, canonical string) error {
	if existing, ok := v.canonical[token]; ok {
		return fmt.Errorf("skill token %q already maps to %q", token, existing)
	}
	v.canonical[token] = canonical
	v.tokens = append(v.tokens, token)
	return nil
}

// Canonicalize returns the canonical name for an alias token, or the token itself.
func (v *Vocabulary) Canonicalize(token string) string {
	if canonical, ok := v.canonical[normalizeToken(token)]; ok {
		return canonical
	}
	return token
}

// Tokens returns every recognized token in scan order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// Entries returns a copy of the vocabulary table.
func (v *Vocabulary) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	for i, e := range v.entries {
		out[i] = Entry{Name: e.Name, Aliases: append([]string(nil), e.Aliases...)}
	}
	return out
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := Parse(defaultVocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in skill vocabulary: %v", err))
	}
	return v
}

// LoadFile reads a YAML vocabulary table from path.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill vocabulary %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid skill vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Parse builds a vocabulary from a YAML document of the form
// `skills: [{name: ..., aliases: [...]}]`.
func Parse(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("failed to validate vocabulary: %w", err)
	}
	return NewVocabulary(file.Skills)
}

// normalizeToken lower-cases token and collapses its whitespace to single
// spaces, the form Extract scans for.
func normalizeToken(token string) string {
	return strings.Join(strings.Fields(strings.ToLower(token)), " ")
}
