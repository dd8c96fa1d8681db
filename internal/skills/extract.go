package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extract returns the sorted, de-duplicated canonical skills whose tokens
// occur as whole words in text. Matching is case-insensitive and any run of
// whitespace matches the single space of a multi-word token.
func (v *Vocabulary) Extract(text string) []string {
	lower := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if lower == "" {
		return nil
	}

	found := make(map[string]struct{})
	for _, token := range v.tokens {
		if containsWord(lower, token) {
			found[v.canonical[token]] = struct{}{}
		}
	}
	if len(found) == 0 {
		return nil
	}

	out := make([]string, 0, len(found))
	for name := range found {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// containsWord reports whether token occurs in text with no word character
// immediately before or after it.
func containsWord(text, token string) bool {
	if token == "" {
		return false
	}
	for offset := 0; offset <= len(text)-len(token); {
		i := strings.Index(text[offset:], token)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(token)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
