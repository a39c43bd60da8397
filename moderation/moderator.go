// Package moderation censors forbidden words in chat bodies before they
// are persisted or delivered.
package moderation

import (
	"bufio"
	"embed"
	"io/fs"
	"log/slog"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed words/*.txt
var wordFiles embed.FS

// Moderator matches a fixed dictionary with an Aho-Corasick automaton
// over a folded view of the text, so spacing and character substitutions
// do not defeat the filter. Safe for concurrent use once built.
type Moderator struct {
	machine     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

// folded carries the searchable runes plus, for each of them, the index
// of the rune they came from in the original string.
type folded struct {
	runes  []rune
	source []int
}

// NewModerator builds the automaton from the dictionary. Building is
// the expensive part and happens once at startup.
func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		f := fold(w)
		if len(f.runes) > 0 {
			patterns = append(patterns, f.runes)
		}
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{machine: machine, replacement: replacement, log: log}, nil
}

// LoadWords reads the embedded dictionary, one word per line, ignoring
// blanks and # comments.
func LoadWords() ([]string, error) {
	var words []string
	err := fs.WalkDir(wordFiles, "words", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := wordFiles.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			words = append(words, line)
		}
		return scanner.Err()
	})
	return words, err
}

// Censor replaces every matched span with the replacement character.
// Characters the fold skipped (spaces, punctuation) keep their place,
// so the visible layout of the message survives.
func (m *Moderator) Censor(body string) string {
	f := fold(body)
	if len(f.runes) == 0 {
		return body
	}
	hits := m.machine.MultiPatternSearch(f.runes, false)
	if len(hits) == 0 {
		return body
	}

	out := []rune(body)
	for _, hit := range hits {
		start := hit.Pos
		end := start + len(hit.Word)
		if start < 0 || end > len(f.source) {
			continue
		}
		for i := f.source[start]; i <= f.source[end-1]; i++ {
			out[i] = m.replacement
		}
	}
	return string(out)
}

// fold lower-cases, resolves common digit substitutions and drops
// separators, remembering where every kept rune came from.
func fold(input string) folded {
	runes := []rune(input)
	f := folded{
		runes:  make([]rune, 0, len(runes)),
		source: make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		r = unfoldSubstitution(r)
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.source = append(f.source, i)
	}
	return f
}

// unfoldSubstitution maps the usual evasion characters back to letters.
func unfoldSubstitution(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
