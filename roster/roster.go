// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var ErrEmptyRoster = errors.New("at least one name required")

// DefaultKeywords are the header cells skipped when pasting a spreadsheet
var DefaultKeywords = []string{"姓名", "名字", "name", "序号", "id", "no", "no.", "编号"}

// Parser extracts participant names from pasted or uploaded text
type Parser struct {
	keywords []string
}

// NewParser creates a parser with the given header keywords.
// Keywords are matched case-insensitively.
func NewParser(keywords []string) *Parser {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return &Parser{keywords: kw}
}

var defaultParser = NewParser(DefaultKeywords)

// Parse extracts names using the default header keywords
func Parse(raw string) []string {
	return defaultParser.Parse(raw)
}

// Parse returns one name per line, in input order.
// The name is the first token that is not all digits, so leading
// sequence numbers and IDs are skipped. Header lines are dropped.
func (p *Parser) Parse(raw string) []string {
	names := []string{}
	for _, line := range strings.FieldsFunc(raw, isLineBreak) {
		name, ok := firstName(line)
		if !ok || p.isHeader(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Clean applies the line rules of Parse to names that arrive already
// split: each entry keeps its first non-numeric token, and numeric-only
// or header entries are dropped.
func (p *Parser) Clean(entries []string) []string {
	names := []string{}
	for _, entry := range entries {
		name, ok := firstName(entry)
		if !ok || p.isHeader(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Keywords returns a copy of the parser's header keywords
func (p *Parser) Keywords() []string {
	return append([]string(nil), p.keywords...)
}

func (p *Parser) isHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range p.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func firstName(line string) (string, bool) {
	for _, tok := range strings.FieldsFunc(line, isSeparator) {
		tok = strings.TrimSpace(tok)
		if tok == "" || isDigits(tok) {
			continue
		}
		return tok, true
	}
	return "", false
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

// U+FEFF counts as whitespace so a byte-order mark never sticks to the first name
func isSeparator(r rune) bool {
	return r == ',' || r == ';' || r == '\t' || r == '\uFEFF' || unicode.IsSpace(r)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// FindDuplicates returns every name that occurs more than once,
// in order of first occurrence
func FindDuplicates(names []string) []string {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}

	dups := []string{}
	for _, n := range names {
		if counts[n] > 1 {
			dups = append(dups, n)
			counts[n] = 0
		}
	}
	return dups
}

// Deduplicate keeps the first occurrence of each name
func Deduplicate(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return unique
}

// Analysis is the import preview for a block of text
type Analysis struct {
	Names      []string
	Duplicates []string
}

// Analyze parses raw text and reports its duplicates
func (p *Parser) Analyze(raw string) Analysis {
	names := p.Parse(raw)
	return Analysis{Names: names, Duplicates: FindDuplicates(names)}
}

// Validate checks that a confirmed roster is usable
func Validate(names []string) error {
	if len(names) == 0 {
		return ErrEmptyRoster
	}
	return nil
}

type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywords reads header keywords from a YAML file of the form:
//
//	keywords:
//	  - 姓名
//	  - name
func LoadKeywords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file %s: %w", path, err)
	}
	if len(kf.Keywords) == 0 {
		return nil, fmt.Errorf("keywords file %s has no keywords", path)
	}
	return kf.Keywords, nil
}
