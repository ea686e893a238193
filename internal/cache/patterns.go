package cache

import (
	"fmt"
	"regexp"
	"time"
	"unicode"
	"unicode/utf8"
)

// PatternCache compiles trigger phrases into case-insensitive, word-bounded
// matchers and keeps them for reuse across requests. Safe for concurrent use.
type PatternCache struct {
	store Cache
}

// NewPatternCache creates a pattern cache backed by memory. ttl of zero keeps
// patterns until Clear.
func NewPatternCache(ttl time.Duration) *PatternCache {
	if ttl <= 0 {
		return &PatternCache{store: NewMemoryCache(-1, 0)}
	}
	return &PatternCache{store: NewMemoryCache(ttl, ttl*2)}
}

// Matcher finds a literal phrase as a whole word, ignoring case.
// Word characters are Unicode letters, digits and underscore.
type Matcher struct {
	re *regexp.Regexp
}

// Phrase returns the matcher for a trigger phrase
func (p *PatternCache) Phrase(phrase string) (*Matcher, error) {
	key := Key("phrase", phrase)
	if v, ok := p.store.Get(key); ok {
		if m, ok := v.(*Matcher); ok {
			return m, nil
		}
	}

	// RE2's \b is ASCII-only, so boundaries are checked in Match
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(phrase))
	if err != nil {
		return nil, fmt.Errorf("compile trigger %q: %w", phrase, err)
	}
	m := &Matcher{re: re}
	p.store.Set(key, m, 0)
	return m, nil
}

// Match reports whether the phrase occurs in text with a word boundary on
// both sides
func (m *Matcher) Match(text string) bool {
	for pos := 0; pos <= len(text); {
		loc := m.re.FindStringIndex(text[pos:])
		if loc == nil {
			return false
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && atBoundary(text, start) && atBoundary(text, end) {
			return true
		}
		// retry one rune further so overlapping candidates are not skipped
		_, size := utf8.DecodeRuneInString(text[start:])
		if size == 0 {
			return false
		}
		pos = start + size
	}
	return false
}

// atBoundary reports whether exactly one side of byte offset i is a word
// character. Text edges count as non-word.
func atBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Len returns the number of cached matchers
func (p *PatternCache) Len() int {
	return p.store.Len()
}

// Clear drops every cached matcher
func (p *PatternCache) Clear() {
	p.store.Clear()
}
