// Package engine defines the contract of the syntactic parsing engines:
// plain text in, sentences of tokens with lemmas and dependency edges out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sent "github.com/revelaction/segparse/sentence"
)

// ErrEmptyInput is returned by engines for text without any token.
var ErrEmptyInput = errors.New("empty input")

// Sentence is one sentence as produced by an Engine. Token offsets are byte
// offsets into the parsed text; dependency indices are local to the sentence.
type Sentence struct {
	Tokens       []sent.Token
	Dependencies []sent.Dependency
}

// Engine tokenizes, lemmatizes and dependency-parses plain text.
//
// Engines are expensive to construct and are meant to be reused for
// sequential calls. They are not required to be safe for concurrent use.
type Engine interface {
	Parse(ctx context.Context, text string) ([]Sentence, error)
	Close() error
}

// ContractError is engine output that breaks the Engine contract. Token is
// -1 for errors of a whole sentence. Offset is the plain text byte offset of
// the offending token, or -1.
type ContractError struct {
	Sentence int
	Token    int
	Offset   int
	Reason   string
}

func (e *ContractError) Error() string {
	if e.Token < 0 {
		return fmt.Sprintf("sentence %d: %s", e.Sentence, e.Reason)
	}
	return fmt.Sprintf("sentence %d token %d: %s", e.Sentence, e.Token, e.Reason)
}

// Validate checks that sentences honor the Engine contract for text: tokens
// are ordered, do not overlap, lie inside the text on code point boundaries,
// match the text at their offsets and have a lemma; every sentence has
// exactly one ROOT edge and all indices are in range.
func Validate(text string, sentences []Sentence) error {
	if len(sentences) == 0 {
		return errors.New("no sentences")
	}

	prevEnd := 0
	for si, s := range sentences {
		sentErr := func(format string, args ...any) error {
			return &ContractError{Sentence: si, Token: -1, Offset: -1, Reason: fmt.Sprintf(format, args...)}
		}

		if len(s.Tokens) == 0 {
			return sentErr("no tokens")
		}

		for ti, t := range s.Tokens {
			tokErr := func(offset int, format string, args ...any) error {
				return &ContractError{Sentence: si, Token: ti, Offset: offset, Reason: fmt.Sprintf(format, args...)}
			}

			if t.Start < prevEnd || t.End <= t.Start || t.End > len(text) {
				return tokErr(-1, "bad offsets [%d,%d)", t.Start, t.End)
			}
			if !utf8.RuneStart(text[t.Start]) || (t.End < len(text) && !utf8.RuneStart(text[t.End])) {
				return tokErr(t.Start, "offsets [%d,%d) split a code point", t.Start, t.End)
			}
			if got := text[t.Start:t.End]; got != t.Text {
				return tokErr(t.Start, "text %q does not match %q at [%d,%d)", t.Text, got, t.Start, t.End)
			}
			if t.Lemma == "" {
				return tokErr(t.Start, "%q: empty lemma", t.Text)
			}
			if t.Index != ti {
				return tokErr(t.Start, "index %d", t.Index)
			}
			prevEnd = t.End
		}

		roots := 0
		for _, d := range s.Dependencies {
			if d.IsRoot() {
				roots++
			} else if d.Governor < 0 || d.Governor >= len(s.Tokens) {
				return sentErr("governor %d out of range", d.Governor)
			}
			if d.Dependent < 0 || d.Dependent >= len(s.Tokens) {
				return sentErr("dependent %d out of range", d.Dependent)
			}
		}
		if roots != 1 {
			return sentErr("%d ROOT edges", roots)
		}
	}

	return nil
}
