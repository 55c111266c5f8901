package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sent "github.com/revelaction/segparse/sentence"
)

func validSentence() Sentence {
	return Sentence{
		Tokens: []sent.Token{
			{Index: 0, Text: "Aspirin", Lemma: "aspirin", Start: 0, End: 7},
			{Index: 1, Text: "works", Lemma: "work", Start: 8, End: 13},
		},
		Dependencies: []sent.Dependency{
			{Governor: -1, Dependent: 1, Label: "ROOT"},
			{Governor: 1, Dependent: 0, Label: "nsubj"},
		},
	}
}

func TestValidate(t *testing.T) {
	text := "Aspirin works"

	assert.NoError(t, Validate(text, []Sentence{validSentence()}))
	assert.Error(t, Validate(text, nil))

	tests := []struct {
		name   string
		mutate func(s *Sentence)
	}{
		{"empty lemma", func(s *Sentence) { s.Tokens[1].Lemma = "" }},
		{"overlap", func(s *Sentence) { s.Tokens[1].Start = 5 }},
		{"out of text", func(s *Sentence) { s.Tokens[1].End = 20 }},
		{"bad index", func(s *Sentence) { s.Tokens[1].Index = 7 }},
		{"no root", func(s *Sentence) { s.Dependencies = s.Dependencies[1:] }},
		{"two roots", func(s *Sentence) {
			s.Dependencies = append(s.Dependencies, sent.Dependency{Governor: -1, Dependent: 0, Label: "ROOT"})
		}},
		{"governor range", func(s *Sentence) { s.Dependencies[1].Governor = 2 }},
		{"dependent range", func(s *Sentence) { s.Dependencies[1].Dependent = -3 }},
		{"no tokens", func(s *Sentence) { s.Tokens = nil }},
		{"text mismatch", func(s *Sentence) { s.Tokens[1].Text = "work" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSentence()
			tc.mutate(&s)
			assert.Error(t, Validate(text, []Sentence{s}))
		})
	}
}

func TestValidateCodePointOffsets(t *testing.T) {
	text := "κκ a b"

	// offsets counted in code points instead of bytes
	s := Sentence{
		Tokens: []sent.Token{
			{Index: 0, Text: "κκ", Lemma: "κκ", Start: 0, End: 2},
			{Index: 1, Text: "a", Lemma: "a", Start: 3, End: 4},
			{Index: 2, Text: "b", Lemma: "b", Start: 5, End: 6},
		},
		Dependencies: []sent.Dependency{{Governor: -1, Dependent: 0, Label: "ROOT"}},
	}

	err := Validate(text, []Sentence{s})
	var ce *ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.Sentence)
	assert.Equal(t, 0, ce.Token)

	// the same tokens with byte offsets
	s.Tokens[0].End = 4
	s.Tokens[1].Start, s.Tokens[1].End = 5, 6
	s.Tokens[2].Start, s.Tokens[2].End = 7, 8
	assert.NoError(t, Validate(text, []Sentence{s}))

	// an offset inside a code point
	s.Tokens[0].End = 3
	s.Tokens[0].Text = text[0:3]
	err = Validate(text, []Sentence{s})
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Reason, "split a code point")
}
