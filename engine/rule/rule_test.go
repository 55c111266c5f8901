package rule

import (
	"context"
	"errors"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/segparse/engine"
	sent "github.com/revelaction/segparse/sentence"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New()
	require.NoError(t, err)
	return e
}

func parse(t *testing.T, e *Engine, text string) []engine.Sentence {
	t.Helper()
	sentences, err := e.Parse(context.Background(), text)
	require.NoError(t, err)
	require.NoError(t, engine.Validate(text, sentences))
	return sentences
}

func words(s engine.Sentence) []string {
	w := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		w[i] = t.Text
	}
	return w
}

func TestParseDependencyGraph(t *testing.T) {
	e := newEngine(t)
	sentences := parse(t, e, "You need to turn in your homework by next week")
	require.Len(t, sentences, 1)

	s := sentences[0]
	assert.Equal(t, strings.Fields("You need to turn in your homework by next week"), words(s))

	want := []sent.Dependency{
		{Governor: -1, Dependent: 1, Label: "ROOT"},
		{Governor: 1, Dependent: 0, Label: "nsubj"},
		{Governor: 3, Dependent: 2, Label: "mark"},
		{Governor: 1, Dependent: 3, Label: "xcomp"},
		{Governor: 6, Dependent: 4, Label: "case"},
		{Governor: 6, Dependent: 5, Label: "nmod:poss"},
		{Governor: 3, Dependent: 6, Label: "obl"},
		{Governor: 9, Dependent: 7, Label: "case"},
		{Governor: 9, Dependent: 8, Label: "amod"},
		{Governor: 3, Dependent: 9, Label: "obl"},
	}
	assert.Equal(t, want, s.Dependencies)
}

func TestParseCopulaSentence(t *testing.T) {
	e := newEngine(t)
	sentences := parse(t, e, "Erlotinib is a common treatment for lung and unknown cancers")
	require.Len(t, sentences, 1)

	s := sentences[0]
	want := []sent.Dependency{
		{Governor: -1, Dependent: 4, Label: "ROOT"},
		{Governor: 4, Dependent: 0, Label: "nsubj"},
		{Governor: 4, Dependent: 1, Label: "cop"},
		{Governor: 4, Dependent: 2, Label: "det"},
		{Governor: 4, Dependent: 3, Label: "amod"},
		{Governor: 6, Dependent: 5, Label: "case"},
		{Governor: 4, Dependent: 6, Label: "nmod"},
		{Governor: 9, Dependent: 7, Label: "cc"},
		{Governor: 9, Dependent: 8, Label: "amod"},
		{Governor: 6, Dependent: 9, Label: "conj"},
	}
	assert.Equal(t, want, s.Dependencies)

	assert.Equal(t, "be", s.Tokens[1].Lemma)
	assert.Equal(t, "cancer", s.Tokens[9].Lemma)
	assert.Equal(t, AUX, s.Tokens[1].Pos)
	assert.Equal(t, CCONJ, s.Tokens[7].Pos)
}

func TestParseTwoSentences(t *testing.T) {
	e := newEngine(t)
	sentences := parse(t, e, "Erlotinib is a common treatment for NSCLC. Aspirin is the main cause of boneitis.")
	require.Len(t, sentences, 2)

	assert.Equal(t, strings.Fields("Erlotinib is a common treatment for NSCLC ."), words(sentences[0]))
	assert.Equal(t, strings.Fields("Aspirin is the main cause of boneitis ."), words(sentences[1]))

	// "cause" after an adjective is a noun, the copula complement is the root
	assert.Equal(t, NOUN, sentences[1].Tokens[4].Pos)
	root := -1
	for _, d := range sentences[1].Dependencies {
		if d.IsRoot() {
			root = d.Dependent
		}
	}
	assert.Equal(t, 4, root)
}

func TestParseUnicode(t *testing.T) {
	e := newEngine(t)
	text := "Erlotinib is a common treatment for NF-κB positive lung and unknown cancers"
	sentences := parse(t, e, text)
	require.Len(t, sentences, 1)

	s := sentences[0]
	assert.Equal(t, strings.Fields(text), words(s))
	for _, tok := range s.Tokens {
		assert.Equal(t, tok.Text, text[tok.Start:tok.End])
	}
	assert.Equal(t, "NF-κB", s.Tokens[6].Lemma)
	assert.Equal(t, PROPN, s.Tokens[6].Pos)
}

func TestParseManySentences(t *testing.T) {
	e := newEngine(t)
	single := "Erlotinib is a common treatment for lung and unknown cancers."
	text := strings.TrimSpace(strings.Repeat(single+" ", 500))

	sentences := parse(t, e, text)
	require.Len(t, sentences, 500)
	for _, s := range sentences {
		require.Len(t, s.Tokens, 11)
		assert.Equal(t, "Erlotinib", s.Tokens[0].Text)
		assert.Equal(t, ".", s.Tokens[10].Text)
	}
}

func TestParseTreeShape(t *testing.T) {
	e := newEngine(t)
	texts := []string{
		"The patients who received the drug did not respond, and the tumors grew quickly.",
		"In 2010, researchers found that EGFR mutations predict response to erlotinib.",
		"Stop!",
		"...",
		"It's the drug's effect (see Fig. 2) that matters; however, it doesn't work.",
		"Very common side effects include rash and diarrhea.",
	}

	for _, text := range texts {
		sentences := parse(t, e, text)
		for _, s := range sentences {
			assertTree(t, text, s)
		}
	}
}

// assertTree checks every token but the root has one governor and reaches
// the root without cycles.
func assertTree(t *testing.T, text string, s engine.Sentence) {
	t.Helper()

	heads := map[int]int{}
	for _, d := range s.Dependencies {
		_, dup := heads[d.Dependent]
		require.False(t, dup, "%q: token %d has two governors", text, d.Dependent)
		heads[d.Dependent] = d.Governor
	}
	require.Len(t, heads, len(s.Tokens), text)

	for i := range s.Tokens {
		seen := map[int]bool{}
		for k := i; k != -1; k = heads[k] {
			require.False(t, seen[k], "%q: cycle through token %d", text, k)
			seen[k] = true
		}
	}
}

func TestParseEmpty(t *testing.T) {
	e := newEngine(t)
	for _, text := range []string{"", "   \n\t "} {
		_, err := e.Parse(context.Background(), text)
		assert.True(t, errors.Is(err, engine.ErrEmptyInput))
	}
}

func TestParseCanceled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Parse(ctx, "Aspirin works.")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		text string
		want []string
	}{
		{"Dr. Smith treats e.g. cancers.", []string{"Dr.", "Smith", "treats", "e.g.", "cancers", "."}},
		{"It doesn't work.", []string{"It", "does", "n't", "work", "."}},
		{"(NSCLC).", []string{"(", "NSCLC", ")", "."}},
		{"Wait...", []string{"Wait", "..."}},
		{"the drug's effect", []string{"the", "drug", "'s", "effect"}},
		{"3.5 mg of NF-κB", []string{"3.5", "mg", "of", "NF-κB"}},
		{"the U.S. market", []string{"the", "U.S.", "market"}},
		{`"Stop."`, []string{`"`, "Stop", ".", `"`}},
		{"...", []string{"..."}},
	}

	for _, tc := range tests {
		toks := e.tokenize(tc.text)
		got := make([]string, len(toks))
		for i, tok := range toks {
			got[i] = tok.text
			assert.Equal(t, tok.text, tc.text[tok.start:tok.end])
		}
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestSplit(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		text string
		want int
	}{
		{`He said "Stop." Then he left.`, 2},
		{"First line\n\nsecond line", 2},
		{"It works. and more.", 1},
		{"Version 2. 3 items.", 2},
		{"Dr. Smith arrived. He left?", 2},
		{"No terminator at all", 1},
	}

	for _, tc := range tests {
		groups := split(tc.text, e.tokenize(tc.text))
		assert.Len(t, groups, tc.want, tc.text)
	}
}

func TestLemma(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		word, pos, want string
	}{
		{"cancers", NOUN, "cancer"},
		{"studies", NOUN, "study"},
		{"children", NOUN, "child"},
		{"boneitis", NOUN, "boneitis"},
		{"boxes", NOUN, "box"},
		{"is", AUX, "be"},
		{"has", VERB, "have"},
		{"treats", VERB, "treat"},
		{"stopped", VERB, "stop"},
		{"increasing", VERB, "increase"},
		{"inhibited", VERB, "inhibit"},
		{"NSCLC", PROPN, "NSCLC"},
		{"Common", ADJ, "common"},
		{".", PUNCT, "."},
	}

	for _, tc := range tests {
		got := e.lemma(token{text: tc.word, pos: tc.pos})
		assert.Equal(t, tc.want, got, tc.word)
	}
}

func TestLoadLexicon(t *testing.T) {
	lex, err := loadLexicon()
	require.NoError(t, err)

	assert.True(t, lex.aux["will"])
	assert.True(t, lex.aux["does"])
	assert.True(t, lex.aux["is"])
	assert.False(t, lex.aux["take"])

	// names the go tool refuses to embed on every platform
	reserved := map[string]bool{"con": true, "prn": true, "aux": true, "nul": true}
	entries, err := lexiconFiles.ReadDir("lexicon")
	require.NoError(t, err)
	for _, e := range entries {
		base := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		assert.False(t, reserved[strings.ToLower(base)], e.Name())
	}
}
