// Package rule is a deterministic, rule based English engine: white space
// and punctuation tokenizer, sentence splitter, lexicon and suffix driven
// POS tagger and lemmatizer, and a chunk based dependency parser.
//
// It needs no model files; its lexicons are embedded in the binary and
// loaded once by New.
package rule

import (
	"context"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/revelaction/segparse/engine"
	sent "github.com/revelaction/segparse/sentence"
)

// Engine is the rule based engine. It is not safe for concurrent use.
type Engine struct {
	lex   *lexicon
	lower cases.Caser
}

var _ engine.Engine = (*Engine)(nil)

// New loads the lexicons and returns a ready Engine.
func New() (*Engine, error) {
	lex, err := loadLexicon()
	if err != nil {
		return nil, err
	}

	return &Engine{
		lex:   lex,
		lower: cases.Lower(language.English),
	}, nil
}

// Parse splits text in sentences of tokens and parses each sentence.
func (e *Engine) Parse(ctx context.Context, text string) ([]engine.Sentence, error) {
	toks := e.tokenize(text)
	if len(toks) == 0 {
		return nil, engine.ErrEmptyInput
	}

	groups := split(text, toks)
	sentences := make([]engine.Sentence, 0, len(groups))

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.tag(g)
		e.lemmatize(g)
		deps := e.depParse(g)

		tokens := make([]sent.Token, len(g))
		for i, t := range g {
			tokens[i] = sent.Token{
				Index: i,
				Text:  t.text,
				Lemma: t.lemma,
				Pos:   t.pos,
				Start: t.start,
				End:   t.end,
			}
		}

		sentences = append(sentences, engine.Sentence{Tokens: tokens, Dependencies: deps})
	}

	return sentences, nil
}

// Close releases nothing; the rule engine holds no external resources.
func (e *Engine) Close() error {
	return nil
}
