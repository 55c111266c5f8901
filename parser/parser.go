// Package parser turns raw text with inline entity markup into parsed Docs:
// markup stripping, engine parsing, entity alignment and assembly.
package parser

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/revelaction/segparse/align"
	"github.com/revelaction/segparse/engine"
	"github.com/revelaction/segparse/markup"
	sent "github.com/revelaction/segparse/sentence"
)

// ErrAlreadyParsed is returned when parsing a Corpus that already carries
// parsed Docs.
var ErrAlreadyParsed = errors.New("corpus already parsed")

// EngineError wraps a failure of the engine, or engine output breaking the
// engine contract, for the Doc being parsed.
type EngineError struct {
	Doc int
	Err error

	// RawOffset is the raw text byte offset of the offending token, or -1.
	RawOffset int
}

func (e *EngineError) Error() string {
	if e.RawOffset >= 0 {
		return fmt.Sprintf("engine error in doc %d at raw offset %d: %v", e.Doc, e.RawOffset, e.Err)
	}
	return fmt.Sprintf("engine error in doc %d: %v", e.Doc, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

type Option func(*Parser)

// WithLogger sets the logger. The default logs nothing.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// WithMergeDuplicates makes entity mentions with the same type and id in one
// sentence share a single location with the union of their token indices.
func WithMergeDuplicates(merge bool) Option {
	return func(p *Parser) {
		p.merge = merge
	}
}

// WithProgress sets a function called after each parsed Doc.
func WithProgress(fn func(sent.Doc)) Option {
	return func(p *Parser) {
		p.progress = fn
	}
}

// Parser runs the parsing pipeline with one engine. It is not safe for
// concurrent use; see Pool.
type Parser struct {
	eng      engine.Engine
	logger   *zap.Logger
	merge    bool
	progress func(sent.Doc)
}

func New(eng engine.Engine, opts ...Option) *Parser {
	p := &Parser{
		eng:    eng,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses every Doc of the corpus in order. On error the corpus is not
// modified.
func (p *Parser) Parse(ctx context.Context, c *sent.Corpus) error {
	if c.Parsed() {
		return ErrAlreadyParsed
	}

	docs := make([]sent.Doc, len(c.Docs))
	for i, d := range c.Docs {
		parsed, err := p.parseDoc(ctx, d)
		if err != nil {
			return fmt.Errorf("doc %d: %w", i, err)
		}
		docs[i] = parsed
	}

	c.Docs = docs
	return nil
}

// ParseText parses one raw text into a Doc.
func (p *Parser) ParseText(ctx context.Context, title, raw string) (sent.Doc, error) {
	return p.parseDoc(ctx, sent.Doc{Title: title, Text: raw})
}

func (p *Parser) parseDoc(ctx context.Context, doc sent.Doc) (sent.Doc, error) {
	res, err := markup.Strip(doc.Text)
	if err != nil {
		return sent.Doc{}, err
	}

	sentences, err := p.eng.Parse(ctx, res.Plain)
	if err != nil {
		return sent.Doc{}, &EngineError{Doc: doc.Id, Err: err, RawOffset: -1}
	}
	if err := engine.Validate(res.Plain, sentences); err != nil {
		ee := &EngineError{Doc: doc.Id, Err: fmt.Errorf("invalid engine output: %w", err), RawOffset: -1}
		var ce *engine.ContractError
		if errors.As(err, &ce) && ce.Offset >= 0 {
			ee.RawOffset = res.Offsets.Raw(ce.Offset)
		}
		return sent.Doc{}, ee
	}

	locs, err := align.Align(res.Spans, sentences, len(res.Plain))
	if err != nil {
		return sent.Doc{}, err
	}
	if p.merge {
		for i := range locs {
			locs[i] = align.MergeDuplicates(locs[i])
		}
	}

	doc.Plain = res.Plain
	doc.Hash = Hash(doc.Text)
	doc = Assemble(doc, sentences, locs)

	p.logger.Debug("parsed doc",
		zap.Int("doc", doc.Id),
		zap.String("title", doc.Title),
		zap.Int("sentences", len(doc.Sentences)),
		zap.Int("entities", len(res.Spans)))

	if p.progress != nil {
		p.progress(doc)
	}

	return doc, nil
}

// Assemble builds the Sentences of doc from the engine sentences and the
// entity locations aligned to them. locs has one entry per sentence.
func Assemble(doc sent.Doc, sentences []engine.Sentence, locs [][]sent.EntityLocation) sent.Doc {
	doc.Sentences = make([]sent.Sentence, len(sentences))

	for i, s := range sentences {
		st := sent.Sentence{
			Id:           i,
			DocId:        doc.Id,
			Tokens:       s.Tokens,
			Dependencies: s.Dependencies,
		}
		if i < len(locs) {
			st.Entities = locs[i]
		}
		if n := len(s.Tokens); n > 0 {
			st.Start = s.Tokens[0].Start
			st.End = s.Tokens[n-1].End
		}
		doc.Sentences[i] = st
	}

	return doc
}

// Hash returns the hex blake3 hash of a raw text.
func Hash(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
