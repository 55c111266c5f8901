package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/segparse/match"
	sent "github.com/revelaction/segparse/sentence"
)

// JSONRenderer writes docs and SentenceMatch results as JSON to a writer.
type JSONRenderer struct {
	W io.Writer

	// Indent is used for multi line output if not empty.
	Indent string
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Match serializes sentence match results as a JSON array.
func (r *JSONRenderer) Match(results []*match.SentenceMatch) error {
	if results == nil {
		results = []*match.SentenceMatch{}
	}
	return r.encoder().Encode(results)
}

func (r *JSONRenderer) Doc(doc sent.Doc) error {
	return r.encoder().Encode(doc)
}

func (r *JSONRenderer) Corpus(c *sent.Corpus) error {
	return r.encoder().Encode(c)
}

func (r *JSONRenderer) encoder() *json.Encoder {
	enc := json.NewEncoder(r.W)
	enc.SetEscapeHTML(false)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	return enc
}
