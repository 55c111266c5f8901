// Package align maps entity spans of the plain text onto the tokens of the
// sentences an engine produced for that text.
package align

import (
	"fmt"
	"sort"

	"github.com/revelaction/segparse/engine"
	"github.com/revelaction/segparse/markup"
	sent "github.com/revelaction/segparse/sentence"
)

// AlignmentError reports an entity span that can not be placed on the tokens
// of exactly one sentence.
type AlignmentError struct {
	Entity sent.Entity
	Reason string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment error for %s %q (id %s) at [%d,%d): %s",
		e.Entity.Type, e.Entity.Text, e.Entity.SourceId, e.Entity.Start, e.Entity.End, e.Reason)
}

// Entity converts a markup span to an Entity.
func Entity(sp markup.Span) sent.Entity {
	return sent.Entity{
		Type:     sp.Type,
		SourceId: sp.Id,
		Text:     sp.Text,
		Start:    sp.Start,
		End:      sp.End,
		RawStart: sp.RawStart,
		RawEnd:   sp.RawEnd,
		Attrs:    sp.Attrs,
	}
}

// Align returns, for each sentence, the entity locations of the spans that
// fall in it, in span order.
//
// The sentences partition the text: sentence i covers from the start of its
// first token (0 for the first sentence) up to the start of the next
// sentence (textLen for the last one). A token is covered by a span if their
// byte ranges intersect.
func Align(spans []markup.Span, sentences []engine.Sentence, textLen int) ([][]sent.EntityLocation, error) {
	locs := make([][]sent.EntityLocation, len(sentences))
	if len(spans) == 0 {
		return locs, nil
	}

	bounds := sentenceStarts(sentences)

	for _, sp := range spans {
		ent := Entity(sp)

		if sp.End <= sp.Start {
			return nil, &AlignmentError{Entity: ent, Reason: "empty span"}
		}
		if sp.Start < 0 || sp.End > textLen {
			return nil, &AlignmentError{Entity: ent, Reason: "span outside of text"}
		}

		si := sentenceAt(bounds, sp.Start)
		if last := sentenceAt(bounds, sp.End-1); last != si {
			return nil, &AlignmentError{
				Entity: ent,
				Reason: fmt.Sprintf("span crosses sentence boundary (sentences %d to %d)", si, last),
			}
		}

		indices := coveredTokens(sentences[si].Tokens, sp.Start, sp.End)
		if len(indices) == 0 {
			return nil, &AlignmentError{Entity: ent, Reason: "span covers no token"}
		}

		locs[si] = append(locs[si], sent.EntityLocation{Entity: ent, Indices: indices})
	}

	return locs, nil
}

// sentenceStarts returns the start offset of every sentence, the first one
// forced to 0.
func sentenceStarts(sentences []engine.Sentence) []int {
	starts := make([]int, len(sentences))
	for i, s := range sentences {
		if i > 0 && len(s.Tokens) > 0 {
			starts[i] = s.Tokens[0].Start
		}
	}
	return starts
}

// sentenceAt returns the index of the sentence containing offset p.
func sentenceAt(starts []int, p int) int {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > p }) - 1
	if i < 0 {
		return 0
	}
	return i
}

// coveredTokens returns the ascending indices of the tokens intersecting
// [start,end).
func coveredTokens(tokens []sent.Token, start, end int) []int {
	// first token ending after start
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].End > start })

	var indices []int
	for ; i < len(tokens) && tokens[i].Start < end; i++ {
		indices = append(indices, i)
	}
	return indices
}

// MergeDuplicates merges the locations of entities sharing type and source
// id within one sentence into the first of them, with the union of their
// token indices.
func MergeDuplicates(locs []sent.EntityLocation) []sent.EntityLocation {
	if len(locs) < 2 {
		return locs
	}

	type key struct{ typ, id string }
	pos := map[key]int{}

	merged := make([]sent.EntityLocation, 0, len(locs))
	for _, l := range locs {
		k := key{l.Entity.Type, l.Entity.SourceId}
		i, ok := pos[k]
		if !ok {
			pos[k] = len(merged)
			merged = append(merged, sent.EntityLocation{
				Entity:  l.Entity,
				Indices: append([]int(nil), l.Indices...),
			})
			continue
		}

		m := &merged[i]
		m.Indices = unionSorted(m.Indices, l.Indices)
		if l.Entity.End > m.Entity.End {
			m.Entity.End = l.Entity.End
			m.Entity.RawEnd = l.Entity.RawEnd
		}
	}
	return merged
}

func unionSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
