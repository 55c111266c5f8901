package match

import (
	"sort"
	"strings"

	sent "github.com/revelaction/segparse/sentence"
)

// Matcher matches sentences (or all sentences of a Doc) against an Expr.
type Matcher struct {
	expr Expr
}

func NewMatcher(expr Expr) *Matcher {
	return &Matcher{expr: expr}
}

func (m *Matcher) Expr() Expr {
	return m.expr
}

// chain is an ordered list of token indices matched by consecutive chained
// items of an expression.
//
// the expr
//
//	aspirin 3 VERB
//
// matches "Aspirin rarely causes and prevents ulcers" with the chain [0 2]
// (Aspirin, causes). "prevents" is 4 positions away.
type chain []int

// SentenceMatch is a sentence that matched an Expr, with the token indices
// responsible for the match.
type SentenceMatch struct {
	Sentence sent.Sentence `json:"sentence"`

	// Chains holds one entry per match occurrence. Items not chained with
	// Near give one-element chains.
	Chains [][]int `json:"chains"`
}

// Indices returns the ascending, unique indices of all matched tokens.
func (sm *SentenceMatch) Indices() []int {
	seen := map[int]bool{}
	var indices []int
	for _, c := range sm.Chains {
		for _, i := range c {
			if !seen[i] {
				seen[i] = true
				indices = append(indices, i)
			}
		}
	}
	sort.Ints(indices)
	return indices
}

// Tokens returns the matched tokens in sentence order.
func (sm *SentenceMatch) Tokens() []sent.Token {
	var tokens []sent.Token
	for _, i := range sm.Indices() {
		if i < len(sm.Sentence.Tokens) {
			tokens = append(tokens, sm.Sentence.Tokens[i])
		}
	}
	return tokens
}

// Match returns the matches of all sentences of the doc, in sentence order.
func (m *Matcher) Match(doc sent.Doc) []*SentenceMatch {
	var matches []*SentenceMatch
	for _, s := range doc.Sentences {
		if sm := m.MatchSentence(s); sm != nil {
			matches = append(matches, sm)
		}
	}
	return matches
}

// MatchSentence returns nil if the sentence does not match the expression.
//
//   - An item without Near must match at least one token. It starts a new
//     group of chains.
//   - An item with Near extends the chains of the current group with the
//     tokens it matches at most Near positions after the chain end.
//   - A negated lemma without Near requires that no token has the lemma.
//   - A negated lemma with Near drops the chains followed by the lemma
//     within Near positions.
func (m *Matcher) MatchSentence(s sent.Sentence) *SentenceMatch {
	if len(m.expr) == 0 {
		return nil
	}

	entities := entitiesByToken(s)

	var done, current []chain
	for _, item := range m.expr {
		switch {
		case item.Near == 0 && item.negated():
			if !matchNone(s, entities, item) {
				return nil
			}

		case item.Near == 0:
			done = append(done, current...)
			current = matchOne(s, entities, item)

		case item.negated():
			current = dropFollowed(s, entities, current, item)

		default:
			current = matchNear(s, entities, current, item)
		}

		if item.Near > 0 || !item.negated() {
			if len(current) == 0 {
				return nil
			}
		}
	}
	done = append(done, current...)

	sm := &SentenceMatch{Sentence: s}
	for _, c := range done {
		sm.Chains = append(sm.Chains, []int(c))
	}
	return sm
}

func matchOne(s sent.Sentence, entities map[int][]sent.Entity, item Item) []chain {
	var matched []chain
	for _, t := range s.Tokens {
		if isTokenMatch(t, entities[t.Index], item) {
			matched = append(matched, chain{t.Index})
		}
	}
	return matched
}

func matchNone(s sent.Sentence, entities map[int][]sent.Entity, item Item) bool {
	for _, t := range s.Tokens {
		if !isTokenMatch(t, entities[t.Index], item) {
			return false
		}
	}
	return true
}

// window returns the tokens at most near positions after the chain end.
func window(s sent.Sentence, c chain, near int) []sent.Token {
	last := c[len(c)-1]
	end := last + near
	if end > len(s.Tokens)-1 {
		end = len(s.Tokens) - 1
	}
	if last+1 > end {
		return nil
	}
	return s.Tokens[last+1 : end+1]
}

func matchNear(s sent.Sentence, entities map[int][]sent.Entity, previous []chain, item Item) []chain {
	var matched []chain
	for _, c := range previous {
		for _, t := range window(s, c, item.Near) {
			if isTokenMatch(t, entities[t.Index], item) {
				next := make(chain, 0, len(c)+1)
				next = append(next, c...)
				next = append(next, t.Index)
				matched = append(matched, next)
			}
		}
	}
	return matched
}

func dropFollowed(s sent.Sentence, entities map[int][]sent.Entity, previous []chain, item Item) []chain {
	var kept []chain
CHAIN:
	for _, c := range previous {
		for _, t := range window(s, c, item.Near) {
			if !isTokenMatch(t, entities[t.Index], item) {
				continue CHAIN
			}
		}
		kept = append(kept, c)
	}
	return kept
}

func entitiesByToken(s sent.Sentence) map[int][]sent.Entity {
	if len(s.Entities) == 0 {
		return nil
	}

	m := map[int][]sent.Entity{}
	for _, el := range s.Entities {
		for _, i := range el.Indices {
			m[i] = append(m[i], el.Entity)
		}
	}
	return m
}

// isTokenMatch reports whether the token satisfies every condition of the
// item. A negated lemma is satisfied by tokens with a different lemma.
func isTokenMatch(t sent.Token, entities []sent.Entity, item Item) bool {
	if item.Lemma != "" {
		if item.negated() {
			if strings.TrimPrefix(item.Lemma, "!") == t.Lemma {
				return false
			}
		} else {
			isOrValue := false
			for _, orValue := range strings.Split(item.Lemma, "|") {
				if orValue == t.Lemma {
					isOrValue = true
					break
				}
			}

			if !isOrValue {
				return false
			}
		}
	}

	if item.Pos != "" && item.Pos != t.Pos {
		return false
	}

	if entityType, sourceId, ok := item.EntityRef(); ok {
		found := false
		for _, e := range entities {
			if e.Type == entityType && (sourceId == "" || e.SourceId == sourceId) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
