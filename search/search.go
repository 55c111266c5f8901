package search

import (
	"errors"

	"github.com/revelaction/segparse/match"
	sent "github.com/revelaction/segparse/sentence"
	"github.com/revelaction/segparse/storage"
)

// ErrNotIndexable is returned when an expression has neither a plain lemma
// nor an entity item to look up candidates with.
var ErrNotIndexable = errors.New("expression must contain a lemma or an entity item")

// pageSize is the number of candidates fetched per storage call in All.
const pageSize = 500

// Search selects the lookup strategy for finding the sentences that match
// an expression in a document repository.
type Search struct {
	repo  storage.DocReader
	docID *int
}

func New(dr storage.DocReader) *Search {
	return &Search{repo: dr}
}

// WithDocID restricts the search to a single document. The document is read
// whole and no index is used.
func (s *Search) WithDocID(id int) *Search {
	s.docID = &id
	return s
}

// Sentences calls onMatch for the matching sentences among the next limit
// candidates after cursor, and returns the cursor of the last candidate.
// The returned cursor equals the given one when there are no more
// candidates.
func (s *Search) Sentences(expr match.Expr, cursor storage.Cursor, limit int, onMatch func(*match.SentenceMatch) error) (storage.Cursor, error) {
	matcher := match.NewMatcher(expr)

	onCandidate := func(candidate sent.Sentence) error {
		if sm := matcher.MatchSentence(candidate); sm != nil {
			return onMatch(sm)
		}
		return nil
	}

	// Strategy 1: single document
	if s.docID != nil {
		// a whole doc is a single page
		if cursor > 0 {
			return cursor, nil
		}

		doc, err := s.repo.Read(*s.docID)
		if err != nil {
			return cursor, err
		}

		for _, sentence := range doc.Sentences {
			if err := onCandidate(sentence); err != nil {
				return cursor, err
			}
		}
		return 1, nil
	}

	// Strategy 2: entity index. Entity items are more selective than lemmas.
	if item, ok := expr.Entity(); ok {
		entityType, sourceId, _ := item.EntityRef()
		return s.repo.FindEntities(entityType, sourceId, cursor, limit, onCandidate)
	}

	// Strategy 3: lemma index
	lemmas := expr.Lemmas()
	if len(lemmas) == 0 {
		return cursor, ErrNotIndexable
	}

	return s.repo.FindCandidates(lemmas, cursor, limit, onCandidate)
}

// All pages through the candidates until they are exhausted or max matches
// were found. max <= 0 means no maximum.
func (s *Search) All(expr match.Expr, max int, onMatch func(*match.SentenceMatch) error) error {
	found := 0
	errEnough := errors.New("enough")

	cursor := storage.Cursor(0)
	for {
		next, err := s.Sentences(expr, cursor, pageSize, func(sm *match.SentenceMatch) error {
			if err := onMatch(sm); err != nil {
				return err
			}
			found++
			if max > 0 && found >= max {
				return errEnough
			}
			return nil
		})
		if errors.Is(err, errEnough) {
			return nil
		}
		if err != nil {
			return err
		}

		if next == cursor {
			return nil
		}
		cursor = next
	}
}
