package stat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sent "github.com/revelaction/segparse/sentence"
)

func sentence(n int, entities ...sent.Entity) sent.Sentence {
	s := sent.Sentence{Tokens: make([]sent.Token, n)}
	for _, e := range entities {
		s.Entities = append(s.Entities, sent.EntityLocation{Entity: e, Indices: []int{0}})
	}
	return s
}

func TestAggregate(t *testing.T) {
	drug1 := sent.Entity{Type: "drug", SourceId: "1"}
	drug2 := sent.Entity{Type: "drug", SourceId: "2"}
	disease := sent.Entity{Type: "disease", SourceId: "9"}

	h := NewHandler()
	h.Aggregate(sent.Doc{Sentences: []sent.Sentence{sentence(4, drug1, disease), sentence(2)}})
	h.Aggregate(sent.Doc{Sentences: []sent.Sentence{sentence(4, drug1, drug2)}})

	s := h.Get()
	assert.Equal(t, 2, s.NumDocs)
	assert.Equal(t, 3, s.NumSentences)
	assert.Equal(t, 10, s.NumTokens)
	assert.InDelta(t, 3.333, s.TokensPerSentenceMean, 0.001)
	assert.Equal(t, map[int]int{2: 1, 4: 2}, s.TokensPerSentenceDis)
	assert.Equal(t, []int{2, 4}, s.Lengths())

	assert.Equal(t, 4, s.NumEntities)
	assert.Equal(t, map[string]int{"drug": 3, "disease": 1}, s.EntitiesPerType)
	assert.Equal(t, map[string]int{"drug": 2, "disease": 1}, s.SourceIdsPerType)
	assert.Equal(t, []string{"disease", "drug"}, s.Types())
}

func TestAggregateEmptyDoc(t *testing.T) {
	h := NewHandler()
	h.Aggregate(sent.Doc{})

	s := h.Get()
	assert.Equal(t, 1, s.NumDocs)
	assert.Zero(t, s.NumSentences)
	assert.Zero(t, s.TokensPerSentenceMean)
	assert.Empty(t, s.Types())
}
