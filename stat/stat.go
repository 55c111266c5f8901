package stat

import (
	"sort"

	sent "github.com/revelaction/segparse/sentence"
)

// Handler aggregates the counts of one or more docs.
type Handler struct {
	stats Stats
}

type Stats struct {
	NumDocs               int            `json:"num_docs"`
	NumSentences          int            `json:"num_sentences"`
	NumTokens             int            `json:"num_tokens"`
	TokensPerSentenceMean float64        `json:"tokens_per_sentence_mean"`
	TokensPerSentenceDis  map[int]int    `json:"tokens_per_sentence_dis"`
	NumEntities           int            `json:"num_entities"`
	EntitiesPerType       map[string]int `json:"entities_per_type"`

	// unique source ids per entity type
	SourceIdsPerType map[string]int `json:"source_ids_per_type"`

	sourceIds map[string]map[string]bool
}

func NewHandler() *Handler {
	return &Handler{
		stats: Stats{
			TokensPerSentenceDis: map[int]int{},
			EntitiesPerType:      map[string]int{},
			SourceIdsPerType:     map[string]int{},
			sourceIds:            map[string]map[string]bool{},
		},
	}
}

// Get returns the stats of the docs aggregated so far. The mean is 0 when
// there are no sentences.
func (h *Handler) Get() Stats {
	s := h.stats
	if s.NumSentences > 0 {
		s.TokensPerSentenceMean = float64(s.NumTokens) / float64(s.NumSentences)
	}
	for typ, ids := range s.sourceIds {
		s.SourceIdsPerType[typ] = len(ids)
	}
	return s
}

func (h *Handler) Aggregate(doc sent.Doc) {
	h.stats.NumDocs++
	h.stats.NumSentences += len(doc.Sentences)

	for _, sentence := range doc.Sentences {
		h.stats.NumTokens += len(sentence.Tokens)
		h.stats.TokensPerSentenceDis[len(sentence.Tokens)]++

		for _, el := range sentence.Entities {
			typ := el.Entity.Type
			h.stats.NumEntities++
			h.stats.EntitiesPerType[typ]++

			if h.stats.sourceIds[typ] == nil {
				h.stats.sourceIds[typ] = map[string]bool{}
			}
			h.stats.sourceIds[typ][el.Entity.SourceId] = true
		}
	}
}

// Types returns the entity types seen, sorted.
func (s Stats) Types() []string {
	types := make([]string, 0, len(s.EntitiesPerType))
	for t := range s.EntitiesPerType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Lengths returns the sentence lengths seen, sorted.
func (s Stats) Lengths() []int {
	lengths := make([]int, 0, len(s.TokensPerSentenceDis))
	for l := range s.TokensPerSentenceDis {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	return lengths
}
