package align

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelaction/segparse/engine"
	"github.com/revelaction/segparse/markup"
	sent "github.com/revelaction/segparse/sentence"
)

// whitespaceSentences splits text in whitespace tokens and starts a new
// sentence after every token ending in '.'.
func whitespaceSentences(text string) []engine.Sentence {
	var sentences []engine.Sentence
	var cur engine.Sentence

	pos := 0
	for _, w := range strings.Fields(text) {
		start := strings.Index(text[pos:], w) + pos
		pos = start + len(w)
		cur.Tokens = append(cur.Tokens, sent.Token{
			Index: len(cur.Tokens),
			Text:  w,
			Lemma: w,
			Start: start,
			End:   pos,
		})
		if strings.HasSuffix(w, ".") {
			sentences = append(sentences, cur)
			cur = engine.Sentence{}
		}
	}
	if len(cur.Tokens) > 0 {
		sentences = append(sentences, cur)
	}
	return sentences
}

func strip(t *testing.T, raw string) markup.Result {
	t.Helper()
	res, err := markup.Strip(raw)
	require.NoError(t, err)
	return res
}

func TestAlignDuplicateIds(t *testing.T) {
	res := strip(t, `<drug id="1">Erlotinib</drug> is a common treatment for <cancer id="2">lung</cancer> and unknown <cancer id="2">cancers</cancer>`)
	sentences := whitespaceSentences(res.Plain)
	require.Len(t, sentences, 1)

	locs, err := Align(res.Spans, sentences, len(res.Plain))
	require.NoError(t, err)
	require.Len(t, locs, 1)
	require.Len(t, locs[0], 3)

	assert.Equal(t, "drug", locs[0][0].Entity.Type)
	assert.Equal(t, "1", locs[0][0].Entity.SourceId)
	assert.Equal(t, []int{0}, locs[0][0].Indices)

	assert.Equal(t, "cancer", locs[0][1].Entity.Type)
	assert.Equal(t, "2", locs[0][1].Entity.SourceId)
	assert.Equal(t, []int{6}, locs[0][1].Indices)

	assert.Equal(t, "cancer", locs[0][2].Entity.Type)
	assert.Equal(t, "2", locs[0][2].Entity.SourceId)
	assert.Equal(t, []int{9}, locs[0][2].Indices)
}

func TestAlignTwoSentencesLocalIndices(t *testing.T) {
	res := strip(t, `<drug id="1">Erlotinib</drug> is a common treatment for <cancer id="2">NSCLC</cancer>. <drug id="3">Aspirin</drug> is the main cause of <disease id="4">boneitis</disease>.`)
	sentences := whitespaceSentences(res.Plain)
	require.Len(t, sentences, 2)

	locs, err := Align(res.Spans, sentences, len(res.Plain))
	require.NoError(t, err)

	require.Len(t, locs[0], 2)
	assert.Equal(t, []int{0}, locs[0][0].Indices)
	assert.Equal(t, []int{6}, locs[0][1].Indices)

	require.Len(t, locs[1], 2)
	assert.Equal(t, "3", locs[1][0].Entity.SourceId)
	assert.Equal(t, []int{0}, locs[1][0].Indices)
	assert.Equal(t, "disease", locs[1][1].Entity.Type)
	assert.Equal(t, []int{6}, locs[1][1].Indices)
}

func TestAlignMultiTokenAndPartialOverlap(t *testing.T) {
	res := strip(t, `the <cancer id="1">non small cell</cancer> lung and Erl<drug id="2">otini</drug>b`)
	sentences := whitespaceSentences(res.Plain)

	locs, err := Align(res.Spans, sentences, len(res.Plain))
	require.NoError(t, err)
	require.Len(t, locs[0], 2)

	assert.Equal(t, []int{1, 2, 3}, locs[0][0].Indices)
	// any overlap with a token counts
	assert.Equal(t, []int{6}, locs[0][1].Indices)
}

func TestAlignNoSpans(t *testing.T) {
	sentences := whitespaceSentences("One. Two.")
	locs, err := Align(nil, sentences, 9)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Empty(t, locs[0])
	assert.Empty(t, locs[1])
}

func TestAlignErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"crosses sentences", `Erlotinib <x id="1">works. Aspirin</x> too.`},
		{"whitespace only", `Erlotinib<x id="1">  </x>works.`},
		{"empty", `Erlotinib <x id="1"></x>works.`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := strip(t, tc.raw)
			_, err := Align(res.Spans, whitespaceSentences(res.Plain), len(res.Plain))
			require.Error(t, err)

			var aerr *AlignmentError
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, "x", aerr.Entity.Type)
		})
	}
}

func TestAlignManySentences(t *testing.T) {
	single := `<drug id="1">Erlotinib</drug> is a common treatment for lung and unknown cancers.`
	raw := strings.TrimSpace(strings.Repeat(single+" ", 500))

	res := strip(t, raw)
	sentences := whitespaceSentences(res.Plain)
	require.Len(t, sentences, 500)

	locs, err := Align(res.Spans, sentences, len(res.Plain))
	require.NoError(t, err)
	for i := range locs {
		require.Len(t, locs[i], 1)
		assert.Equal(t, []int{0}, locs[i][0].Indices)
	}
}

func TestMergeDuplicates(t *testing.T) {
	locs := []sent.EntityLocation{
		{Entity: sent.Entity{Type: "drug", SourceId: "1", Start: 0, End: 9}, Indices: []int{0}},
		{Entity: sent.Entity{Type: "cancer", SourceId: "2", Start: 36, End: 40}, Indices: []int{6}},
		{Entity: sent.Entity{Type: "cancer", SourceId: "2", Start: 53, End: 60}, Indices: []int{9}},
		{Entity: sent.Entity{Type: "drug", SourceId: "2", Start: 61, End: 62}, Indices: []int{10}},
	}

	merged := MergeDuplicates(locs)
	require.Len(t, merged, 3)
	assert.Equal(t, []int{0}, merged[0].Indices)
	assert.Equal(t, []int{6, 9}, merged[1].Indices)
	assert.Equal(t, 60, merged[1].Entity.End)
	assert.Equal(t, "drug", merged[2].Entity.Type)

	// input untouched
	assert.Equal(t, []int{6}, locs[1].Indices)
}

func TestUnionSorted(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 5, 8}, unionSorted([]int{1, 3, 8}, []int{2, 3, 5}))
	assert.Equal(t, []int{4}, unionSorted(nil, []int{4}))
}
