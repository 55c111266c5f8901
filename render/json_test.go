package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/revelaction/segparse/match"
	sent "github.com/revelaction/segparse/sentence"
)

func TestJSONRendererMatchEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONRenderer(&buf)
	if err := r.Match(nil); err != nil {
		t.Fatalf("render: %v", err)
	}

	var results []*match.SentenceMatch
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if results == nil || len(results) != 0 {
		t.Fatalf("expected an empty array, got %q", buf.String())
	}
}

func TestJSONRendererMatchOneResult(t *testing.T) {
	sm := &match.SentenceMatch{
		Chains: [][]int{{0, 1}},
		Sentence: sent.Sentence{
			Id:    5,
			DocId: 1,
			Tokens: []sent.Token{
				{Index: 0, Lemma: "cat", Text: "cat"},
				{Index: 1, Lemma: "dog", Text: "dog"},
			},
		},
	}

	var buf bytes.Buffer
	r := NewJSONRenderer(&buf)
	if err := r.Match([]*match.SentenceMatch{sm}); err != nil {
		t.Fatalf("render: %v", err)
	}

	var results []match.SentenceMatch
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Sentence.Id != 5 || results[0].Sentence.DocId != 1 {
		t.Errorf("expected sentence 1:5, got %d:%d", results[0].Sentence.DocId, results[0].Sentence.Id)
	}

	if len(results[0].Chains) != 1 || len(results[0].Chains[0]) != 2 {
		t.Fatalf("expected one chain of 2, got %v", results[0].Chains)
	}
}

func TestJSONRendererDoc(t *testing.T) {
	var buf bytes.Buffer
	r := &JSONRenderer{W: &buf, Indent: "  "}
	if err := r.Doc(testDoc()); err != nil {
		t.Fatalf("render: %v", err)
	}

	var doc sent.Doc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if doc.Sentences[0].Entities[1].Entity.SourceId != "4" {
		t.Errorf("entity lost in JSON: %+v", doc.Sentences[0].Entities)
	}

	if !bytes.Contains(buf.Bytes(), []byte("\n  \"id\": 2")) {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}
