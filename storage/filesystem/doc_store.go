package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sent "github.com/revelaction/segparse/sentence"
	"github.com/revelaction/segparse/storage"
)

// DocStore keeps one JSON file per doc in a directory. Docs are loaded in
// memory on first use; their ids are the positions of the files in name
// order.
type DocStore struct {
	docDir string
	names  []string

	// In-memory cache
	docs   []sent.Doc
	loaded bool
}

var (
	_ storage.DocRepository = (*DocStore)(nil)
	_ storage.Preloader     = (*DocStore)(nil)
)

// NewDocStore creates a filesystem document store over docDir, creating the
// directory if needed.
func NewDocStore(docDir string) (*DocStore, error) {
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return nil, err
	}

	files, err := os.ReadDir(docDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".json" {
			names = append(names, file.Name())
		}
	}

	return &DocStore{
		docDir: docDir,
		names:  names,
	}, nil
}

// Preload loads all docs into memory.
// The callback is called for each file loaded (current, total, name).
func (h *DocStore) Preload(cb func(current, total int, name string)) error {
	if h.loaded {
		return nil
	}

	docs := make([]sent.Doc, 0, len(h.names))
	total := len(h.names)
	for i, name := range h.names {
		if cb != nil {
			cb(i+1, total, name)
		}

		doc, err := ReadDoc(filepath.Join(h.docDir, name))
		if err != nil {
			return err
		}

		doc.Id = i
		for j := range doc.Sentences {
			doc.Sentences[j].DocId = i
			doc.Sentences[j].Id = j
		}
		docs = append(docs, doc)
	}

	h.docs = docs
	h.loaded = true
	return nil
}

func (h *DocStore) List(labelMatch string) ([]sent.Doc, error) {
	if err := h.Preload(nil); err != nil {
		return nil, err
	}

	var docs []sent.Doc
	for _, d := range h.docs {
		if labelMatch != "" && !hasLabel(d.Labels, labelMatch) {
			continue
		}
		docs = append(docs, sent.Doc{Id: d.Id, Title: d.Title, Labels: d.Labels, Hash: d.Hash})
	}
	return docs, nil
}

func (h *DocStore) Read(id int) (sent.Doc, error) {
	if err := h.Preload(nil); err != nil {
		return sent.Doc{}, err
	}

	if id < 0 || id >= len(h.docs) {
		return sent.Doc{}, fmt.Errorf("%w: %d", storage.ErrNotFound, id)
	}
	return h.docs[id], nil
}

// FindCandidates scans the sentences in memory. The cursor is the position
// of the last returned sentence over all docs, starting at 1.
func (h *DocStore) FindCandidates(lemmas []string, after storage.Cursor, limit int, onCandidate func(sent.Sentence) error) (storage.Cursor, error) {
	if len(lemmas) == 0 {
		return after, nil
	}

	return h.scan(after, limit, func(s sent.Sentence) bool {
		have := map[string]bool{}
		for _, t := range s.Tokens {
			have[t.Lemma] = true
		}
		for _, l := range lemmas {
			if !have[l] {
				return false
			}
		}
		return true
	}, onCandidate)
}

func (h *DocStore) FindEntities(entityType, sourceId string, after storage.Cursor, limit int, onCandidate func(sent.Sentence) error) (storage.Cursor, error) {
	return h.scan(after, limit, func(s sent.Sentence) bool {
		for _, el := range s.Entities {
			if el.Entity.Type == entityType && (sourceId == "" || el.Entity.SourceId == sourceId) {
				return true
			}
		}
		return false
	}, onCandidate)
}

func (h *DocStore) scan(after storage.Cursor, limit int, keep func(sent.Sentence) bool, fn func(sent.Sentence) error) (storage.Cursor, error) {
	if err := h.Preload(nil); err != nil {
		return after, err
	}

	var pos storage.Cursor
	found := 0
	for _, d := range h.docs {
		for _, s := range d.Sentences {
			pos++
			if pos <= after || !keep(s) {
				continue
			}

			if err := fn(s); err != nil {
				return after, err
			}
			after = pos

			found++
			if limit > 0 && found == limit {
				return after, nil
			}
		}
	}

	return after, nil
}

func (h *DocStore) Labels(pattern string) ([]string, error) {
	if err := h.Preload(nil); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, d := range h.docs {
		for _, l := range d.Labels {
			if pattern == "" || strings.Contains(l, pattern) {
				seen[l] = true
			}
		}
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels, nil
}

// Write writes the doc as a new JSON file and returns its id.
func (h *DocStore) Write(doc sent.Doc) (int, error) {
	if err := h.Preload(nil); err != nil {
		return 0, err
	}

	if doc.Hash != "" {
		for _, d := range h.docs {
			if d.Hash == doc.Hash {
				return 0, fmt.Errorf("%w: same content as doc %d", storage.ErrDuplicate, d.Id)
			}
		}
	}

	id := len(h.docs)
	doc.Id = id
	doc.Sentences = append([]sent.Sentence(nil), doc.Sentences...)
	for j := range doc.Sentences {
		doc.Sentences[j].DocId = id
		doc.Sentences[j].Id = j
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}

	// zero padded names keep the file order equal to the id order
	name := fmt.Sprintf("%08d.json", id)
	if err := os.WriteFile(filepath.Join(h.docDir, name), data, 0o644); err != nil {
		return 0, err
	}

	h.names = append(h.names, name)
	h.docs = append(h.docs, doc)
	return id, nil
}

// ReadDoc reads a Doc JSON from the given path and unmarshals it.
func ReadDoc(path string) (sent.Doc, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return sent.Doc{}, fmt.Errorf("IO error: %w", err)
	}

	var doc sent.Doc
	err = json.Unmarshal(f, &doc)
	if err != nil {
		return sent.Doc{}, fmt.Errorf("JSON decoding error in %s: %w", path, err)
	}

	return doc, nil
}

func hasLabel(labels []string, match string) bool {
	for _, l := range labels {
		if strings.Contains(l, match) {
			return true
		}
	}
	return false
}
