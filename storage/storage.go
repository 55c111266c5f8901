package storage

import (
	"errors"

	sent "github.com/revelaction/segparse/sentence"
)

var (
	// ErrNotFound is returned when a doc id does not exist.
	ErrNotFound = errors.New("doc not found")

	// ErrDuplicate is returned when writing a doc whose content hash is
	// already stored.
	ErrDuplicate = errors.New("doc already stored")
)

// Cursor for paginated sentence queries
type Cursor int64

// DocReader defines read operations for document storage
type DocReader interface {
	// List returns the metadata (Id, Title, Labels, Hash) of documents.
	// If labelMatch is not empty, only documents with at least one label containing the string are returned.
	// Sentences are not loaded.
	List(labelMatch string) ([]sent.Doc, error)

	// Read returns a document by ID
	Read(id int) (sent.Doc, error)

	// FindCandidates calls onCandidate for the sentences containing ALL given
	// lemmas, resuming after the given cursor, at most limit of them
	// (limit <= 0 means all). Returns the new cursor and any error.
	FindCandidates(lemmas []string, after Cursor, limit int, onCandidate func(sent.Sentence) error) (Cursor, error)

	// FindEntities calls onCandidate for the sentences with an entity of the
	// given type and, if sourceId is not empty, that source id.
	FindEntities(entityType, sourceId string, after Cursor, limit int, onCandidate func(sent.Sentence) error) (Cursor, error)

	// Labels returns all unique labels found across all documents, sorted alphabetically.
	// If pattern is not empty, it returns labels that contain the pattern.
	Labels(pattern string) ([]string, error)
}

// DocWriter defines write operations for document storage
type DocWriter interface {
	// Write persists a parsed document and returns its storage id.
	Write(doc sent.Doc) (int, error)
}

// DocRepository combines read and write operations
type DocRepository interface {
	DocReader
	DocWriter
}

// Preloader defines an optional capability for repositories that require
// or support eager loading of data into memory.
type Preloader interface {
	Preload(cb func(current, total int, name string)) error
}
