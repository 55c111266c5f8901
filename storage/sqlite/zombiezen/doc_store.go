package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sent "github.com/revelaction/segparse/sentence"
	"github.com/revelaction/segparse/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type DocStore struct {
	pool *sqlitex.Pool
}

var _ storage.DocRepository = (*DocStore)(nil)

func NewDocStore(pool *sqlitex.Pool) *DocStore {
	return &DocStore{pool: pool}
}

func (h *DocStore) Close() error {
	return h.pool.Close()
}

func (h *DocStore) List(labelMatch string) ([]sent.Doc, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	var docs []sent.Doc
	err = sqlitex.Execute(conn, "SELECT id, title, labels, hash FROM docs ORDER BY id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			doc := sent.Doc{
				Id:     stmt.ColumnInt(0),
				Title:  stmt.ColumnText(1),
				Labels: splitLabels(stmt.ColumnText(2)),
				Hash:   stmt.ColumnText(3),
			}
			if labelMatch != "" && !hasLabel(doc.Labels, labelMatch) {
				return nil
			}
			docs = append(docs, doc)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (h *DocStore) Read(id int) (sent.Doc, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return sent.Doc{}, err
	}
	defer h.pool.Put(conn)

	doc := sent.Doc{Id: id}
	found := false

	err = sqlitex.Execute(conn, "SELECT title, labels, hash, text, plain FROM docs WHERE id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			doc.Title = stmt.ColumnText(0)
			doc.Labels = splitLabels(stmt.ColumnText(1))
			doc.Hash = stmt.ColumnText(2)
			doc.Text = stmt.ColumnText(3)
			doc.Plain = stmt.ColumnText(4)
			return nil
		},
	})
	if err != nil {
		return sent.Doc{}, err
	}
	if !found {
		return sent.Doc{}, fmt.Errorf("%w: %d", storage.ErrNotFound, id)
	}

	err = sqlitex.Execute(conn, "SELECT data FROM sentences WHERE doc_id = ? ORDER BY idx", &sqlitex.ExecOptions{
		Args: []interface{}{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var s sent.Sentence
			if err := json.Unmarshal([]byte(stmt.ColumnText(0)), &s); err != nil {
				return err
			}
			doc.Sentences = append(doc.Sentences, s)
			return nil
		},
	})
	if err != nil {
		return sent.Doc{}, err
	}

	return doc, nil
}

func (h *DocStore) FindCandidates(lemmas []string, after storage.Cursor, limit int, onCandidate func(sent.Sentence) error) (storage.Cursor, error) {
	if len(lemmas) == 0 {
		return after, nil
	}

	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return after, err
	}
	defer h.pool.Put(conn)

	// negative LIMIT is no limit in sqlite
	if limit <= 0 {
		limit = -1
	}

	// Build query dynamically based on number of lemmas.
	// We use INTERSECT to ensure that we only get sentence_rowids that contain ALL lemmas.
	// Note: INTERSECT also guarantees that the resulting set of rowIDs is unique.
	var queryBuilder strings.Builder
	var args []interface{}

	for i, lemma := range lemmas {
		if i > 0 {
			queryBuilder.WriteString(" INTERSECT ")
		}
		queryBuilder.WriteString("SELECT sentence_rowid FROM sentence_lemmas WHERE lemma = ? AND sentence_rowid > ?")
		args = append(args, lemma, after)
	}
	queryBuilder.WriteString(" ORDER BY 1 LIMIT ?")
	args = append(args, limit)

	rowIDs, err := queryRowIDs(conn, queryBuilder.String(), args)
	if err != nil {
		return after, err
	}

	return sentencesForRows(conn, rowIDs, after, onCandidate)
}

func (h *DocStore) FindEntities(entityType, sourceId string, after storage.Cursor, limit int, onCandidate func(sent.Sentence) error) (storage.Cursor, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return after, err
	}
	defer h.pool.Put(conn)

	// negative LIMIT is no limit in sqlite
	if limit <= 0 {
		limit = -1
	}

	query := "SELECT DISTINCT sentence_rowid FROM sentence_entities WHERE type = ? AND sentence_rowid > ? ORDER BY 1 LIMIT ?"
	args := []interface{}{entityType, after, limit}
	if sourceId != "" {
		query = "SELECT sentence_rowid FROM sentence_entities WHERE type = ? AND source_id = ? AND sentence_rowid > ? ORDER BY 1 LIMIT ?"
		args = []interface{}{entityType, sourceId, after, limit}
	}

	rowIDs, err := queryRowIDs(conn, query, args)
	if err != nil {
		return after, err
	}

	return sentencesForRows(conn, rowIDs, after, onCandidate)
}

func queryRowIDs(conn *sqlite.Conn, query string, args []interface{}) ([]int64, error) {
	var ids []int64
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, stmt.ColumnInt64(0))
			return nil
		},
	})
	return ids, err
}

// sentencesForRows calls fn for the sentences of the given rowids in rowid
// order and returns the largest rowid seen as the new cursor.
func sentencesForRows(conn *sqlite.Conn, rowIDs []int64, after storage.Cursor, fn func(sent.Sentence) error) (storage.Cursor, error) {
	if len(rowIDs) == 0 {
		return after, nil
	}

	idStrings := make([]string, len(rowIDs))
	for i, id := range rowIDs {
		idStrings[i] = strconv.FormatInt(id, 10)
	}
	query := fmt.Sprintf("SELECT rowid, data FROM sentences WHERE rowid IN (%s) ORDER BY rowid", strings.Join(idStrings, ","))

	newCursor := after
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rowID := stmt.ColumnInt64(0)
			if storage.Cursor(rowID) > newCursor {
				newCursor = storage.Cursor(rowID)
			}

			var s sent.Sentence
			if err := json.Unmarshal([]byte(stmt.ColumnText(1)), &s); err != nil {
				return err
			}
			return fn(s)
		},
	})
	if err != nil {
		return after, err
	}

	return newCursor, nil
}

func (h *DocStore) Labels(pattern string) ([]string, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	seen := map[string]bool{}
	err = sqlitex.Execute(conn, "SELECT labels FROM docs WHERE labels != ''", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			for _, l := range splitLabels(stmt.ColumnText(0)) {
				if pattern == "" || strings.Contains(l, pattern) {
					seen[l] = true
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels, nil
}

// Write stores the doc, its sentences and their lemma and entity index
// rows in one transaction. A doc with an already stored hash is rejected
// with storage.ErrDuplicate.
func (h *DocStore) Write(doc sent.Doc) (id int, err error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return 0, err
	}
	defer h.pool.Put(conn)

	// Start Transaction
	defer sqlitex.Save(conn)(&err)

	var hash interface{}
	if doc.Hash != "" {
		hash = doc.Hash

		existing := -1
		err = sqlitex.Execute(conn, "SELECT id FROM docs WHERE hash = ?", &sqlitex.ExecOptions{
			Args: []interface{}{doc.Hash},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				existing = stmt.ColumnInt(0)
				return nil
			},
		})
		if err != nil {
			return 0, err
		}
		if existing >= 0 {
			return 0, fmt.Errorf("%w: same content as doc %d", storage.ErrDuplicate, existing)
		}
	}

	labels := strings.Join(doc.Labels, ",")
	err = sqlitex.Execute(conn, "INSERT INTO docs (title, labels, hash, text, plain) VALUES (?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{doc.Title, labels, hash, doc.Text, doc.Plain},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert doc: %w", err)
	}
	docID := conn.LastInsertRowID()

	for i, sentence := range doc.Sentences {
		sentence.DocId = int(docID)
		sentence.Id = i

		data, marshalErr := json.Marshal(sentence)
		if marshalErr != nil {
			return 0, marshalErr
		}

		err = sqlitex.Execute(conn, "INSERT INTO sentences (doc_id, idx, data) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{docID, i, string(data)},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to insert sentence: %w", err)
		}
		sentRowID := conn.LastInsertRowID()

		for _, token := range sentence.Tokens {
			if token.Lemma == "" {
				continue
			}
			err = sqlitex.Execute(conn, "INSERT OR IGNORE INTO sentence_lemmas (lemma, sentence_rowid) VALUES (?, ?)", &sqlitex.ExecOptions{
				Args: []interface{}{token.Lemma, sentRowID},
			})
			if err != nil {
				return 0, fmt.Errorf("failed to insert lemma: %w", err)
			}
		}

		for _, el := range sentence.Entities {
			err = sqlitex.Execute(conn, "INSERT OR IGNORE INTO sentence_entities (type, source_id, sentence_rowid) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
				Args: []interface{}{el.Entity.Type, el.Entity.SourceId, sentRowID},
			})
			if err != nil {
				return 0, fmt.Errorf("failed to insert entity: %w", err)
			}
		}
	}

	return int(docID), nil
}

func splitLabels(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func hasLabel(labels []string, match string) bool {
	for _, l := range labels {
		if strings.Contains(l, match) {
			return true
		}
	}
	return false
}
