// Package store persists annotated corpora in a SQLite database: the full
// CoNLL-U serialization as the document of record, plus sentence and word
// tables for lookup without reparsing. Documents are content-addressed by
// the BLAKE3 hash of their serialization, so re-ingesting identical data
// is a no-op.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"

	uderrors "github.com/k-sap/udgo/core/errors"
	"github.com/k-sap/udgo/core/sqlite"
	"github.com/k-sap/udgo/core/ud"
	"github.com/k-sap/udgo/internal/formats/conllu"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	sentences  INTEGER NOT NULL,
	words      INTEGER NOT NULL,
	content    BLOB NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sentences (
	doc_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	sent_id  TEXT NOT NULL,
	text     TEXT NOT NULL,
	PRIMARY KEY (doc_id, position)
);
CREATE TABLE IF NOT EXISTS words (
	doc_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	ord      INTEGER NOT NULL,
	form     TEXT NOT NULL,
	lemma    TEXT NOT NULL,
	upos     TEXT NOT NULL,
	deprel   TEXT NOT NULL,
	PRIMARY KEY (doc_id, position, ord)
);
CREATE INDEX IF NOT EXISTS idx_words_form ON words(form);
CREATE INDEX IF NOT EXISTS idx_words_lemma ON words(lemma);
`

// Store is an open corpus database.
type Store struct {
	db *sql.DB
}

// DocumentInfo describes one stored document.
type DocumentInfo struct {
	ID        string
	Name      string
	Sentences int
	Words     int
	CreatedAt string
}

// WordHit is one word-table match with its sentence context.
type WordHit struct {
	DocID  string
	SentID string
	Ord    int
	Form   string
	Lemma  string
	UPos   string
	Deprel string
	Text   string
}

// Open opens (creating if needed) a corpus database at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, uderrors.Wrapf(err, "open store %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, uderrors.Wrap(err, "initialize store schema")
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing corpus database without write access,
// for listing, export, and search.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, uderrors.Wrapf(err, "open store %s", path)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ingest stores the document under the given display name and returns its
// content hash. A document with identical serialized content keeps its
// first record; the name is not updated.
func (s *Store) Ingest(ctx context.Context, doc *ud.Document, name string) (string, error) {
	var buf bytes.Buffer
	if err := (conllu.Handler{}).Write(&buf, doc); err != nil {
		return "", uderrors.Wrap(err, "serialize document")
	}
	sum := blake3.Sum256(buf.Bytes())
	id := hex.EncodeToString(sum[:])

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return "", uderrors.Wrap(err, "check document")
	}
	if exists > 0 {
		return id, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", uderrors.Wrap(err, "begin ingest")
	}
	defer tx.Rollback()

	trees := doc.Trees()
	words := 0
	for _, t := range trees {
		words += t.Len()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, name, sentences, words, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, len(trees), words, buf.Bytes(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", uderrors.Wrap(err, "insert document")
	}

	for pos, tree := range trees {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sentences (doc_id, position, sent_id, text)
			 VALUES (?, ?, ?, ?)`,
			id, pos, tree.SentID(), tree.Text())
		if err != nil {
			return "", uderrors.Wrap(err, "insert sentence")
		}
		for _, n := range tree.Descendants() {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO words (doc_id, position, ord, form, lemma, upos, deprel)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, pos, n.Ord(), n.Form, n.Lemma, n.UPos, n.Deprel)
			if err != nil {
				return "", uderrors.Wrap(err, "insert word")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", uderrors.Wrap(err, "commit ingest")
	}
	return id, nil
}

// List returns all stored documents, newest first.
func (s *Store) List(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, sentences, words, created_at
		 FROM documents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, uderrors.Wrap(err, "list documents")
	}
	defer rows.Close()

	var out []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Sentences,
			&info.Words, &info.CreatedAt); err != nil {
			return nil, uderrors.Wrap(err, "scan document")
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Load reparses a stored document from its serialized content. The id may
// be abbreviated to a unique prefix.
func (s *Store) Load(ctx context.Context, id string) (*ud.Document, error) {
	var fullID string
	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content FROM documents WHERE id LIKE ? || '%'
		 ORDER BY id LIMIT 1`, id).Scan(&fullID, &content)
	if err == sql.ErrNoRows {
		return nil, uderrors.NewNotFound("document", id)
	}
	if err != nil {
		return nil, uderrors.Wrap(err, "load document")
	}
	doc, err := (conllu.Handler{}).Read(bytes.NewReader(content), fullID)
	if err != nil {
		return nil, err
	}
	doc.Meta["source"] = "store:" + fullID
	doc.Meta["format"] = "conllu"
	return doc, nil
}

// SearchForm returns all words with the given surface form.
func (s *Store) SearchForm(ctx context.Context, form string) ([]WordHit, error) {
	return s.search(ctx, "form", form)
}

// SearchLemma returns all words with the given lemma.
func (s *Store) SearchLemma(ctx context.Context, lemma string) ([]WordHit, error) {
	return s.search(ctx, "lemma", lemma)
}

func (s *Store) search(ctx context.Context, column, value string) ([]WordHit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.doc_id, s.sent_id, w.ord, w.form, w.lemma, w.upos, w.deprel, s.text
		 FROM words w JOIN sentences s ON s.doc_id = w.doc_id AND s.position = w.position
		 WHERE w.`+column+` = ?
		 ORDER BY w.doc_id, w.position, w.ord`, value)
	if err != nil {
		return nil, uderrors.Wrapf(err, "search by %s", column)
	}
	defer rows.Close()

	var out []WordHit
	for rows.Next() {
		var h WordHit
		if err := rows.Scan(&h.DocID, &h.SentID, &h.Ord, &h.Form,
			&h.Lemma, &h.UPos, &h.Deprel, &h.Text); err != nil {
			return nil, uderrors.Wrap(err, "scan word")
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
