// Package promptdb keeps full prompt transcripts in a local SQLite database
// outside the repository object store. Notes can then stay lean (or strip
// transcripts entirely with ignore_prompts) while blame output still has the
// conversation at hand.
package promptdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/satyamtg/git-ai/internal/authorship"
)

// DB wraps the prompts database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the prompts database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prompt db: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prompts (
			session_hash TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			model TEXT,
			human_author TEXT,
			messages TEXT,
			total_additions INTEGER NOT NULL DEFAULT 0,
			total_deletions INTEGER NOT NULL DEFAULT 0,
			accepted_lines INTEGER NOT NULL DEFAULT 0,
			overriden_lines INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create prompts table: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Save upserts a prompt record under its session hash.
func (d *DB) Save(hash string, rec *authorship.PromptRecord) error {
	messages, err := json.Marshal(rec.Messages)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`
		INSERT INTO prompts
			(session_hash, tool, conversation_id, model, human_author, messages,
			 total_additions, total_deletions, accepted_lines, overriden_lines, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_hash) DO UPDATE SET
			model = excluded.model,
			human_author = excluded.human_author,
			messages = excluded.messages,
			total_additions = excluded.total_additions,
			total_deletions = excluded.total_deletions,
			accepted_lines = excluded.accepted_lines,
			overriden_lines = excluded.overriden_lines,
			updated_at = excluded.updated_at
	`,
		hash, rec.AgentID.Tool, rec.AgentID.ID, rec.AgentID.Model, rec.HumanAuthor,
		string(messages), rec.TotalAdditions, rec.TotalDeletions, rec.AcceptedLines,
		rec.OverridenLines, time.Now().UTC().Format(time.RFC3339))
	return err
}

// SaveAll persists every prompt record of a log.
func (d *DB) SaveAll(log *authorship.Log) error {
	for hash, rec := range log.Metadata.Prompts {
		if err := d.Save(hash, rec); err != nil {
			return err
		}
	}
	return nil
}

// Get loads a prompt record, or nil if the session is unknown.
func (d *DB) Get(hash string) (*authorship.PromptRecord, error) {
	row := d.db.QueryRow(`
		SELECT tool, conversation_id, model, human_author, messages,
		       total_additions, total_deletions, accepted_lines, overriden_lines
		FROM prompts WHERE session_hash = ?
	`, hash)

	var rec authorship.PromptRecord
	var messages string
	err := row.Scan(&rec.AgentID.Tool, &rec.AgentID.ID, &rec.AgentID.Model,
		&rec.HumanAuthor, &messages,
		&rec.TotalAdditions, &rec.TotalDeletions, &rec.AcceptedLines, &rec.OverridenLines)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if messages != "" {
		_ = json.Unmarshal([]byte(messages), &rec.Messages)
	}
	return &rec, nil
}
