// Package store provides the SQLite-backed StateStore: the single-file
// relational store holding entities, recency, co-occurrence, note-link
// edges, tool invocations, suggestion events, feedback, suppressions,
// memories, mutation hints, engine state, and graph snapshots.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// DB is the StateStore handle: a single SQLite connection plus a write
// mutex, since the store allows one writer at a time with concurrent
// readers under SQLite's own WAL isolation.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// StatePath returns the default StateStore location for a vault:
// <vault>/.flywheel/state.db.
func StatePath(vaultPath string) string {
	return filepath.Join(vaultPath, ".flywheel", "state.db")
}

// Open opens or creates the StateStore for a vault at its default path.
func Open(vaultPath string) (*DB, error) {
	return OpenPath(StatePath(vaultPath))
}

// OpenPath opens or creates the StateStore at an explicit path.
func OpenPath(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory StateStore, used by tests.
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying *sql.DB for components that need direct
// queries (entitygraph's CTE traversal, observability queries).
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Delete removes a vault's StateStore file (and any WAL/SHM siblings).
// The store must already be closed.
func Delete(vaultPath string) error {
	path := StatePath(vaultPath)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (db *DB) migrate() error {
	baseline := []string{
		`CREATE TABLE IF NOT EXISTS schema_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range baseline {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("baseline migration: %w\nSQL: %s", err, stmt)
		}
	}

	current := db.SchemaVersion()
	ladder := []struct {
		version int
		fn      func() error
	}{
		{1, db.migrateV1}, // entity/alias/recency/co-occurrence core tables
		{2, db.migrateV2}, // note_links + note_link_history
		{3, db.migrateV3}, // tool_invocations + suggestion_events + feedback + suppressions
		{4, db.migrateV4}, // memories + mutation_hints + engine_state
		{5, db.migrateV5}, // entity_graph nodes/edges + graph_snapshots
	}
	for _, m := range ladder {
		if current < m.version {
			if err := m.fn(); err != nil {
				return fmt.Errorf("migration v%d: %w", m.version, err)
			}
			if err := db.SetMeta("schema_version", strconv.Itoa(m.version)); err != nil {
				return fmt.Errorf("record migration v%d: %w", m.version, err)
			}
		}
	}
	return nil
}

// migrateV1 creates entities, aliases, recency, and co-occurrence tables.
func (db *DB) migrateV1() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			canonical_name TEXT NOT NULL UNIQUE,
			name_lower TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'other',
			hub_score INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_path ON entities(path)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_category ON entities(category)`,

		`CREATE TABLE IF NOT EXISTS entity_aliases (
			entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
			alias TEXT NOT NULL,
			alias_lower TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (entity_id, alias_lower)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entity_aliases_lower ON entity_aliases(alias_lower)`,

		`CREATE TABLE IF NOT EXISTS entity_recency (
			name_lower TEXT PRIMARY KEY,
			last_mention_epoch_ms INTEGER NOT NULL DEFAULT 0,
			scan_finished_at_epoch_ms INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS cooccurrence_associations (
			name_lower_a TEXT NOT NULL,
			name_lower_b TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (name_lower_a, name_lower_b)
		)`,
		`CREATE TABLE IF NOT EXISTS cooccurrence_document_frequency (
			name_lower TEXT PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cooccurrence_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	return db.execAll(stmts)
}

// migrateV2 creates note_links and note_link_history.
func (db *DB) migrateV2() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS note_links (
			note_path TEXT NOT NULL,
			target TEXT NOT NULL,
			weight REAL NOT NULL DEFAULT 1,
			weight_updated_at INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (note_path, target)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_note_links_target ON note_links(target)`,

		`CREATE TABLE IF NOT EXISTS note_link_history (
			note_path TEXT NOT NULL,
			target TEXT NOT NULL,
			edits_survived INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (note_path, target)
		)`,
	}
	return db.execAll(stmts)
}

// migrateV3 creates tool_invocations, suggestion_events, feedback, and
// suppressions.
func (db *DB) migrateV3() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tool_invocations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tool_name TEXT NOT NULL,
			session_id TEXT NOT NULL,
			note_paths TEXT NOT NULL DEFAULT '[]',
			timestamp_ms INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_invocations_session ON tool_invocations(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_invocations_timestamp ON tool_invocations(timestamp_ms)`,

		`CREATE TABLE IF NOT EXISTS suggestion_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp_ms INTEGER NOT NULL,
			note_path TEXT,
			entity_name TEXT NOT NULL,
			final_score REAL NOT NULL,
			threshold REAL NOT NULL,
			passed INTEGER NOT NULL,
			breakdown TEXT NOT NULL DEFAULT '{}',
			strictness TEXT NOT NULL,
			context_tag TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestion_events_entity ON suggestion_events(entity_name)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestion_events_timestamp ON suggestion_events(timestamp_ms)`,

		`CREATE TABLE IF NOT EXISTS wikilink_applications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			note_path TEXT NOT NULL,
			target TEXT NOT NULL,
			applied_at_ms INTEGER NOT NULL,
			removed_at_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wikilink_applications_note_target ON wikilink_applications(note_path, target)`,

		`CREATE TABLE IF NOT EXISTS wikilink_feedback (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_name TEXT NOT NULL,
			context_tag TEXT NOT NULL DEFAULT '',
			positive INTEGER NOT NULL,
			weight REAL NOT NULL DEFAULT 1,
			recorded_at_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wikilink_feedback_entity_context ON wikilink_feedback(entity_name, context_tag)`,

		`CREATE TABLE IF NOT EXISTS wikilink_suppressions (
			entity_name TEXT NOT NULL,
			context_tag TEXT NOT NULL DEFAULT '',
			suppressed_at_ms INTEGER NOT NULL,
			PRIMARY KEY (entity_name, context_tag)
		)`,
	}
	return db.execAll(stmts)
}

// migrateV4 creates memories, mutation_hints, and engine_state.
func (db *DB) migrateV4() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			memory_type TEXT NOT NULL DEFAULT 'fact',
			confidence REAL NOT NULL DEFAULT 0.5,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			accessed_at INTEGER NOT NULL,
			ttl_days INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS mutation_hints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			path TEXT NOT NULL,
			operation TEXT NOT NULL,
			before_hash TEXT NOT NULL,
			after_hash TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mutation_hints_timestamp ON mutation_hints(timestamp)`,

		`CREATE TABLE IF NOT EXISTS engine_state (
			key TEXT PRIMARY KEY,
			value_blob TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}
	return db.execAll(stmts)
}

// migrateV5 creates the entity graph's nodes/edges and graph_snapshots,
// adapted from the teacher's knowledge-graph migration.
func (db *DB) migrateV5() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entity_graph_nodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			ref TEXT NOT NULL,
			UNIQUE(kind, ref)
		)`,
		`CREATE TABLE IF NOT EXISTS entity_graph_edges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id INTEGER NOT NULL REFERENCES entity_graph_nodes(id) ON DELETE CASCADE,
			target_id INTEGER NOT NULL REFERENCES entity_graph_nodes(id) ON DELETE CASCADE,
			relation TEXT NOT NULL,
			weight REAL NOT NULL DEFAULT 1,
			UNIQUE(source_id, target_id, relation)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entity_graph_edges_source ON entity_graph_edges(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entity_graph_edges_target ON entity_graph_edges(target_id)`,

		`CREATE TABLE IF NOT EXISTS graph_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at INTEGER NOT NULL,
			avg_degree REAL NOT NULL,
			max_degree INTEGER NOT NULL,
			cluster_count INTEGER NOT NULL,
			largest_cluster_size INTEGER NOT NULL,
			top_hubs TEXT NOT NULL DEFAULT '[]'
		)`,
	}
	return db.execAll(stmts)
}

func (db *DB) execAll(stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("%w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

// SchemaVersion returns the current schema version (0 if unset).
func (db *DB) SchemaVersion() int {
	v, ok := db.GetMeta("schema_version")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// GetMeta reads a value from schema_meta. Returns ("", false) if not found.
func (db *DB) GetMeta(key string) (string, bool) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM schema_meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// SetMeta writes a key-value pair to schema_meta.
func (db *DB) SetMeta(key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(
		`INSERT INTO schema_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// hasColumn reports whether a table currently has a column, used by future
// in-place ALTER TABLE migrations the way the teacher's ladder does.
func (db *DB) hasColumn(table, column string) bool {
	rows, err := db.conn.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid      int
			name     string
			colType  string
			notNull  int
			defaultV sql.NullString
			primaryK int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultV, &primaryK); err != nil {
			continue
		}
		if strings.EqualFold(name, column) {
			return true
		}
	}
	return false
}

// IntegrityCheck runs PRAGMA integrity_check and returns an error if
// corruption is detected.
func (db *DB) IntegrityCheck() error {
	var result string
	if err := db.conn.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
