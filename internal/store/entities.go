package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/flywheel-dev/flywheel/internal/entity"
)

// UpsertEntity inserts or updates an entity by canonical_name, replacing its
// alias list. Returns the assigned row ID.
func (db *DB) UpsertEntity(e entity.Entity) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO entities (canonical_name, name_lower, path, category, hub_score)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(canonical_name) DO UPDATE SET
			path = excluded.path,
			category = excluded.category,
			hub_score = excluded.hub_score
	`, e.CanonicalName, e.NameLower, e.Path, string(e.Category), e.HubScore); err != nil {
		return 0, fmt.Errorf("upsert entity: %w", err)
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM entities WHERE name_lower = ?`, e.NameLower).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup entity id: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM entity_aliases WHERE entity_id = ?`, id); err != nil {
		return 0, fmt.Errorf("clear aliases: %w", err)
	}
	for i, alias := range e.Aliases {
		if _, err := tx.Exec(
			`INSERT INTO entity_aliases (entity_id, alias, alias_lower, position) VALUES (?, ?, ?, ?)`,
			id, alias, strings.ToLower(alias), i,
		); err != nil {
			return 0, fmt.Errorf("insert alias %q: %w", alias, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListEntities implements entity.Loader: it loads every entity with its
// aliases, ordered by insertion position, for an Index rebuild.
func (db *DB) ListEntities() ([]entity.Entity, error) {
	rows, err := db.conn.Query(`SELECT id, canonical_name, name_lower, path, category, hub_score FROM entities`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*entity.Entity)
	var order []int64
	for rows.Next() {
		var (
			id  int64
			cat string
			e   entity.Entity
		)
		if err := rows.Scan(&id, &e.CanonicalName, &e.NameLower, &e.Path, &cat, &e.HubScore); err != nil {
			return nil, err
		}
		e.ID = id
		e.Category = entity.Category(cat)
		byID[id] = &e
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	aliasRows, err := db.conn.Query(`SELECT entity_id, alias FROM entity_aliases ORDER BY entity_id, position`)
	if err != nil {
		return nil, err
	}
	defer aliasRows.Close()
	for aliasRows.Next() {
		var id int64
		var alias string
		if err := aliasRows.Scan(&id, &alias); err != nil {
			return nil, err
		}
		if e, ok := byID[id]; ok {
			e.Aliases = append(e.Aliases, alias)
		}
	}
	if err := aliasRows.Err(); err != nil {
		return nil, err
	}

	out := make([]entity.Entity, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// GetEntityByPath returns the entity stored at a note path, if any.
func (db *DB) GetEntityByPath(path string) (entity.Entity, bool, error) {
	var (
		e   entity.Entity
		id  int64
		cat string
	)
	err := db.conn.QueryRow(
		`SELECT id, canonical_name, name_lower, path, category, hub_score FROM entities WHERE path = ?`,
		path,
	).Scan(&id, &e.CanonicalName, &e.NameLower, &e.Path, &cat, &e.HubScore)
	if err == sql.ErrNoRows {
		return entity.Entity{}, false, nil
	}
	if err != nil {
		return entity.Entity{}, false, err
	}
	e.ID = id
	e.Category = entity.Category(cat)
	return e, true, nil
}

// PathsForTarget returns the note paths of every entity whose name_lower or
// any alias_lower equals target, used by EdgeWeightEngine's co-session
// signal (an edge's target resolves to whichever note "is" that entity).
func (db *DB) PathsForTarget(target string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT path FROM entities WHERE path != '' AND (
			name_lower = ?
			OR id IN (SELECT entity_id FROM entity_aliases WHERE alias_lower = ?)
		)
	`, target, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
