package store

// Memory mirrors the data model's Memory entity.
type Memory struct {
	Key        string
	Value      string
	MemoryType string
	Confidence float64
	CreatedAt  int64
	UpdatedAt  int64
	AccessedAt int64
	TTLDays    *int
}

// UpsertMemory inserts or updates a memory, preserving created_at on update.
func (db *DB) UpsertMemory(m Memory) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(`
		INSERT INTO memories (key, value, memory_type, confidence, created_at, updated_at, accessed_at, ttl_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			memory_type = excluded.memory_type,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at,
			accessed_at = excluded.accessed_at,
			ttl_days = excluded.ttl_days
	`, m.Key, m.Value, m.MemoryType, m.Confidence, m.CreatedAt, m.UpdatedAt, m.AccessedAt, m.TTLDays)
	return err
}

// GetMemory reads a memory by key and stamps accessed_at.
func (db *DB) GetMemory(key string, nowMs int64) (Memory, bool, error) {
	var m Memory
	var ttl *int
	err := db.conn.QueryRow(
		`SELECT key, value, memory_type, confidence, created_at, updated_at, accessed_at, ttl_days FROM memories WHERE key = ?`,
		key,
	).Scan(&m.Key, &m.Value, &m.MemoryType, &m.Confidence, &m.CreatedAt, &m.UpdatedAt, &m.AccessedAt, &ttl)
	if err != nil {
		return Memory{}, false, nil
	}
	m.TTLDays = ttl

	db.mu.Lock()
	_, _ = db.conn.Exec(`UPDATE memories SET accessed_at = ? WHERE key = ?`, nowMs, key)
	db.mu.Unlock()

	return m, true, nil
}

// SweepExpiredMemories deletes memories whose ttl_days has elapsed relative
// to nowMs, per the Memory entity's sweep rule.
func (db *DB) SweepExpiredMemories(nowMs int64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	const msPerDay = 24 * 60 * 60 * 1000
	res, err := db.conn.Exec(
		`DELETE FROM memories WHERE ttl_days IS NOT NULL AND (? - created_at) > (ttl_days * ?)`,
		nowMs, msPerDay,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MutationHint mirrors the FIFO-capped mutation hint log.
type MutationHint struct {
	Timestamp  int64
	Path       string
	Operation  string
	BeforeHash string
	AfterHash  string
}

// MaxMutationHints is the FIFO cap for mutation_hints.
const MaxMutationHints = 100

// RecordMutationHint appends a hint and trims the table back to the FIFO
// cap in the same transaction.
func (db *DB) RecordMutationHint(h MutationHint) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO mutation_hints (timestamp, path, operation, before_hash, after_hash) VALUES (?, ?, ?, ?, ?)`,
		h.Timestamp, h.Path, h.Operation, h.BeforeHash, h.AfterHash,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		DELETE FROM mutation_hints WHERE id NOT IN (
			SELECT id FROM mutation_hints ORDER BY timestamp DESC LIMIT ?
		)
	`, MaxMutationHints); err != nil {
		return err
	}

	return tx.Commit()
}

// RecentMutationHints returns hints newest-first.
func (db *DB) RecentMutationHints(limit int) ([]MutationHint, error) {
	rows, err := db.conn.Query(
		`SELECT timestamp, path, operation, before_hash, after_hash FROM mutation_hints ORDER BY timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MutationHint
	for rows.Next() {
		var h MutationHint
		if err := rows.Scan(&h.Timestamp, &h.Path, &h.Operation, &h.BeforeHash, &h.AfterHash); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// SetEngineState writes a typed key-value blob (e.g. the last VCS commit
// tuple) to engine_state.
func (db *DB) SetEngineState(key, valueBlob string, updatedAt int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(`
		INSERT INTO engine_state (key, value_blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_blob = excluded.value_blob, updated_at = excluded.updated_at
	`, key, valueBlob, updatedAt)
	return err
}

// GetEngineState reads a typed key-value blob.
func (db *DB) GetEngineState(key string) (string, bool, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value_blob FROM engine_state WHERE key = ?`, key).Scan(&v)
	if err != nil {
		return "", false, nil
	}
	return v, true, nil
}
