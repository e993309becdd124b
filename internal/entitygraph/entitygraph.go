// Package entitygraph stores entity co-mention edges and computes
// GraphSnapshot statistics over them. It is adapted from the teacher's
// internal/graph node/edge/CTE-traversal design, repurposed from
// note/decision/session nodes onto entity/note nodes and
// mentions/co_occurs_with relationships.
package entitygraph

import (
	"database/sql"
	"fmt"
	"sort"
)

// Node kinds.
const (
	KindEntity = "entity"
	KindNote   = "note"
)

// Relations.
const (
	RelMentions     = "mentions"
	RelCoOccursWith = "co_occurs_with"
)

// Node is a single entity_graph_nodes row.
type Node struct {
	ID   int64
	Kind string
	Ref  string // entity name_lower or note path
}

// Edge is a single entity_graph_edges row.
type Edge struct {
	ID       int64
	SourceID int64
	TargetID int64
	Relation string
	Weight   float64
}

// DB wraps a *sql.DB for graph operations. It does not own the connection —
// the caller (store.DB) owns it.
type DB struct {
	conn *sql.DB
}

// NewDB wraps an existing connection for entity-graph queries.
func NewDB(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// UpsertNode inserts or finds a node by (kind, ref).
func (db *DB) UpsertNode(kind, ref string) (int64, error) {
	if _, err := db.conn.Exec(
		`INSERT INTO entity_graph_nodes (kind, ref) VALUES (?, ?) ON CONFLICT(kind, ref) DO NOTHING`,
		kind, ref,
	); err != nil {
		return 0, fmt.Errorf("upsert node: %w", err)
	}
	var id int64
	if err := db.conn.QueryRow(
		`SELECT id FROM entity_graph_nodes WHERE kind = ? AND ref = ?`, kind, ref,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("find node: %w", err)
	}
	return id, nil
}

// UpsertEdge inserts or updates an edge by (source, target, relation),
// accumulating weight on conflict.
func (db *DB) UpsertEdge(sourceID, targetID int64, relation string, weight float64) error {
	_, err := db.conn.Exec(`
		INSERT INTO entity_graph_edges (source_id, target_id, relation, weight)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, relation) DO UPDATE SET weight = entity_graph_edges.weight + excluded.weight
	`, sourceID, targetID, relation, weight)
	if err != nil {
		return fmt.Errorf("upsert edge: %w", err)
	}
	return nil
}

// GetNeighbors returns the node IDs adjacent to nodeID in either direction,
// optionally filtered by relation.
func (db *DB) GetNeighbors(nodeID int64, relation string) ([]int64, error) {
	query := `
		SELECT target_id FROM entity_graph_edges WHERE source_id = ?
		UNION
		SELECT source_id FROM entity_graph_edges WHERE target_id = ?
	`
	args := []any{nodeID, nodeID}
	if relation != "" {
		query = `
			SELECT target_id FROM entity_graph_edges WHERE source_id = ? AND relation = ?
			UNION
			SELECT source_id FROM entity_graph_edges WHERE target_id = ? AND relation = ?
		`
		args = []any{nodeID, relation, nodeID, relation}
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if id != nodeID {
			out = append(out, id)
		}
	}
	return out, rows.Err()
}

// GetSubgraph returns every node reachable from nodeID within maxDepth hops,
// using a recursive CTE over both edge directions.
func (db *DB) GetSubgraph(nodeID int64, maxDepth int) ([]Node, []Edge, error) {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if maxDepth > 10 {
		maxDepth = 10
	}

	rows, err := db.conn.Query(`
		WITH RECURSIVE reach(id, depth) AS (
			SELECT ?, 0
			UNION
			SELECT e.target_id, r.depth + 1 FROM entity_graph_edges e
				JOIN reach r ON e.source_id = r.id WHERE r.depth < ?
			UNION
			SELECT e.source_id, r.depth + 1 FROM entity_graph_edges e
				JOIN reach r ON e.target_id = r.id WHERE r.depth < ?
		)
		SELECT DISTINCT n.id, n.kind, n.ref FROM entity_graph_nodes n
		JOIN reach r ON r.id = n.id
	`, nodeID, maxDepth, maxDepth)
	if err != nil {
		return nil, nil, fmt.Errorf("subgraph nodes: %w", err)
	}
	defer rows.Close()

	var nodes []Node
	ids := make(map[int64]bool)
	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Kind, &n.Ref); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
		ids[n.ID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	edgeRows, err := db.conn.Query(`SELECT id, source_id, target_id, relation, weight FROM entity_graph_edges`)
	if err != nil {
		return nil, nil, fmt.Errorf("subgraph edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []Edge
	for edgeRows.Next() {
		var e Edge
		if err := edgeRows.Scan(&e.ID, &e.SourceID, &e.TargetID, &e.Relation, &e.Weight); err != nil {
			return nil, nil, err
		}
		if ids[e.SourceID] && ids[e.TargetID] {
			edges = append(edges, e)
		}
	}
	return nodes, edges, edgeRows.Err()
}

// Stats is the computed set the Snapshot builder turns into a GraphSnapshot.
type Stats struct {
	AvgDegree          float64
	MaxDegree          int
	ClusterCount       int
	LargestClusterSize int
	TopHubs            []HubEntry
}

// HubEntry is one entry in the top_hubs ordered list.
type HubEntry struct {
	Ref    string
	Degree int
}

// ComputeStats loads the full entity-graph adjacency and derives
// avg/max degree, connected-component (cluster) count and sizes, and the
// top-10 hubs by degree.
func (db *DB) ComputeStats() (Stats, error) {
	nodeRows, err := db.conn.Query(`SELECT id, ref FROM entity_graph_nodes`)
	if err != nil {
		return Stats{}, err
	}
	defer nodeRows.Close()

	refByID := make(map[int64]string)
	for nodeRows.Next() {
		var id int64
		var ref string
		if err := nodeRows.Scan(&id, &ref); err != nil {
			return Stats{}, err
		}
		refByID[id] = ref
	}
	if err := nodeRows.Err(); err != nil {
		return Stats{}, err
	}

	adj := make(map[int64]map[int64]bool, len(refByID))
	for id := range refByID {
		adj[id] = make(map[int64]bool)
	}

	edgeRows, err := db.conn.Query(`SELECT source_id, target_id FROM entity_graph_edges`)
	if err != nil {
		return Stats{}, err
	}
	defer edgeRows.Close()
	edgeCount := 0
	for edgeRows.Next() {
		var s, t int64
		if err := edgeRows.Scan(&s, &t); err != nil {
			return Stats{}, err
		}
		if s == t {
			continue
		}
		adj[s][t] = true
		adj[t][s] = true
		edgeCount++
	}
	if err := edgeRows.Err(); err != nil {
		return Stats{}, err
	}

	nodeCount := len(refByID)
	var stats Stats
	if nodeCount > 0 {
		stats.AvgDegree = 2 * float64(edgeCount) / float64(nodeCount)
	}
	for id, neighbors := range adj {
		deg := len(neighbors)
		if deg > stats.MaxDegree {
			stats.MaxDegree = deg
		}
		stats.TopHubs = append(stats.TopHubs, HubEntry{Ref: refByID[id], Degree: deg})
	}
	sort.Slice(stats.TopHubs, func(i, j int) bool {
		if stats.TopHubs[i].Degree != stats.TopHubs[j].Degree {
			return stats.TopHubs[i].Degree > stats.TopHubs[j].Degree
		}
		return stats.TopHubs[i].Ref < stats.TopHubs[j].Ref
	})
	if len(stats.TopHubs) > 10 {
		stats.TopHubs = stats.TopHubs[:10]
	}

	visited := make(map[int64]bool, nodeCount)
	for id := range adj {
		if visited[id] {
			continue
		}
		size := bfsComponent(adj, id, visited)
		stats.ClusterCount++
		if size > stats.LargestClusterSize {
			stats.LargestClusterSize = size
		}
	}

	return stats, nil
}

func bfsComponent(adj map[int64]map[int64]bool, start int64, visited map[int64]bool) int {
	queue := []int64{start}
	visited[start] = true
	size := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		size++
		for neighbor := range adj[n] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	return size
}
