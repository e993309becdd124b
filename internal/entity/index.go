package entity

import "strings"

// CategoryStats summarizes the entity count for a single category.
type CategoryStats struct {
	Category Category
	Count    int
}

// Index is the in-memory, copy-on-rebuild view over StateStore entities.
// Build returns a new *Index rather than mutating an existing one, so a
// *Index value should always be read through a handle that can be replaced
// atomically by its owner (see engine context).
type Index struct {
	ready         bool
	byNameLower   map[string]Entity
	byAlias       map[string]aliasHit
	all           []Entity
	byCategory    map[Category][]Entity
	pathToTargets map[string]map[string]bool
}

// aliasHit is what byAlias resolves to: the canonical entity plus the exact
// alias string that was matched (its casing may differ from the lookup key).
type aliasHit struct {
	Entity Entity
	Alias  string
}

// Loader is the StateStore read path the index builds itself from. It is a
// narrow interface so tests can supply a fake without a real database.
type Loader interface {
	ListEntities() ([]Entity, error)
}

// Build loads every entity from the store and constructs a ready index. It
// is idempotent in effect: calling it again with unchanged underlying data
// produces an index equal in content to the previous one, so callers that
// only rebuild after a StateStore write never observe a spurious change.
func Build(loader Loader) (*Index, error) {
	entities, err := loader.ListEntities()
	if err != nil {
		return nil, err
	}

	idx := &Index{
		byNameLower:   make(map[string]Entity, len(entities)),
		byAlias:       make(map[string]aliasHit),
		byCategory:    make(map[Category][]Entity),
		pathToTargets: make(map[string]map[string]bool),
	}

	for _, e := range entities {
		if e.NameLower == "" {
			// Corrupted row (missing name_lower): skipped per the scorer's
			// failure semantics, which apply equally at index build time.
			continue
		}
		idx.all = append(idx.all, e)
		idx.byNameLower[e.NameLower] = e
		idx.byCategory[e.Category] = append(idx.byCategory[e.Category], e)

		if e.Path != "" {
			set := idx.pathToTargets[e.Path]
			if set == nil {
				set = make(map[string]bool)
				idx.pathToTargets[e.Path] = set
			}
			set[e.NameLower] = true
		}

		for _, a := range e.Aliases {
			aliasLower := strings.ToLower(a)
			idx.byAlias[aliasLower] = aliasHit{Entity: e, Alias: a}
			if e.Path != "" {
				idx.pathToTargets[e.Path][aliasLower] = true
			}
		}
	}

	idx.ready = true
	return idx, nil
}

// Ready reports whether the index has completed at least one build.
func (idx *Index) Ready() bool {
	return idx != nil && idx.ready
}

// ByNameLower looks up an entity by its lowercase canonical name.
func (idx *Index) ByNameLower(nameLower string) (Entity, bool) {
	if idx == nil {
		return Entity{}, false
	}
	e, ok := idx.byNameLower[strings.ToLower(nameLower)]
	return e, ok
}

// ByAlias resolves a lowercase alias to its owning entity and the original
// alias string that was registered.
func (idx *Index) ByAlias(aliasLower string) (Entity, string, bool) {
	if idx == nil {
		return Entity{}, "", false
	}
	hit, ok := idx.byAlias[strings.ToLower(aliasLower)]
	if !ok {
		return Entity{}, "", false
	}
	return hit.Entity, hit.Alias, true
}

// All returns the flat list of every indexed entity.
func (idx *Index) All() []Entity {
	if idx == nil {
		return nil
	}
	return idx.all
}

// AllByCategory returns entities grouped by category.
func (idx *Index) AllByCategory() map[Category][]Entity {
	if idx == nil {
		return nil
	}
	return idx.byCategory
}

// PathToTargets returns, for a note path, the set of name_lower/alias_lower
// strings the entity at that path is known under.
func (idx *Index) PathToTargets(path string) map[string]bool {
	if idx == nil {
		return nil
	}
	return idx.pathToTargets[path]
}

// Stats returns per-category counts in a fixed display order (technology,
// person, project, organization, location, concept, acronym, other),
// omitting categories with no entities.
func (idx *Index) Stats() []CategoryStats {
	if idx == nil {
		return nil
	}
	order := []Category{
		CategoryTechnology, CategoryPerson, CategoryProject,
		CategoryOrganization, CategoryLocation, CategoryConcept,
		CategoryAcronym, CategoryOther,
	}
	stats := make([]CategoryStats, 0, len(order))
	for _, c := range order {
		if n := len(idx.byCategory[c]); n > 0 {
			stats = append(stats, CategoryStats{Category: c, Count: n})
		}
	}
	return stats
}
