package gts

import (
	"sort"
)

// Aggregate dedups search results by location name. A later insert for the
// same name replaces the earlier one.
type Aggregate struct {
	entries map[string]SearchResult
}

func NewAggregate() *Aggregate {
	return &Aggregate{
		entries: make(map[string]SearchResult),
	}
}

func (a *Aggregate) Insert(result SearchResult) {
	if prev, exists := a.entries[result.Name]; exists && prev.Doses != result.Doses {
		Log.Debugf("%s: replacing dose estimate %d with %d", result.Name, prev.Doses, result.Doses)
	}

	a.entries[result.Name] = result
}

func (a *Aggregate) Len() int {
	return len(a.entries)
}

func (a *Aggregate) Get(name string) (SearchResult, bool) {
	result, ok := a.entries[name]
	return result, ok
}

// Values returns all entries sorted by name
func (a *Aggregate) Values() []SearchResult {
	values := make([]SearchResult, 0, len(a.entries))
	for _, result := range a.entries {
		values = append(values, result)
	}

	sort.Slice(values, func(i, j int) bool {
		return values[i].Name < values[j].Name
	})

	return values
}
