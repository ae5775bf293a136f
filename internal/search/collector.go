package search

import "path/filepath"

// collector accumulates matches for a single search. Container paths are
// remembered so an archive is reported at most once.
type collector struct {
	records    []MatchRecord
	containers map[string]struct{}
}

func newCollector() *collector {
	return &collector{containers: make(map[string]struct{})}
}

func containerKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (c *collector) hasContainer(path string) bool {
	_, ok := c.containers[containerKey(path)]
	return ok
}

// addContainer appends an archive record unless that container was already
// reported. It returns whether the record was added.
func (c *collector) addContainer(rec MatchRecord) bool {
	key := containerKey(rec.ContainerPath)
	if _, ok := c.containers[key]; ok {
		return false
	}
	c.containers[key] = struct{}{}
	c.records = append(c.records, rec)
	return true
}

func (c *collector) addFile(rec MatchRecord) {
	c.records = append(c.records, rec)
}

// results returns the matches in the order they were found. The slice is
// non-nil so an empty successful search is distinguishable from a
// cancelled one.
func (c *collector) results() []MatchRecord {
	out := make([]MatchRecord, len(c.records))
	copy(out, c.records)
	return out
}
