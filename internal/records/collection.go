package records

import (
	"maps"
	"slices"
)

// NewCollection returns an empty collection seeded with the given stat
// columns, typically the stats of the player's selected position.
func NewCollection(key Key, columns []string) *Collection {
	return &Collection{
		Key:     key,
		Columns: mergeColumns(nil, columns),
		Records: []MatchRecord{},
	}
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{
		Key:     c.Key,
		Columns: slices.Clone(c.Columns),
		Records: make([]MatchRecord, len(c.Records)),
	}
	for i, r := range c.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// HasColumn reports whether any record carries the stat.
func (c *Collection) HasColumn(stat string) bool {
	if stat == ColumnMinutesPlayed {
		return c.Len() > 0
	}
	for _, r := range c.Records {
		if _, ok := r.Stats[stat]; ok {
			return true
		}
	}
	return false
}

// LastPosition is the position of the most recently inserted record that
// carries one.
func (c *Collection) LastPosition() string {
	for i := c.Len() - 1; i >= 0; i-- {
		if c.Records[i].Position != "" {
			return c.Records[i].Position
		}
	}
	return ""
}

func (c *Collection) inRange(index int) bool {
	return index >= 0 && index < c.Len()
}

func (c *Collection) withAppended(r MatchRecord) *Collection {
	next := c.Clone()
	next.Records = append(next.Records, r)
	next.Columns = mergeColumns(next.Columns, slices.Sorted(maps.Keys(r.Stats)))
	return next
}

func (c *Collection) withReplaced(index int, r MatchRecord) *Collection {
	next := c.Clone()
	next.Records[index] = r
	next.Columns = mergeColumns(next.Columns, slices.Sorted(maps.Keys(r.Stats)))
	return next
}

func (c *Collection) withDeleted(index int) *Collection {
	next := c.Clone()
	next.Records = slices.Delete(next.Records, index, index+1)
	return next
}

// mergeColumns appends the names missing from cols, keeping first-seen order.
func mergeColumns(cols []string, names []string) []string {
	out := slices.Clone(cols)
	if out == nil {
		out = []string{}
	}
	for _, n := range names {
		if n == "" || isSharedColumn(n) || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// columnsOf returns the collection's declared columns plus any stat carried by
// a record but missing from them.
func columnsOf(c *Collection) []string {
	cols := slices.Clone(c.Columns)
	for _, r := range c.Records {
		cols = mergeColumns(cols, slices.Sorted(maps.Keys(r.Stats)))
	}
	return cols
}
