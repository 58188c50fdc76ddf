package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Names returns the position names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Positions))
	for _, p := range c.Positions {
		names = append(names, p.Name)
	}
	return names
}

// Has reports whether the position exists.
func (c Catalog) Has(position string) bool {
	return c.index(position) >= 0
}

// Stats returns a copy of the stat names tracked for position.
func (c Catalog) Stats(position string) ([]string, error) {
	i := c.index(position)
	if i < 0 {
		return nil, &UnknownPositionError{Position: position}
	}
	return slices.Clone(c.Positions[i].Stats), nil
}

// Resolve returns position and its stats when it exists, otherwise the first
// catalog entry. An empty catalog resolves to "" with no stats.
func (c Catalog) Resolve(position string) (string, []string) {
	if i := c.index(position); i >= 0 {
		return c.Positions[i].Name, slices.Clone(c.Positions[i].Stats)
	}
	if len(c.Positions) == 0 {
		return "", nil
	}
	return c.Positions[0].Name, slices.Clone(c.Positions[0].Stats)
}

// Clone returns a deep copy.
func (c Catalog) Clone() Catalog {
	out := Catalog{Positions: make([]Position, len(c.Positions))}
	for i, p := range c.Positions {
		out.Positions[i] = Position{Name: p.Name, Stats: slices.Clone(p.Stats)}
	}
	return out
}

func (c Catalog) index(position string) int {
	return slices.IndexFunc(c.Positions, func(p Position) bool { return p.Name == position })
}

func (c *Catalog) addPosition(name string) bool {
	if c.Has(name) {
		return false
	}
	c.Positions = append(c.Positions, Position{Name: name, Stats: []string{}})
	return true
}

func (c *Catalog) removePosition(name string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}
	c.Positions = slices.Delete(c.Positions, i, i+1)
	return true
}

func (c *Catalog) addStat(position, stat string) (bool, error) {
	i := c.index(position)
	if i < 0 {
		return false, &UnknownPositionError{Position: position}
	}
	if slices.Contains(c.Positions[i].Stats, stat) {
		return false, nil
	}
	c.Positions[i].Stats = append(c.Positions[i].Stats, stat)
	return true, nil
}

func (c *Catalog) removeStat(position, stat string) (bool, error) {
	i := c.index(position)
	if i < 0 {
		return false, &UnknownPositionError{Position: position}
	}
	j := slices.Index(c.Positions[i].Stats, stat)
	if j < 0 {
		return false, nil
	}
	c.Positions[i].Stats = slices.Delete(c.Positions[i].Stats, j, j+1)
	return true, nil
}

// normalize drops duplicate stats within a position, keeping the first
// occurrence, and drops repeated positions.
func (c Catalog) normalize() Catalog {
	out := Catalog{Positions: make([]Position, 0, len(c.Positions))}
	for _, p := range c.Positions {
		if p.Name == "" || out.Has(p.Name) {
			continue
		}
		stats := make([]string, 0, len(p.Stats))
		for _, s := range p.Stats {
			if s != "" && !slices.Contains(stats, s) {
				stats = append(stats, s)
			}
		}
		out.Positions = append(out.Positions, Position{Name: p.Name, Stats: stats})
	}
	return out
}

// DisplayName turns a stat identifier such as "shots_on_target" into
// "Shots On Target".
func DisplayName(stat string) string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(stat, "_", " "))
}
