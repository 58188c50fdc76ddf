// Package summary derives totals, recent matches, trends and averages from a
// player's collection. Every function is pure.
package summary

import (
	"cmp"
	"encoding/json"
	"slices"
	"time"

	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/records"
)

// Totals holds per-stat sums. Stats that no record carries are listed in
// Missing rather than reported as zero.
type Totals struct {
	Stats   []string       `json:"stats"`
	Values  map[string]int `json:"values"`
	Missing []string       `json:"missing"`
}

// Point is one sample of a stat time series.
type Point struct {
	Date  time.Time
	Value int
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string `json:"date"`
		Value int    `json:"value"`
	}{p.Date.Format(records.DateLayout), p.Value})
}

func TotalMatches(c *records.Collection) int {
	return c.Len()
}

func TotalMinutes(c *records.Collection) int {
	total := 0
	if c == nil {
		return total
	}
	for _, r := range c.Records {
		total += r.MinutesPlayed
	}
	return total
}

// StatTotals sums every stat the catalog tracks for position.
func StatTotals(c *records.Collection, cat catalog.Catalog, position string) (Totals, error) {
	stats, err := cat.Stats(position)
	if err != nil {
		return Totals{}, err
	}
	return SumStats(c, stats), nil
}

// SumStats sums the given stats in order.
func SumStats(c *records.Collection, stats []string) Totals {
	t := Totals{Stats: []string{}, Values: map[string]int{}, Missing: []string{}}
	for _, stat := range stats {
		sum, seen := 0, false
		if c != nil {
			for _, r := range c.Records {
				if v, ok := r.Value(stat); ok {
					sum += v
					seen = true
				}
			}
		}
		if !seen {
			t.Missing = append(t.Missing, stat)
			continue
		}
		t.Stats = append(t.Stats, stat)
		t.Values[stat] = sum
	}
	return t
}

// Recent returns up to n records, most recent date first. Records on the same
// date are ordered most recently inserted first.
func Recent(c *records.Collection, n int) []records.MatchRecord {
	if n <= 0 || c.Len() == 0 {
		return []records.MatchRecord{}
	}
	idx := make([]int, c.Len())
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int {
		if d := c.Records[b].Date.Compare(c.Records[a].Date); d != 0 {
			return d
		}
		return cmp.Compare(b, a)
	})

	n = min(n, len(idx))
	out := make([]records.MatchRecord, 0, n)
	for _, i := range idx[:n] {
		out = append(out, c.Records[i].Clone())
	}
	return out
}

// Trend projects the records carrying stat onto (date, value), oldest first.
// Records on the same date keep insertion order.
func Trend(c *records.Collection, stat string) []Point {
	points := []Point{}
	if c == nil {
		return points
	}
	for _, r := range c.Records {
		if v, ok := r.Value(stat); ok {
			points = append(points, Point{Date: r.Date, Value: v})
		}
	}
	slices.SortStableFunc(points, func(a, b Point) int {
		return a.Date.Compare(b.Date)
	})
	return points
}

// Average is the mean of stat over the records that carry it; ok is false
// when none does.
func Average(c *records.Collection, stat string) (avg float64, ok bool) {
	if c == nil {
		return 0, false
	}
	sum, n := 0, 0
	for _, r := range c.Records {
		if v, present := r.Value(stat); present {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}
