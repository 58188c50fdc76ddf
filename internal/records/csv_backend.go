package records

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// CSVBackend keeps one CSV file per key: <dir>/<player>.csv for single-team
// collections and <dir>/teams/<team>/<player>.csv otherwise. Each directory
// also holds players.json, mapping file slugs to the stored player names.
type CSVBackend struct {
	dir string
}

func NewCSVBackend(dir string) *CSVBackend {
	return &CSVBackend{dir: dir}
}

func (b *CSVBackend) teamDir(team string) string {
	if team == "" {
		return b.dir
	}
	return filepath.Join(b.dir, "teams", strings.ToLower(team))
}

func (b *CSVBackend) path(key Key) string {
	return filepath.Join(b.teamDir(key.Team), key.Slug()+".csv")
}

func (b *CSVBackend) Read(_ context.Context, key Key) (*Collection, bool, error) {
	f, err := os.Open(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	c, err := decodeCSV(f, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", b.path(key), err)
	}
	return c, true, nil
}

func decodeCSV(r io.Reader, key Key) (*Collection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return NewCollection(key, nil), nil
	}
	if err != nil {
		return nil, err
	}

	shared := map[string]int{}
	var statCols []string
	statIdx := map[string]int{}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if isSharedColumn(name) {
			shared[name] = i
			continue
		}
		if name == "" {
			continue
		}
		statCols = append(statCols, name)
		statIdx[name] = i
	}
	for _, required := range []string{ColumnDate, ColumnOpponent, ColumnMinutesPlayed} {
		if _, ok := shared[required]; !ok {
			return nil, fmt.Errorf("missing %s column", required)
		}
	}

	c := NewCollection(key, statCols)
	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := ParseDate(cell(row, shared[ColumnDate]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		minutes, _, err := parseCount(cell(row, shared[ColumnMinutesPlayed]))
		if err != nil {
			return nil, fmt.Errorf("line %d: minutes_played: %w", line, err)
		}
		rec := MatchRecord{
			Date:          date,
			Opponent:      cell(row, shared[ColumnOpponent]),
			MinutesPlayed: minutes,
			Stats:         map[string]int{},
		}
		if i, ok := shared[ColumnPosition]; ok {
			rec.Position = cell(row, i)
		}
		for _, stat := range statCols {
			v, present, err := parseCount(cell(row, statIdx[stat]))
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, stat, err)
			}
			if present {
				rec.Stats[stat] = v
			}
		}
		c.Records = append(c.Records, rec)
	}
	return c, nil
}

// parseCount reads an integer cell. Empty and NaN cells are absent; values
// written as floats ("4.0") are accepted.
func parseCount(s string) (int, bool, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return int(f), true, nil
}

// Write replaces the file through a temporary file and a rename.
func (b *CSVBackend) Write(_ context.Context, c *Collection) error {
	dir := b.teamDir(c.Key.Team)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+c.Key.Slug()+"-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encodeCSV(tmp, c); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), b.path(c.Key)); err != nil {
		return err
	}
	return b.recordName(dir, c.Key)
}

const namesFile = "players.json"

func readNames(dir string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, namesFile))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", namesFile, err)
	}
	return names, nil
}

// recordName stores the latest spelling of the player name for List.
func (b *CSVBackend) recordName(dir string, key Key) error {
	names, err := readNames(dir)
	if err != nil {
		return err
	}
	if names[key.Slug()] == key.Player {
		return nil
	}
	names[key.Slug()] = key.Player
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".players-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, namesFile))
}

func encodeCSV(w io.Writer, c *Collection) error {
	cols := columnsOf(c)
	writer := csv.NewWriter(w)

	header := append([]string{ColumnDate, ColumnOpponent, ColumnMinutesPlayed, ColumnPosition}, cols...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range c.Records {
		row := []string{
			r.Date.Format(DateLayout),
			r.Opponent,
			strconv.Itoa(r.MinutesPlayed),
			r.Position,
		}
		for _, stat := range cols {
			if v, ok := r.Stats[stat]; ok {
				row = append(row, strconv.Itoa(v))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (b *CSVBackend) List(_ context.Context, team string) ([]Key, error) {
	entries, err := os.ReadDir(b.teamDir(team))
	if errors.Is(err, os.ErrNotExist) {
		return []Key{}, nil
	}
	if err != nil {
		return nil, err
	}
	names, err := readNames(b.teamDir(team))
	if err != nil {
		return nil, err
	}
	keys := []Key{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".csv") {
			continue
		}
		slug := strings.TrimSuffix(name, ".csv")
		player, ok := names[slug]
		if !ok {
			player = DisplayName(slug)
		}
		keys = append(keys, Key{Player: player, Team: team})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Player < keys[j].Player })
	return keys, nil
}
