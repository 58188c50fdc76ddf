package records_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mauv0809/academy-stats/internal/database"
	"github.com/mauv0809/academy-stats/internal/metrics"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]records.Backend {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return map[string]records.Backend{
		"csv": records.NewCSVBackend(t.TempDir()),
		"sql": records.NewSQLBackend(db),
	}
}

func goalkeeperMatch(date time.Time, opponent string, minutes int) records.MatchRecord {
	return records.MatchRecord{
		Date:          date,
		Opponent:      opponent,
		MinutesPlayed: minutes,
		Position:      "Goalkeeper",
		Stats:         map[string]int{"saves": 4, "clean_sheets": 1, "goals_conceded": 0},
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := records.NewStore(backend, records.NewMemoryCache(time.Minute), metrics.NewMock())
			c, found, err := store.Load(context.Background(), records.Key{Player: "Jane Doe"})
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, c)
		})
	}
}

func TestStore_AppendThenLoadRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mock := metrics.NewMock()
			store := records.NewStore(backend, records.NewMemoryCache(time.Minute), mock)
			key := records.Key{Player: "Jane Doe"}

			c := records.NewCollection(key, []string{"saves", "clean_sheets", "goals_conceded"})
			rec := goalkeeperMatch(records.NewDate(2024, 3, 1), "Rivals FC", 90)
			require.NoError(t, store.Append(ctx, c, rec))
			assert.Equal(t, 1, c.Len())

			loaded, found, err := store.Load(ctx, key)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, 1, loaded.Len())
			assert.Equal(t, rec, loaded.Records[0])
			assert.Equal(t, []string{"saves", "clean_sheets", "goals_conceded"}, loaded.Columns)
			assert.Equal(t, 1, mock.RecordsAppended())
		})
	}
}

func TestStore_AppendKeepsInsertionOrder(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := records.NewStore(backend, nil, metrics.NewMock())
			key := records.Key{Player: "Jane Doe", Team: "U15"}
			c := records.NewCollection(key, nil)

			require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 8), "Second", 45)))
			require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 1), "First", 90)))

			loaded, _, err := store.Load(ctx, key)
			require.NoError(t, err)
			require.Equal(t, 2, loaded.Len())
			assert.Equal(t, "Second", loaded.Records[0].Opponent)
			assert.Equal(t, "First", loaded.Records[1].Opponent)
		})
	}
}

func TestStore_AppendValidation(t *testing.T) {
	ctx := context.Background()
	mock := metrics.NewMock()
	store := records.NewStore(records.NewCSVBackend(t.TempDir()), nil, mock)
	c := records.NewCollection(records.Key{Player: "Jane Doe"}, nil)

	tests := []struct {
		name  string
		rec   records.MatchRecord
		field string
	}{
		{"zero minutes", goalkeeperMatch(records.NewDate(2024, 3, 1), "Rivals FC", 0), "minutes_played"},
		{"empty opponent", goalkeeperMatch(records.NewDate(2024, 3, 1), "  ", 90), "opponent"},
		{"missing date", goalkeeperMatch(time.Time{}, "Rivals FC", 90), "date"},
		{"too many minutes", goalkeeperMatch(records.NewDate(2024, 3, 1), "Rivals FC", 121), "minutes_played"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Append(ctx, c, tt.rec)
			var verr *records.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, records.ErrValidation)
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, 0, c.Len(), "collection must be unchanged")
		})
	}

	_, found, err := store.Load(ctx, c.Key)
	require.NoError(t, err)
	assert.False(t, found, "nothing may be persisted for rejected records")
	assert.Equal(t, len(tests), mock.ValidationFailures())
}

func TestStore_UpdateAndDelete(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := records.NewStore(backend, records.NewMemoryCache(time.Minute), metrics.NewMock())
			key := records.Key{Player: "Jane Doe"}
			c := records.NewCollection(key, nil)
			require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 1), "A", 90)))
			require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 8), "B", 45)))

			// warm the cache so the mutation has something to invalidate
			_, _, err := store.Load(ctx, key)
			require.NoError(t, err)

			edited := goalkeeperMatch(records.NewDate(2024, 3, 2), "A (replayed)", 80)
			edited.Stats["saves"] = 7
			require.NoError(t, store.UpdateAt(ctx, c, 0, edited))

			loaded, _, err := store.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, edited, loaded.Records[0])

			require.NoError(t, store.DeleteAt(ctx, loaded, 1))
			loaded, found, err := store.Load(ctx, key)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, 1, loaded.Len())
			assert.Equal(t, "A (replayed)", loaded.Records[0].Opponent)
		})
	}
}

func TestStore_IndexOutOfRange(t *testing.T) {
	ctx := context.Background()
	store := records.NewStore(records.NewCSVBackend(t.TempDir()), nil, metrics.NewMock())
	c := records.NewCollection(records.Key{Player: "Jane Doe"}, nil)
	require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 1), "A", 90)))

	for _, idx := range []int{-1, 1, 5} {
		assert.ErrorIs(t, store.UpdateAt(ctx, c, idx, goalkeeperMatch(records.NewDate(2024, 3, 1), "A", 90)), records.ErrIndexOutOfRange)
		assert.ErrorIs(t, store.DeleteAt(ctx, c, idx), records.ErrIndexOutOfRange)
	}
	assert.Equal(t, 1, c.Len())
}

type brokenBackend struct {
	records.Backend
}

func (brokenBackend) Write(context.Context, *records.Collection) error {
	return errors.New("permission denied")
}

func (brokenBackend) Read(context.Context, records.Key) (*records.Collection, bool, error) {
	return nil, false, errors.New("permission denied")
}

func TestStore_StorageErrors(t *testing.T) {
	ctx := context.Background()
	mock := metrics.NewMock()
	store := records.NewStore(brokenBackend{}, nil, mock)
	c := records.NewCollection(records.Key{Player: "Jane Doe"}, nil)

	err := store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 1), "A", 90))
	assert.ErrorIs(t, err, records.ErrStorage)
	var serr *records.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "append", serr.Op)
	assert.Equal(t, 0, c.Len(), "collection keeps its last loaded state")

	_, _, err = store.Load(ctx, c.Key)
	assert.ErrorIs(t, err, records.ErrStorage)
	assert.Equal(t, 2, mock.StorageErrors())
}

func TestStore_CacheServesRepeatedLoads(t *testing.T) {
	ctx := context.Background()
	mock := metrics.NewMock()
	dir := t.TempDir()
	store := records.NewStore(records.NewCSVBackend(dir), records.NewMemoryCache(time.Minute), mock)
	key := records.Key{Player: "Jane Doe"}
	c := records.NewCollection(key, nil)
	require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 1), "A", 90)))

	first, _, err := store.Load(ctx, key)
	require.NoError(t, err)
	first.Records[0].Opponent = "mutated by caller"

	second, _, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "A", second.Records[0].Opponent, "cached collections are not aliased")
	assert.Equal(t, 1, mock.CacheHits())
	assert.Equal(t, 1, mock.CacheMisses())
}

func TestStore_ListPlayers(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := records.NewStore(backend, nil, metrics.NewMock())
			for _, key := range []records.Key{{Player: "Jane Doe"}, {Player: "Ada Lovelace"}, {Player: "Mia Hamm", Team: "U17"}} {
				c := records.NewCollection(key, nil)
				require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 1), "A", 90)))
			}

			keys, err := store.ListPlayers(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []records.Key{{Player: "Ada Lovelace"}, {Player: "Jane Doe"}}, keys)

			keys, err = store.ListPlayers(ctx, "U17")
			require.NoError(t, err)
			assert.Equal(t, []records.Key{{Player: "Mia Hamm", Team: "U17"}}, keys)

			keys, err = store.ListPlayers(ctx, "U19")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestStore_ListPlayersKeepsStoredSpelling(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := records.NewStore(backend, nil, metrics.NewMock())
			c := records.NewCollection(records.Key{Player: "Ronan McDonald", Team: "U17"}, nil)
			require.NoError(t, store.Append(ctx, c, goalkeeperMatch(records.NewDate(2024, 3, 1), "A", 90)))

			keys, err := store.ListPlayers(ctx, "U17")
			require.NoError(t, err)
			assert.Equal(t, []records.Key{{Player: "Ronan McDonald", Team: "U17"}}, keys)
		})
	}
}

func TestCSVBackend_ListFallsBackToSlugNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jane_doe.csv"), []byte("date,opponent,minutes_played\n"), 0o644))

	keys, err := records.NewCSVBackend(dir).List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []records.Key{{Player: "Jane Doe"}}, keys)
}

func TestCSVBackend_ReadsLegacyFiles(t *testing.T) {
	dir := t.TempDir()
	legacy := "date,opponent,minutes_played,saves,clean_sheets\n" +
		"2024-03-01,Rivals FC,90.0,4.0,\n" +
		"2024-03-08 00:00:00,Other FC,45,2,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jane_doe.csv"), []byte(legacy), 0o644))

	backend := records.NewCSVBackend(dir)
	c, found, err := backend.Read(context.Background(), records.Key{Player: "Jane  DOE"})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, []string{"saves", "clean_sheets"}, c.Columns)
	require.Len(t, c.Records, 2)
	assert.Equal(t, 90, c.Records[0].MinutesPlayed)
	assert.Equal(t, map[string]int{"saves": 4}, c.Records[0].Stats, "empty cells are missing, not zero")
	assert.Empty(t, c.Records[0].Position)
	assert.Equal(t, records.NewDate(2024, 3, 8), c.Records[1].Date)
}

func TestCSVBackend_RejectsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jane_doe.csv"), []byte("opponent,saves\nRivals,1\n"), 0o644))

	_, _, err := records.NewCSVBackend(dir).Read(context.Background(), records.Key{Player: "Jane Doe"})
	assert.Error(t, err)
}
