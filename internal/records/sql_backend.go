package records

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// SQLBackend keeps collections in the collections and match_records tables.
// Stats and columns are msgpack blobs since their shape varies per position.
type SQLBackend struct {
	db *sql.DB
}

func NewSQLBackend(db *sql.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Read(ctx context.Context, key Key) (*Collection, bool, error) {
	var columnsBlob []byte
	err := b.db.QueryRowContext(ctx,
		"SELECT columns_blob FROM collections WHERE collection_key = ?", key.ID(),
	).Scan(&columnsBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var columns []string
	if len(columnsBlob) > 0 {
		if err := msgpack.Unmarshal(columnsBlob, &columns); err != nil {
			return nil, false, err
		}
	}
	c := NewCollection(key, columns)

	rows, err := b.db.QueryContext(ctx, `
		SELECT match_date, opponent, minutes_played, position, stats_blob
		FROM match_records
		WHERE collection_key = ?
		ORDER BY row_index
	`, key.ID())
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var date string
		var statsBlob []byte
		rec := MatchRecord{Stats: map[string]int{}}
		if err := rows.Scan(&date, &rec.Opponent, &rec.MinutesPlayed, &rec.Position, &statsBlob); err != nil {
			return nil, false, err
		}
		if rec.Date, err = ParseDate(date); err != nil {
			return nil, false, err
		}
		if len(statsBlob) > 0 {
			if err := msgpack.Unmarshal(statsBlob, &rec.Stats); err != nil {
				return nil, false, err
			}
		}
		c.Records = append(c.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// Write replaces every row of the collection in one transaction.
func (b *SQLBackend) Write(ctx context.Context, c *Collection) error {
	columnsBlob, err := msgpack.Marshal(columnsOf(c))
	if err != nil {
		return err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := writeTx(ctx, tx, c, columnsBlob); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeTx(ctx context.Context, tx *sql.Tx, c *Collection, columnsBlob []byte) error {
	id := c.Key.ID()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO collections (collection_key, player_name, team, columns_blob)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection_key) DO UPDATE SET
			player_name = excluded.player_name,
			columns_blob = excluded.columns_blob
	`, id, c.Key.Player, c.Key.Team, columnsBlob)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM match_records WHERE collection_key = ?", id); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO match_records (collection_key, row_index, match_date, opponent, minutes_played, position, stats_blob)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range c.Records {
		statsBlob, err := msgpack.Marshal(r.Stats)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, id, i, r.Date.Format(DateLayout), r.Opponent, r.MinutesPlayed, r.Position, statsBlob); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLBackend) List(ctx context.Context, team string) ([]Key, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT player_name FROM collections WHERE team = ? ORDER BY player_name", team,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []Key{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		keys = append(keys, Key{Player: name, Team: team})
	}
	return keys, rows.Err()
}
