package api_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/korylprince/library-desk-server/api"
	"github.com/stretchr/testify/require"
)

//newTestDB returns a seeded SQLite database in a temporary directory
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := api.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "desk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, api.CreateSchema(ctx, db, api.DialectSQLite))
	require.NoError(t, api.WithTx(ctx, db, func(ctx context.Context) error {
		seeded, err := api.Seed(ctx)
		if err != nil {
			return err
		}
		require.True(t, seeded)
		return nil
	}))

	return db
}

//inTx runs fn in its own transaction
func inTx(t *testing.T, db *sql.DB, fn func(ctx context.Context) error) error {
	t.Helper()
	return api.WithTx(context.Background(), db, fn)
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table+";").Scan(&n))
	return n
}

func stockOf(t *testing.T, db *sql.DB, isbn string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT stock FROM books WHERE isbn=?;", isbn).Scan(&n))
	return n
}

func allStock(t *testing.T, db *sql.DB) map[string]int {
	t.Helper()
	rows, err := db.Query("SELECT isbn, stock FROM books;")
	require.NoError(t, err)
	defer rows.Close()

	stock := make(map[string]int)
	for rows.Next() {
		var isbn string
		var n int
		require.NoError(t, rows.Scan(&isbn, &n))
		stock[isbn] = n
	}
	require.NoError(t, rows.Err())
	return stock
}

const (
	isbnCleanCode  = "9780132350884"
	isbnPragmatic  = "9780201616224"
	isbnDDIA       = "9781492078005"
	isbnFluentPy   = "9781491957660"
	isbnEffectiveJ = "9780134685991"
)
