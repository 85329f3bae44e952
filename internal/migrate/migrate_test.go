package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "m.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		out = append(out, n)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestRun_createsSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db))

	assert.Equal(t, []string{"alerts", "areas", "readings", "schema_migrations", "sensors"}, tableNames(t, db))

	var version, name string
	require.NoError(t, db.QueryRow(`SELECT version, name FROM schema_migrations`).Scan(&version, &name))
	assert.Equal(t, "0001", version)
	assert.Equal(t, "schema", name)
}

func TestRun_idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db))
	require.NoError(t, Run(ctx, db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRun_appliesInVersionOrderAndSkipsOthers(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/0002_second.sql":   {Data: []byte(`INSERT INTO things (id) VALUES (2);`)},
		"sql/0001_first.sql":    {Data: []byte(`CREATE TABLE things (id INTEGER PRIMARY KEY);`)},
		"sql/readme.txt":        {Data: []byte(`not a migration`)},
		"sql/nested/0003_x.sql": {Data: []byte(`garbage`)},
	}

	require.NoError(t, run(context.Background(), db, fsys))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM things`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRun_failedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/0001_broken.sql": {Data: []byte(`CREATE TABLE ok (id INTEGER); THIS IS NOT SQL;`)},
	}

	err := run(context.Background(), db, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_broken.sql")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestSeed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Run(ctx, db))

	require.NoError(t, Seed(ctx, db))
	require.NoError(t, Seed(ctx, db))

	var areas, sensors int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM areas`).Scan(&areas))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sensors`).Scan(&sensors))
	assert.Equal(t, 3, areas)
	assert.Equal(t, 4, sensors)
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in      string
		version string
		name    string
		ok      bool
	}{
		{in: "0001_schema.sql", version: "0001", name: "schema", ok: true},
		{in: "0012_add_index.sql", version: "0012", name: "add_index", ok: true},
		{in: "1_schema.sql", ok: false},
		{in: "0001_schema.txt", ok: false},
		{in: "0001_.sql", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, n, ok := parseMigrationFilename(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.version, v)
			assert.Equal(t, tt.name, n)
		})
	}
}
