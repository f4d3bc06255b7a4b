package database

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingOrdersAndSkipsApplied(t *testing.T) {
	files := fstest.MapFS{
		"010_b.sql":   {Data: []byte("SELECT 1")},
		"002_a.sql":   {Data: []byte("SELECT 1")},
		"001_x.sql":   {Data: []byte("SELECT 1")},
		"README.md":   {Data: []byte("docs")},
		"sub/003.sql": {Data: []byte("SELECT 1")},
	}

	names, err := Pending(files, map[string]bool{"001_x.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_a.sql", "010_b.sql"}, names)
}

func TestEmbeddedSchemaCoversAllTables(t *testing.T) {
	sub, err := fs.Sub(embedded, "migrations")
	require.NoError(t, err)

	names, err := Pending(sub, nil)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	var all strings.Builder
	for _, n := range names {
		b, err := fs.ReadFile(sub, n)
		require.NoError(t, err)
		all.Write(b)
	}
	schema := all.String()
	for _, table := range []string{"users", "customers", "packages", "invoices", "payments", "notifications", "settings", "company_profile"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
	assert.Contains(t, schema, "invoice_id  VARCHAR(64)    NOT NULL REFERENCES invoices(id)")
}
