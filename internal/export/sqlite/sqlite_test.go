package sqlite_test

import (
	"path/filepath"
	"testing"

	exportSQLite "github.com/craftlist/craftlist/internal/export/sqlite"
	"github.com/craftlist/craftlist/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// readRecords opens an exported database and returns its rows in slug order.
func readRecords(t *testing.T, path string) []*types.Record {
	t.Helper()

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer conn.Close()

	var records []*types.Record
	err = sqlitex.Execute(conn, `
		SELECT slug, name, host, address, family,
			votes, rank, online, players_online, players_max
		FROM servers ORDER BY slug
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			records = append(records, &types.Record{
				Slug:          stmt.ColumnText(0),
				Name:          stmt.ColumnText(1),
				Host:          stmt.ColumnText(2),
				Address:       stmt.ColumnText(3),
				Family:        stmt.ColumnText(4),
				Votes:         stmt.ColumnInt64(5),
				Rank:          stmt.ColumnInt(6),
				Online:        stmt.ColumnInt(7) != 0,
				PlayersOnline: stmt.ColumnInt(8),
				PlayersMax:    stmt.ColumnInt(9),
			})
			return nil
		},
	})
	require.NoError(t, err)

	return records
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []*types.Record
	}{
		{
			name: "basic export",
			records: []*types.Record{
				{
					Slug:          "alpha-craft",
					Name:          "Alpha Craft",
					Host:          "alpha.example.com",
					Address:       "alpha.example.com:25565",
					Family:        "java",
					Votes:         77,
					Rank:          1,
					Online:        true,
					PlayersOnline: 12,
					PlayersMax:    60,
				},
				{
					Slug:    "beta-pocket",
					Name:    "Beta Pocket",
					Host:    "beta.example.com",
					Address: "beta.example.com:19132",
					Family:  "bedrock",
					Rank:    2,
				},
			},
		},
		{
			name:    "empty export",
			records: []*types.Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outDir := t.TempDir()

			exporter := exportSQLite.New(outDir)
			require.NoError(t, exporter.Export(tt.records))

			got := readRecords(t, filepath.Join(outDir, "servers.db"))
			require.Len(t, got, len(tt.records))
			for i, want := range tt.records {
				assert.Equal(t, want, got[i])
			}
		})
	}
}
