package csv_test

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	exportCSV "github.com/craftlist/craftlist/internal/export/csv"
	"github.com/craftlist/craftlist/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verifyCSVFile reads a CSV file and verifies its contents match the expected records.
func verifyCSVFile(t *testing.T, path string, expected []*types.Record) {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"slug", "name", "host", "address", "family",
		"votes", "rank", "online", "players_online", "players_max",
	}, header)

	for _, want := range expected {
		record, err := reader.Read()
		require.NoError(t, err)
		assert.Equal(t, want.Slug, record[0])
		assert.Equal(t, want.Name, record[1])
		assert.Equal(t, want.Host, record[2])
		assert.Equal(t, want.Address, record[3])
		assert.Equal(t, want.Family, record[4])
		assert.Equal(t, strconv.FormatInt(want.Votes, 10), record[5])
		assert.Equal(t, strconv.Itoa(want.Rank), record[6])
		assert.Equal(t, strconv.FormatBool(want.Online), record[7])
		assert.Equal(t, strconv.Itoa(want.PlayersOnline), record[8])
		assert.Equal(t, strconv.Itoa(want.PlayersMax), record[9])
	}

	_, err = reader.Read()
	assert.Equal(t, io.EOF, err, "expected EOF after last record")
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
					Slug:          "mega-network",
					Name:          "Mega Network",
					Host:          "play.mega.example.com",
					Address:       "play.mega.example.com:25565",
					Family:        "java",
					Votes:         2048,
					Rank:          1,
					Online:        true,
					PlayersOnline: 312,
					PlayersMax:    1000,
				},
				{
					Slug:    "quiet-realm",
					Name:    "Quiet Realm",
					Host:    "quiet.example.com",
					Address: "quiet.example.com:19132",
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

			exporter := exportCSV.New(outDir)
			require.NoError(t, exporter.Export(tt.records))

			verifyCSVFile(t, filepath.Join(outDir, "servers.csv"), tt.records)
		})
	}
}

func TestExporter_ExportReplacesExisting(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	path := filepath.Join(outDir, "servers.csv")

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	exporter := exportCSV.New(outDir)
	require.NoError(t, exporter.Export(nil))

	verifyCSVFile(t, path, nil)
}
