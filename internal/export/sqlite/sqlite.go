// Package sqlite writes listing exports as SQLite databases.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/craftlist/craftlist/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Exporter handles exporting listings to SQLite databases.
type Exporter struct {
	outDir string
}

// New creates a new SQLite exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes the listing records to servers.db, replacing any previous
// file.
func (e *Exporter) Export(records []*types.Record) error {
	path := filepath.Join(e.outDir, "servers.db")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file: %w", err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	err = sqlitex.Execute(conn, `
		CREATE TABLE servers (
			slug TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			host TEXT NOT NULL,
			address TEXT NOT NULL,
			family TEXT NOT NULL,
			votes INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			online INTEGER NOT NULL,
			players_online INTEGER NOT NULL,
			players_max INTEGER NOT NULL
		)
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	// Insert records in batches
	const batchSize = 1000
	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))

		if err := sqlitex.Execute(conn, "BEGIN TRANSACTION", nil); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, record := range records[i:end] {
			err := sqlitex.Execute(conn, `
				INSERT INTO servers (slug, name, host, address, family,
					votes, rank, online, players_online, players_max)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, &sqlitex.ExecOptions{
				Args: []any{
					record.Slug, record.Name, record.Host, record.Address,
					record.Family, record.Votes, record.Rank,
					boolToInt(record.Online),
					record.PlayersOnline, record.PlayersMax,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}

		if err := sqlitex.Execute(conn, "COMMIT", nil); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
