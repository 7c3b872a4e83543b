// Package csv writes listing exports as CSV files.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/craftlist/craftlist/internal/export/types"
)

// Exporter handles exporting listings to csv files.
type Exporter struct {
	outDir string
}

// New creates a new csv exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes the listing records to servers.csv, replacing any previous
// file.
func (e *Exporter) Export(records []*types.Record) error {
	path := filepath.Join(e.outDir, "servers.csv")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"slug", "name", "host", "address", "family",
		"votes", "rank", "online", "players_online", "players_max",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write([]string{
			record.Slug,
			record.Name,
			record.Host,
			record.Address,
			record.Family,
			strconv.FormatInt(record.Votes, 10),
			strconv.Itoa(record.Rank),
			strconv.FormatBool(record.Online),
			strconv.Itoa(record.PlayersOnline),
			strconv.Itoa(record.PlayersMax),
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}
