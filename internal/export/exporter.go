// Package export produces downloadable snapshots of the approved listings.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/craftlist/craftlist/internal/database/models"
	dbtypes "github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/export/csv"
	"github.com/craftlist/craftlist/internal/export/sqlite"
	"github.com/craftlist/craftlist/internal/export/types"
	"github.com/craftlist/craftlist/internal/setup"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatSQLite Format = "sqlite"
	FormatCSV    Format = "csv"
)

// EngineVersion represents the version of the export engine.
// This should be updated when making breaking changes to the export format.
const EngineVersion = "1.0.0"

// Config holds the configuration for exports.
type Config struct {
	ExportVersion string `json:"exportVersion"`
	Description   string `json:"description"`
}

// Exporter writes the approved listings to every supported format.
type Exporter struct {
	app     *setup.App
	outDir  string
	config  *Config
	formats []Format
}

// New creates a new exporter instance.
func New(app *setup.App, outDir string, config *Config) *Exporter {
	return &Exporter{
		app:    app,
		outDir: outDir,
		config: config,
		formats: []Format{
			FormatSQLite,
			FormatCSV,
		},
	}
}

// ExportAll exports the approved listings in all supported formats and
// writes the export metadata alongside them.
func (e *Exporter) ExportAll(ctx context.Context) error {
	fmt.Printf("Starting export:\n")
	fmt.Printf("  Output Directory: %s\n", e.outDir)
	fmt.Printf("  Export Version: %s\n", e.config.ExportVersion)
	fmt.Printf("  Engine Version: %s\n", EngineVersion)
	fmt.Printf("  Description: %s\n\n", e.config.Description)

	fmt.Printf("Fetching approved listings...\n")

	servers, err := e.app.DB.Model().Server().List(ctx, models.ListFilter{})
	if err != nil {
		return fmt.Errorf("failed to fetch listings: %w", err)
	}

	fmt.Printf("Found %d listings to export\n\n", len(servers))

	entries := make([]dbtypes.RankEntry, len(servers))
	for i, server := range servers {
		entries[i] = dbtypes.RankEntry{
			ServerID:  server.ID,
			Votes:     server.Votes,
			CreatedAt: server.CreatedAt,
		}
	}

	ranks := make(map[int64]int, len(entries))
	for _, position := range dbtypes.ComputeRankPositions(entries) {
		ranks[position.ServerID] = position.Rank
	}

	records := make([]*types.Record, len(servers))
	for i, server := range servers {
		records[i] = &types.Record{
			Slug:          server.Slug,
			Name:          server.Name,
			Host:          server.Host,
			Address:       server.Address(server.CheckFamily()),
			Family:        string(server.Family),
			Votes:         server.Votes,
			Rank:          ranks[server.ID],
			Online:        server.Online,
			PlayersOnline: server.PlayersOnline,
			PlayersMax:    server.PlayersMax,
		}
	}

	if err := e.saveConfig(); err != nil {
		return err
	}

	for _, format := range e.formats {
		fmt.Printf("Exporting %s format...\n", format)

		if err := e.export(format, records); err != nil {
			return fmt.Errorf("failed to export %s: %w", format, err)
		}
	}

	fmt.Printf("\nExport complete\n")

	return nil
}

func (e *Exporter) export(format Format, records []*types.Record) error {
	switch format {
	case FormatSQLite:
		return sqlite.New(e.outDir).Export(records)
	case FormatCSV:
		return csv.New(e.outDir).Export(records)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// saveConfig writes the export metadata next to the data files.
func (e *Exporter) saveConfig() error {
	jsonConfig := struct {
		*Config

		EngineVersion string `json:"engineVersion"`
	}{
		Config:        e.config,
		EngineVersion: EngineVersion,
	}

	data, err := sonic.ConfigDefault.MarshalIndent(jsonConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export config: %w", err)
	}

	path := filepath.Join(e.outDir, "export_config.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export config: %w", err)
	}

	return nil
}
