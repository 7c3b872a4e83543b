package types

import (
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// DailyRank is a daily rank snapshot, one row per server per calendar date.
// Recomputations within the same day overwrite the prior value.
type DailyRank struct {
	bun.BaseModel `bun:"table:rank_daily"`

	ServerID int64     `bun:",pk"      json:"serverId"`
	Date     time.Time `bun:",pk,type:date" json:"date"`
	Rank     int       `bun:",notnull" json:"rank"`
	Votes    int64     `bun:",notnull" json:"votes"`
}

// HourlyRank is an hourly rank snapshot, append-only.
type HourlyRank struct {
	bun.BaseModel `bun:"table:rank_hourly"`

	ServerID  int64     `bun:",pk"      json:"serverId"`
	Timestamp time.Time `bun:",pk"      json:"timestamp"`
	Rank      int       `bun:",notnull" json:"rank"`
	Votes     int64     `bun:",notnull" json:"votes"`
}

// RankEntry is the input to rank computation: one approved server's vote
// counter and creation time.
type RankEntry struct {
	ServerID  int64
	Votes     int64
	CreatedAt time.Time
}

// RankPosition is a computed ordinal position for one server.
type RankPosition struct {
	ServerID int64
	Rank     int
	Votes    int64
}

// ComputeRankPositions assigns each entry its ordinal position: votes
// descending, earlier creation time breaking ties. The result is a strict
// ordering onto 1..N.
func ComputeRankPositions(entries []RankEntry) []RankPosition {
	sorted := make([]RankEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Votes != sorted[j].Votes {
			return sorted[i].Votes > sorted[j].Votes
		}

		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	positions := make([]RankPosition, len(sorted))
	for i, entry := range sorted {
		positions[i] = RankPosition{
			ServerID: entry.ServerID,
			Rank:     i + 1,
			Votes:    entry.Votes,
		}
	}

	return positions
}
