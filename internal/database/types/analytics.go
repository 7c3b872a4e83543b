package types

import (
	"time"

	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// AnalyticsEvent is one discrete interaction event. Append-only, short
// retention; the visitor address is stored only as a salted hash.
type AnalyticsEvent struct {
	bun.BaseModel `bun:"table:analytics_events"`

	ID        int64          `bun:",pk,autoincrement" json:"id"`
	ServerID  int64          `bun:",notnull"          json:"serverId"`
	Kind      enum.EventKind `bun:",notnull"          json:"kind"`
	IPHash    string         `bun:",notnull"          json:"-"`
	UserAgent string         `bun:""                  json:"userAgent,omitempty"`
	Referrer  string         `bun:""                  json:"referrer,omitempty"`
	SessionID string         `bun:""                  json:"sessionId,omitempty"`
	Metadata  map[string]any `bun:",type:jsonb"       json:"metadata,omitempty"`
	CreatedAt time.Time      `bun:",notnull,default:current_timestamp" json:"createdAt"`
}

// DailyAnalytics is the rolled-up aggregate for one server and day.
// Incremented in place by a database trigger on each event insert.
type DailyAnalytics struct {
	bun.BaseModel `bun:"table:analytics_daily"`

	ServerID       int64     `bun:",pk"           json:"serverId"`
	Date           time.Time `bun:",pk,type:date" json:"date"`
	Impressions    int64     `bun:",notnull,default:0" json:"impressions"`
	Clicks         int64     `bun:",notnull,default:0" json:"clicks"`
	Copies         int64     `bun:",notnull,default:0" json:"copies"`
	Votes          int64     `bun:",notnull,default:0" json:"votes"`
	Reviews        int64     `bun:",notnull,default:0" json:"reviews"`
	UniqueVisitors int64     `bun:",notnull,default:0" json:"uniqueVisitors"`
}

// AnalyticsSummary aggregates trailing daily rows into totals and derived rates.
type AnalyticsSummary struct {
	ServerID       int64   `json:"serverId"`
	Days           int     `json:"days"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Copies         int64   `json:"copies"`
	Votes          int64   `json:"votes"`
	Reviews        int64   `json:"reviews"`
	UniqueVisitors int64   `json:"uniqueVisitors"`
	ClickRate      float64 `json:"clickRate"`
	CopyRate       float64 `json:"copyRate"`
	EstimatedJoins int64   `json:"estimatedJoins"`
}

// Summarize rolls daily rows up into totals, a click-through rate, a
// copy-conversion rate, and the estimated-joins heuristic (50% of copies).
func Summarize(serverID int64, rows []*DailyAnalytics) *AnalyticsSummary {
	summary := &AnalyticsSummary{
		ServerID: serverID,
		Days:     len(rows),
	}

	for _, row := range rows {
		summary.Impressions += row.Impressions
		summary.Clicks += row.Clicks
		summary.Copies += row.Copies
		summary.Votes += row.Votes
		summary.Reviews += row.Reviews
		summary.UniqueVisitors += row.UniqueVisitors
	}

	if summary.Impressions > 0 {
		summary.ClickRate = float64(summary.Clicks) / float64(summary.Impressions)
		summary.CopyRate = float64(summary.Copies) / float64(summary.Impressions)
	}

	summary.EstimatedJoins = summary.Copies / 2

	return summary
}
