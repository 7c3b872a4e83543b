package types

import (
	"net"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// StatusSample is one point-in-time check result for one server.
// Append-only; rows older than the retention window are purged.
type StatusSample struct {
	bun.BaseModel `bun:"table:status_samples"`

	ID            int64     `bun:",pk,autoincrement" json:"id"`
	ServerID      int64     `bun:",notnull"          json:"serverId"`
	Online        bool      `bun:",notnull"          json:"online"`
	PlayersOnline int       `bun:",notnull"          json:"playersOnline"`
	PlayersMax    int       `bun:",notnull"          json:"playersMax"`
	Version       string    `bun:""                  json:"version,omitempty"`
	LatencyMS     int64     `bun:",notnull"          json:"latencyMs"`
	CheckedAt     time.Time `bun:",notnull,default:current_timestamp" json:"checkedAt"`
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
