package types

import (
	"time"

	"github.com/uptrace/bun"
)

// VoteCooldown is the window within which a voter identity may vote for a
// given server at most once. Enforced both by an application pre-check and a
// unique index over the time bucket.
const VoteCooldown = 8 * time.Hour

// Vote is one cast vote for a server. Append-only.
// VoterID is the authenticated user id, or the raw network address for
// anonymous voters.
type Vote struct {
	bun.BaseModel `bun:"table:votes"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	ServerID  int64     `bun:",notnull"          json:"serverId"`
	VoterID   string    `bun:",notnull"          json:"voterId"`
	Username  string    `bun:""                  json:"username,omitempty"`
	CreatedAt time.Time `bun:",notnull,default:current_timestamp" json:"createdAt"`
}
