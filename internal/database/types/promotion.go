package types

import (
	"time"

	"github.com/uptrace/bun"
)

// Promotion is a sponsored listing slot for a server.
type Promotion struct {
	bun.BaseModel `bun:"table:promotions"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	ServerID  int64     `bun:",notnull"          json:"serverId"`
	Tier      int       `bun:",notnull,default:1" json:"tier"`
	StartsAt  time.Time `bun:",notnull"          json:"startsAt"`
	EndsAt    time.Time `bun:",notnull"          json:"endsAt"`
	CreatedAt time.Time `bun:",notnull,default:current_timestamp" json:"createdAt"`
}

// Active reports whether the promotion covers the given instant.
func (p *Promotion) Active(now time.Time) bool {
	return !now.Before(p.StartsAt) && now.Before(p.EndsAt)
}
