package types

import (
	"time"

	"github.com/uptrace/bun"
)

// ServerIcon holds the validated base64 icon payload for one server.
// At most one row per server; replaced in place when the content hash changes.
type ServerIcon struct {
	bun.BaseModel `bun:"table:server_icons"`

	ServerID  int64     `bun:",pk"      json:"serverId"`
	Data      string    `bun:",notnull" json:"data"`
	Hash      string    `bun:",notnull" json:"hash"`
	UpdatedAt time.Time `bun:",notnull,default:current_timestamp" json:"updatedAt"`
}
