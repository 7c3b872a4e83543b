package types

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a site account profile. Authentication itself is delegated to the
// edge; this row carries ownership, role, and ban state.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        int64      `bun:",pk,autoincrement" json:"id"`
	Username  string     `bun:",notnull,unique"   json:"username"`
	Email     string     `bun:",notnull,unique"   json:"email"`
	IsAdmin   bool       `bun:",notnull,default:false" json:"isAdmin"`
	BannedAt  *time.Time `bun:",nullzero"         json:"bannedAt,omitempty"`
	BanReason string     `bun:""                  json:"banReason,omitempty"`
	CreatedAt time.Time  `bun:",notnull,default:current_timestamp" json:"createdAt"`
}

// Banned reports whether the user is currently banned.
func (u *User) Banned() bool {
	return u.BannedAt != nil
}
