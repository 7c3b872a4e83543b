package types

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/uptrace/bun"
)

// Review body and rating bounds.
const (
	ReviewBodyMinLen = 100
	ReviewBodyMaxLen = 500
	ReviewRatingMin  = 1
	ReviewRatingMax  = 5
)

var (
	ErrReviewBodyLength = errors.New("review body must be between 100 and 500 characters")
	ErrReviewRating     = errors.New("review rating must be between 1 and 5")
)

// Review is one free-text review for a server. Append-only.
type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	ServerID  int64     `bun:",notnull"          json:"serverId"`
	Author    string    `bun:",notnull"          json:"author"`
	Body      string    `bun:",notnull"          json:"body"`
	Rating    int       `bun:",notnull"          json:"rating"`
	VoterIP   string    `bun:",notnull"          json:"-"`
	CreatedAt time.Time `bun:",notnull,default:current_timestamp" json:"createdAt"`
}

// Validate checks the review's body length and rating bounds.
func (r *Review) Validate() error {
	if n := utf8.RuneCountInString(r.Body); n < ReviewBodyMinLen || n > ReviewBodyMaxLen {
		return ErrReviewBodyLength
	}

	if r.Rating < ReviewRatingMin || r.Rating > ReviewRatingMax {
		return ErrReviewRating
	}

	return nil
}
