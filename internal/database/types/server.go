package types

import (
	"time"

	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// Server is a listed game server record.
type Server struct {
	bun.BaseModel `bun:"table:servers"`

	ID          int64             `bun:",pk,autoincrement"    json:"id"`
	Slug        string            `bun:",notnull,unique"      json:"slug"`
	Name        string            `bun:",notnull"             json:"name"`
	Description string            `bun:""                     json:"description"`
	Host        string            `bun:",notnull"             json:"host"`
	JavaPort    int               `bun:",notnull,default:25565" json:"javaPort"`
	BedrockPort int               `bun:",notnull,default:19132" json:"bedrockPort"`
	Family      enum.ClientFamily `bun:",notnull"             json:"family"`
	Categories  []string          `bun:",array"               json:"categories"`
	VersionMin  string            `bun:""                     json:"versionMin"`
	VersionMax  string            `bun:""                     json:"versionMax"`
	Website     string            `bun:""                     json:"website,omitempty"`
	DiscordURL  string            `bun:""                     json:"discordUrl,omitempty"`
	OwnerID     int64             `bun:",notnull"             json:"ownerId"`
	Status      enum.ServerStatus `bun:",notnull,default:'pending'" json:"status"`

	// Vote counter maintained by a database trigger over the votes table,
	// never recomputed on read.
	Votes int64 `bun:",notnull,default:0" json:"votes"`

	// Live fields refreshed by the fleet scanner. LastCheckedAt is NULL when
	// the last check failed: stale data is considered worse than no data.
	Online        bool       `bun:",notnull,default:false" json:"online"`
	PlayersOnline int        `bun:",notnull,default:0"     json:"playersOnline"`
	PlayersMax    int        `bun:",notnull,default:0"     json:"playersMax"`
	LastCheckedAt *time.Time `bun:",nullzero"              json:"lastCheckedAt,omitempty"`

	// ScannedAt advances on every check regardless of outcome so the scanner
	// can rotate through the fleet without offline servers pinning the batch.
	ScannedAt *time.Time `bun:",nullzero" json:"-"`

	CreatedAt time.Time `bun:",notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:",notnull,default:current_timestamp" json:"updatedAt"`
}

// Address returns the host joined with the port for the given family.
func (s *Server) Address(family enum.ClientFamily) string {
	port := s.JavaPort
	if family == enum.ClientFamilyBedrock {
		port = s.BedrockPort
	}

	return joinHostPort(s.Host, port)
}

// CheckFamily returns the family the scanner should query for this server.
// Servers listed as supporting both ecosystems are checked over Java.
func (s *Server) CheckFamily() enum.ClientFamily {
	if s.Family == enum.ClientFamilyBedrock {
		return enum.ClientFamilyBedrock
	}

	return enum.ClientFamilyJava
}
