// Package types defines the records shared by the export writers.
package types

// Record is one exported listing row.
type Record struct {
	Slug          string
	Name          string
	Host          string
	Address       string
	Family        string
	Votes         int64
	Rank          int
	Online        bool
	PlayersOnline int
	PlayersMax    int
}
