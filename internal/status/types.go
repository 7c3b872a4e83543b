// Package status queries third-party status APIs for the live state of
// listed servers and caches the results.
package status

import (
	"github.com/craftlist/craftlist/internal/database/types/enum"
)

// Result is the normalized outcome of a single status check. A failed or
// unparseable check yields the zero value with Online false.
type Result struct {
	Online        bool
	PlayersOnline int
	PlayersMax    int
	Version       string
	MOTD          []string
	Icon          string
}

// Request identifies one address to check.
type Request struct {
	Host   string
	Port   int
	Family enum.ClientFamily
}

// primaryResponse mirrors the primary status API's JSON body. Only the
// fields the directory consumes are decoded.
type primaryResponse struct {
	Online  bool `json:"online"`
	Players struct {
		Online int `json:"online"`
		Max    int `json:"max"`
	} `json:"players"`
	Version struct {
		NameClean string `json:"name_clean"`
	} `json:"version"`
	MOTD struct {
		Clean []string `json:"clean"`
	} `json:"motd"`
	Icon string `json:"icon"`
}

// fallbackResponse mirrors the fallback status API's JSON body, which uses
// a flatter shape and raw MOTD strings.
type fallbackResponse struct {
	Online  bool `json:"online"`
	Players struct {
		Online int `json:"online"`
		Max    int `json:"max"`
	} `json:"players"`
	Version string `json:"version"`
	MOTD    struct {
		Clean []string `json:"clean"`
	} `json:"motd"`
	Icon string `json:"icon"`
}
