// Package sitemap renders the public sitemap from the approved listings.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/craftlist/craftlist/internal/database/types"
)

// xmlns is the sitemap protocol namespace.
const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Vote thresholds that bump a listing's change frequency. Popular listings
// change rank and player counts fast enough to warrant frequent recrawls.
const (
	hourlyVoteThreshold = 1000
	dailyVoteThreshold  = 50
)

// URL is one sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// URLSet is the sitemap document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Build renders the sitemap for the given approved listings. The listing
// index comes first, then one entry per category in use, then one entry per
// server with priority derived from its vote share.
func Build(baseURL string, servers []*types.Server) ([]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	var maxVotes int64
	for _, server := range servers {
		if server.Votes > maxVotes {
			maxVotes = server.Votes
		}
	}

	set := URLSet{
		Xmlns: xmlns,
		URLs: []URL{{
			Loc:        baseURL + "/servers",
			ChangeFreq: "hourly",
			Priority:   "1.0",
		}},
	}

	for _, category := range categories(servers) {
		set.URLs = append(set.URLs, URL{
			Loc:        baseURL + "/servers/category/" + category,
			ChangeFreq: "daily",
			Priority:   "0.8",
		})
	}

	for _, server := range servers {
		set.URLs = append(set.URLs, URL{
			Loc:        baseURL + "/servers/" + server.Slug,
			LastMod:    server.UpdatedAt.UTC().Format(time.DateOnly),
			ChangeFreq: changeFreq(server.Votes),
			Priority:   priority(server.Votes, maxVotes),
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sitemap: %w", err)
	}

	return append([]byte(xml.Header), body...), nil
}

// categories returns the distinct categories across the listings, sorted.
func categories(servers []*types.Server) []string {
	seen := make(map[string]struct{})
	for _, server := range servers {
		for _, category := range server.Categories {
			seen[category] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// changeFreq maps listing popularity to a recrawl hint.
func changeFreq(votes int64) string {
	switch {
	case votes >= hourlyVoteThreshold:
		return "hourly"
	case votes >= dailyVoteThreshold:
		return "daily"
	default:
		return "weekly"
	}
}

// priority scales a listing's vote count against the most voted listing,
// with a floor so new servers still get crawled.
func priority(votes, maxVotes int64) string {
	if maxVotes == 0 {
		return "0.5"
	}

	p := 0.3 + 0.7*float64(votes)/float64(maxVotes)

	return fmt.Sprintf("%.1f", p)
}
