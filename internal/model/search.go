package model

// SearchResults groups cross-entity matches. Every collection is non-nil so
// it encodes as [] rather than null.
type SearchResults struct {
	Characters []Character `json:"characters"`
	Factions   []Faction   `json:"factions"`
	Locations  []Location  `json:"locations"`
	Events     []Event     `json:"events"`
	Concepts   []Concept   `json:"concepts"`
}

// EmptySearchResults returns five empty collections.
func EmptySearchResults() *SearchResults {
	return &SearchResults{
		Characters: []Character{},
		Factions:   []Faction{},
		Locations:  []Location{},
		Events:     []Event{},
		Concepts:   []Concept{},
	}
}

// TimelineBucket is a fixed range of years on the timeline page.
type TimelineBucket struct {
	Label string         `json:"label"`
	Start int            `json:"start"`
	End   int            `json:"end"`
	Years []TimelineYear `json:"years"`
}

// TimelineYear groups the events that share a year under one marker.
type TimelineYear struct {
	Year   int     `json:"year"`
	Events []Event `json:"events"`
}
