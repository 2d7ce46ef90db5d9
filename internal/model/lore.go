package model

import "time"

// Character is a person or intelligence in the lore. Listed by name.
type Character struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Alias       *string   `json:"alias"`
	Archetype   *string   `json:"archetype"`
	Role        *string   `json:"role"`
	Description *string   `json:"description"`
	Psychology  *string   `json:"psychology"`
	Conflicts   *string   `json:"conflicts"`
	References  *string   `json:"references"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CharacterPatch holds the fields of a partial update. Nil means unchanged.
type CharacterPatch struct {
	Name        *string `json:"name"`
	Alias       *string `json:"alias"`
	Archetype   *string `json:"archetype"`
	Role        *string `json:"role"`
	Description *string `json:"description"`
	Psychology  *string `json:"psychology"`
	Conflicts   *string `json:"conflicts"`
	References  *string `json:"references"`
	ImageURL    *string `json:"imageUrl"`
}

// Faction is a government, army or other organised group. Listed by name.
type Faction struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Type        FactionType `json:"type"`
	Motto       *string     `json:"motto"`
	Description *string     `json:"description"`
	Politics    *string     `json:"politics"`
	Territory   *string     `json:"territory"`
	ImageURL    *string     `json:"imageUrl"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type FactionPatch struct {
	Name        *string      `json:"name"`
	Type        *FactionType `json:"type"`
	Motto       *string      `json:"motto"`
	Description *string      `json:"description"`
	Politics    *string      `json:"politics"`
	Territory   *string      `json:"territory"`
	ImageURL    *string      `json:"imageUrl"`
}

// Location is a planet, region, city or structure. Listed by name.
type Location struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Type            LocationType `json:"type"`
	Description     *string      `json:"description"`
	Characteristics *string      `json:"characteristics"`
	Inhabitants     *string      `json:"inhabitants"`
	Significance    *string      `json:"significance"`
	ImageURL        *string      `json:"imageUrl"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type LocationPatch struct {
	Name            *string       `json:"name"`
	Type            *LocationType `json:"type"`
	Description     *string       `json:"description"`
	Characteristics *string       `json:"characteristics"`
	Inhabitants     *string       `json:"inhabitants"`
	Significance    *string       `json:"significance"`
	ImageURL        *string       `json:"imageUrl"`
}

// Event is a dated point on the timeline. Listed by year ascending.
//
// RelatedCharacterID and RelatedLocationID are soft references: they are not
// enforced by the schema and may dangle after the target is deleted.
type Event struct {
	ID                 int64         `json:"id"`
	Year               int           `json:"year"`
	Title              string        `json:"title"`
	Description        *string       `json:"description"`
	Category           EventCategory `json:"category"`
	RelatedCharacterID *int64        `json:"relatedCharacterId"`
	RelatedLocationID  *int64        `json:"relatedLocationId"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

type EventPatch struct {
	Year               *int           `json:"year"`
	Title              *string        `json:"title"`
	Description        *string        `json:"description"`
	Category           *EventCategory `json:"category"`
	RelatedCharacterID *int64         `json:"relatedCharacterId"`
	RelatedLocationID  *int64         `json:"relatedLocationId"`
}

// Concept is an energy, technology, entity or idea. Listed by name.
type Concept struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Category         ConceptCategory `json:"category"`
	ShortDescription *string         `json:"shortDescription"`
	FullDescription  *string         `json:"fullDescription"`
	Properties       *string         `json:"properties"`
	Manifestations   *string         `json:"manifestations"`
	ImageURL         *string         `json:"imageUrl"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type ConceptPatch struct {
	Name             *string          `json:"name"`
	Category         *ConceptCategory `json:"category"`
	ShortDescription *string          `json:"shortDescription"`
	FullDescription  *string          `json:"fullDescription"`
	Properties       *string          `json:"properties"`
	Manifestations   *string          `json:"manifestations"`
	ImageURL         *string          `json:"imageUrl"`
}

// Glitch records a contradiction between two lore accounts.
//
// A glitch is created unresolved. Resolving it sets Resolution, ResolvedAt and
// ResolvedBy together, and there is no way back: Resolved=false implies all
// three are nil.
type Glitch struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Severity    GlitchSeverity `json:"severity"`
	Description *string        `json:"description"`
	VersionA    *string        `json:"versionA"`
	VersionB    *string        `json:"versionB"`
	Resolution  *string        `json:"resolution"`
	Resolved    bool           `json:"resolved"`
	ResolvedAt  *time.Time     `json:"resolvedAt"`
	ResolvedBy  *int64         `json:"resolvedBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// GlitchPatch has no resolution fields; those change only
// through a resolve.
type GlitchPatch struct {
	Title       *string         `json:"title"`
	Severity    *GlitchSeverity `json:"severity"`
	Description *string         `json:"description"`
	VersionA    *string         `json:"versionA"`
	VersionB    *string         `json:"versionB"`
}
