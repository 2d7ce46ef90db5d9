package model

type FactionType string

const (
	FactionGovernment   FactionType = "government"
	FactionMilitary     FactionType = "military"
	FactionOrganization FactionType = "organization"
	FactionOther        FactionType = "other"
)

type LocationType string

const (
	LocationPlanet    LocationType = "planet"
	LocationRegion    LocationType = "region"
	LocationCity      LocationType = "city"
	LocationStructure LocationType = "structure"
	LocationOther     LocationType = "other"
)

type EventCategory string

const (
	EventOrigin    EventCategory = "origin"
	EventDiscovery EventCategory = "discovery"
	EventTragedy   EventCategory = "tragedy"
	EventConflict  EventCategory = "conflict"
	EventExpansion EventCategory = "expansion"
)

type ConceptCategory string

const (
	ConceptEnergy     ConceptCategory = "energy"
	ConceptTechnology ConceptCategory = "technology"
	ConceptEntity     ConceptCategory = "entity"
	ConceptPhilosophy ConceptCategory = "philosophy"
	ConceptOther      ConceptCategory = "other"
)

type GlitchSeverity string

const (
	SeverityCritical GlitchSeverity = "critical"
	SeverityMajor    GlitchSeverity = "major"
	SeverityMinor    GlitchSeverity = "minor"
)

// Column defaults applied when a create omits the enum.
const (
	DefaultFactionType     = FactionOther
	DefaultLocationType    = LocationPlanet
	DefaultEventCategory   = EventOrigin
	DefaultConceptCategory = ConceptOther
	DefaultGlitchSeverity  = SeverityMajor
)
