package service

import "github.com/sakif/gaia-lore/internal/model"

// Procedure inputs. JSON tags are the wire names; validate tags are checked
// by the owning service before any repository call. Optional fields are
// pointers so "absent" and "empty" stay distinct on update.

// IDInput addresses a single record.
type IDInput struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type CreateCharacterInput struct {
	Name        string  `json:"name" validate:"required,max=128"`
	Alias       *string `json:"alias" validate:"omitnil,max=128"`
	Archetype   *string `json:"archetype" validate:"omitnil,max=32"`
	Role        *string `json:"role" validate:"omitnil,max=128"`
	Description *string `json:"description"`
	Psychology  *string `json:"psychology"`
	Conflicts   *string `json:"conflicts"`
	References  *string `json:"references"`
	ImageURL    *string `json:"imageUrl" validate:"omitnil,max=512"`
}

type UpdateCharacterInput struct {
	ID          int64   `json:"id" validate:"gt=0"`
	Name        *string `json:"name" validate:"omitnil,min=1,max=128"`
	Alias       *string `json:"alias" validate:"omitnil,max=128"`
	Archetype   *string `json:"archetype" validate:"omitnil,max=32"`
	Role        *string `json:"role" validate:"omitnil,max=128"`
	Description *string `json:"description"`
	Psychology  *string `json:"psychology"`
	Conflicts   *string `json:"conflicts"`
	References  *string `json:"references"`
	ImageURL    *string `json:"imageUrl" validate:"omitnil,max=512"`
}

type CreateFactionInput struct {
	Name        string             `json:"name" validate:"required,max=128"`
	Type        *model.FactionType `json:"type" validate:"omitnil,oneof=government military organization other"`
	Motto       *string            `json:"motto" validate:"omitnil,max=256"`
	Description *string            `json:"description"`
	Politics    *string            `json:"politics"`
	Territory   *string            `json:"territory"`
	ImageURL    *string            `json:"imageUrl" validate:"omitnil,max=512"`
}

type UpdateFactionInput struct {
	ID          int64              `json:"id" validate:"gt=0"`
	Name        *string            `json:"name" validate:"omitnil,min=1,max=128"`
	Type        *model.FactionType `json:"type" validate:"omitnil,oneof=government military organization other"`
	Motto       *string            `json:"motto" validate:"omitnil,max=256"`
	Description *string            `json:"description"`
	Politics    *string            `json:"politics"`
	Territory   *string            `json:"territory"`
	ImageURL    *string            `json:"imageUrl" validate:"omitnil,max=512"`
}

type CreateLocationInput struct {
	Name            string              `json:"name" validate:"required,max=128"`
	Type            *model.LocationType `json:"type" validate:"omitnil,oneof=planet region city structure other"`
	Description     *string             `json:"description"`
	Characteristics *string             `json:"characteristics"`
	Inhabitants     *string             `json:"inhabitants"`
	Significance    *string             `json:"significance"`
	ImageURL        *string             `json:"imageUrl" validate:"omitnil,max=512"`
}

type UpdateLocationInput struct {
	ID              int64               `json:"id" validate:"gt=0"`
	Name            *string             `json:"name" validate:"omitnil,min=1,max=128"`
	Type            *model.LocationType `json:"type" validate:"omitnil,oneof=planet region city structure other"`
	Description     *string             `json:"description"`
	Characteristics *string             `json:"characteristics"`
	Inhabitants     *string             `json:"inhabitants"`
	Significance    *string             `json:"significance"`
	ImageURL        *string             `json:"imageUrl" validate:"omitnil,max=512"`
}

type CreateEventInput struct {
	Year               *int                 `json:"year" validate:"required"`
	Title              string               `json:"title" validate:"required,max=256"`
	Description        *string              `json:"description"`
	Category           *model.EventCategory `json:"category" validate:"omitnil,oneof=origin discovery tragedy conflict expansion"`
	RelatedCharacterID *int64               `json:"relatedCharacterId" validate:"omitnil,gt=0"`
	RelatedLocationID  *int64               `json:"relatedLocationId" validate:"omitnil,gt=0"`
}

type UpdateEventInput struct {
	ID                 int64                `json:"id" validate:"gt=0"`
	Year               *int                 `json:"year"`
	Title              *string              `json:"title" validate:"omitnil,min=1,max=256"`
	Description        *string              `json:"description"`
	Category           *model.EventCategory `json:"category" validate:"omitnil,oneof=origin discovery tragedy conflict expansion"`
	RelatedCharacterID *int64               `json:"relatedCharacterId" validate:"omitnil,gt=0"`
	RelatedLocationID  *int64               `json:"relatedLocationId" validate:"omitnil,gt=0"`
}

type CreateConceptInput struct {
	Name             string                 `json:"name" validate:"required,max=128"`
	Category         *model.ConceptCategory `json:"category" validate:"omitnil,oneof=energy technology entity philosophy other"`
	ShortDescription *string                `json:"shortDescription" validate:"omitnil,max=512"`
	FullDescription  *string                `json:"fullDescription"`
	Properties       *string                `json:"properties"`
	Manifestations   *string                `json:"manifestations"`
	ImageURL         *string                `json:"imageUrl" validate:"omitnil,max=512"`
}

type UpdateConceptInput struct {
	ID               int64                  `json:"id" validate:"gt=0"`
	Name             *string                `json:"name" validate:"omitnil,min=1,max=128"`
	Category         *model.ConceptCategory `json:"category" validate:"omitnil,oneof=energy technology entity philosophy other"`
	ShortDescription *string                `json:"shortDescription" validate:"omitnil,max=512"`
	FullDescription  *string                `json:"fullDescription"`
	Properties       *string                `json:"properties"`
	Manifestations   *string                `json:"manifestations"`
	ImageURL         *string                `json:"imageUrl" validate:"omitnil,max=512"`
}

type CreateGlitchInput struct {
	Title       string                `json:"title" validate:"required,max=256"`
	Severity    *model.GlitchSeverity `json:"severity" validate:"omitnil,oneof=critical major minor"`
	Description *string               `json:"description"`
	VersionA    *string               `json:"versionA"`
	VersionB    *string               `json:"versionB"`
}

type UpdateGlitchInput struct {
	ID          int64                 `json:"id" validate:"gt=0"`
	Title       *string               `json:"title" validate:"omitnil,min=1,max=256"`
	Severity    *model.GlitchSeverity `json:"severity" validate:"omitnil,oneof=critical major minor"`
	Description *string               `json:"description"`
	VersionA    *string               `json:"versionA"`
	VersionB    *string               `json:"versionB"`
}

type ResolveGlitchInput struct {
	ID         int64  `json:"id" validate:"gt=0"`
	Resolution string `json:"resolution" validate:"required"`
}

type SearchInput struct {
	Query string `json:"query" validate:"max=200"`
}
