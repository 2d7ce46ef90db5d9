// Package repository declares the storage contracts the service layer
// depends on. Implementations live in subpackages (sqldb) or in this package
// (Offline, for when no database is configured).
package repository

import (
	"context"

	"github.com/sakif/gaia-lore/internal/model"
)

type UserRepository interface {
	// UpsertUser inserts the user or updates the non-nil fields of an existing
	// row with the same open-id.
	UpsertUser(ctx context.Context, u model.UserUpsert) error
	GetUserByOpenID(ctx context.Context, openID string) (*model.User, error)
	SetUserRole(ctx context.Context, openID string, role model.Role) error
}

type CharacterRepository interface {
	ListCharacters(ctx context.Context) ([]model.Character, error)
	GetCharacter(ctx context.Context, id int64) (*model.Character, error)
	CreateCharacter(ctx context.Context, c *model.Character) error
	UpdateCharacter(ctx context.Context, id int64, patch model.CharacterPatch) error
	DeleteCharacter(ctx context.Context, id int64) error
	SearchCharacters(ctx context.Context, query string) ([]model.Character, error)
}

type FactionRepository interface {
	ListFactions(ctx context.Context) ([]model.Faction, error)
	GetFaction(ctx context.Context, id int64) (*model.Faction, error)
	CreateFaction(ctx context.Context, f *model.Faction) error
	UpdateFaction(ctx context.Context, id int64, patch model.FactionPatch) error
	DeleteFaction(ctx context.Context, id int64) error
	SearchFactions(ctx context.Context, query string) ([]model.Faction, error)
}

type LocationRepository interface {
	ListLocations(ctx context.Context) ([]model.Location, error)
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
	CreateLocation(ctx context.Context, l *model.Location) error
	UpdateLocation(ctx context.Context, id int64, patch model.LocationPatch) error
	DeleteLocation(ctx context.Context, id int64) error
	SearchLocations(ctx context.Context, query string) ([]model.Location, error)
}

type EventRepository interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	CreateEvent(ctx context.Context, e *model.Event) error
	UpdateEvent(ctx context.Context, id int64, patch model.EventPatch) error
	DeleteEvent(ctx context.Context, id int64) error
	SearchEvents(ctx context.Context, query string) ([]model.Event, error)
}

type ConceptRepository interface {
	ListConcepts(ctx context.Context) ([]model.Concept, error)
	GetConcept(ctx context.Context, id int64) (*model.Concept, error)
	CreateConcept(ctx context.Context, c *model.Concept) error
	UpdateConcept(ctx context.Context, id int64, patch model.ConceptPatch) error
	DeleteConcept(ctx context.Context, id int64) error
	SearchConcepts(ctx context.Context, query string) ([]model.Concept, error)
}

type GlitchRepository interface {
	ListGlitches(ctx context.Context) ([]model.Glitch, error)
	ListUnresolvedGlitches(ctx context.Context) ([]model.Glitch, error)
	GetGlitch(ctx context.Context, id int64) (*model.Glitch, error)
	CreateGlitch(ctx context.Context, g *model.Glitch) error
	UpdateGlitch(ctx context.Context, id int64, patch model.GlitchPatch) error
	DeleteGlitch(ctx context.Context, id int64) error
	// ResolveGlitch flips resolved from false to true and records the
	// resolution in one statement. It returns apperror.ErrConflict when the
	// glitch is already resolved.
	ResolveGlitch(ctx context.Context, id int64, resolution string, resolvedBy int64) error
}

// Store is everything the application persists.
type Store interface {
	UserRepository
	CharacterRepository
	FactionRepository
	LocationRepository
	EventRepository
	ConceptRepository
	GlitchRepository

	// Available reports whether the store is backed by a live database.
	Available() bool
	Close() error
}
