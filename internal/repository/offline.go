package repository

import (
	"context"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
)

var _ Store = offline{}

// offline is the Store used when no database is configured. Every operation
// fails with apperror.ErrUnavailable; the service layer decides which of those
// degrade to empty results.
type offline struct{}

// Offline returns a Store that reports itself unavailable.
func Offline() Store { return offline{} }

func (offline) Available() bool { return false }
func (offline) Close() error    { return nil }

func (offline) UpsertUser(context.Context, model.UserUpsert) error {
	return apperror.Unavailable("upserting user")
}
func (offline) GetUserByOpenID(context.Context, string) (*model.User, error) {
	return nil, apperror.Unavailable("getting user")
}
func (offline) SetUserRole(context.Context, string, model.Role) error {
	return apperror.Unavailable("setting user role")
}

func (offline) ListCharacters(context.Context) ([]model.Character, error) {
	return nil, apperror.Unavailable("listing characters")
}
func (offline) GetCharacter(context.Context, int64) (*model.Character, error) {
	return nil, apperror.Unavailable("getting character")
}
func (offline) CreateCharacter(context.Context, *model.Character) error {
	return apperror.Unavailable("creating character")
}
func (offline) UpdateCharacter(context.Context, int64, model.CharacterPatch) error {
	return apperror.Unavailable("updating character")
}
func (offline) DeleteCharacter(context.Context, int64) error {
	return apperror.Unavailable("deleting character")
}
func (offline) SearchCharacters(context.Context, string) ([]model.Character, error) {
	return nil, apperror.Unavailable("searching characters")
}

func (offline) ListFactions(context.Context) ([]model.Faction, error) {
	return nil, apperror.Unavailable("listing factions")
}
func (offline) GetFaction(context.Context, int64) (*model.Faction, error) {
	return nil, apperror.Unavailable("getting faction")
}
func (offline) CreateFaction(context.Context, *model.Faction) error {
	return apperror.Unavailable("creating faction")
}
func (offline) UpdateFaction(context.Context, int64, model.FactionPatch) error {
	return apperror.Unavailable("updating faction")
}
func (offline) DeleteFaction(context.Context, int64) error {
	return apperror.Unavailable("deleting faction")
}
func (offline) SearchFactions(context.Context, string) ([]model.Faction, error) {
	return nil, apperror.Unavailable("searching factions")
}

func (offline) ListLocations(context.Context) ([]model.Location, error) {
	return nil, apperror.Unavailable("listing locations")
}
func (offline) GetLocation(context.Context, int64) (*model.Location, error) {
	return nil, apperror.Unavailable("getting location")
}
func (offline) CreateLocation(context.Context, *model.Location) error {
	return apperror.Unavailable("creating location")
}
func (offline) UpdateLocation(context.Context, int64, model.LocationPatch) error {
	return apperror.Unavailable("updating location")
}
func (offline) DeleteLocation(context.Context, int64) error {
	return apperror.Unavailable("deleting location")
}
func (offline) SearchLocations(context.Context, string) ([]model.Location, error) {
	return nil, apperror.Unavailable("searching locations")
}

func (offline) ListEvents(context.Context) ([]model.Event, error) {
	return nil, apperror.Unavailable("listing events")
}
func (offline) GetEvent(context.Context, int64) (*model.Event, error) {
	return nil, apperror.Unavailable("getting event")
}
func (offline) CreateEvent(context.Context, *model.Event) error {
	return apperror.Unavailable("creating event")
}
func (offline) UpdateEvent(context.Context, int64, model.EventPatch) error {
	return apperror.Unavailable("updating event")
}
func (offline) DeleteEvent(context.Context, int64) error {
	return apperror.Unavailable("deleting event")
}
func (offline) SearchEvents(context.Context, string) ([]model.Event, error) {
	return nil, apperror.Unavailable("searching events")
}

func (offline) ListConcepts(context.Context) ([]model.Concept, error) {
	return nil, apperror.Unavailable("listing concepts")
}
func (offline) GetConcept(context.Context, int64) (*model.Concept, error) {
	return nil, apperror.Unavailable("getting concept")
}
func (offline) CreateConcept(context.Context, *model.Concept) error {
	return apperror.Unavailable("creating concept")
}
func (offline) UpdateConcept(context.Context, int64, model.ConceptPatch) error {
	return apperror.Unavailable("updating concept")
}
func (offline) DeleteConcept(context.Context, int64) error {
	return apperror.Unavailable("deleting concept")
}
func (offline) SearchConcepts(context.Context, string) ([]model.Concept, error) {
	return nil, apperror.Unavailable("searching concepts")
}

func (offline) ListGlitches(context.Context) ([]model.Glitch, error) {
	return nil, apperror.Unavailable("listing glitches")
}
func (offline) ListUnresolvedGlitches(context.Context) ([]model.Glitch, error) {
	return nil, apperror.Unavailable("listing unresolved glitches")
}
func (offline) GetGlitch(context.Context, int64) (*model.Glitch, error) {
	return nil, apperror.Unavailable("getting glitch")
}
func (offline) CreateGlitch(context.Context, *model.Glitch) error {
	return apperror.Unavailable("creating glitch")
}
func (offline) UpdateGlitch(context.Context, int64, model.GlitchPatch) error {
	return apperror.Unavailable("updating glitch")
}
func (offline) DeleteGlitch(context.Context, int64) error {
	return apperror.Unavailable("deleting glitch")
}
func (offline) ResolveGlitch(context.Context, int64, string, int64) error {
	return apperror.Unavailable("resolving glitch")
}
