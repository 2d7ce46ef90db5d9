package handler

import (
	"context"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/auth"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/rpc"
	"github.com/sakif/gaia-lore/internal/service"
)

// OwnerNotifier sends a message to the project owner. *notify.Notifier
// implements it.
type OwnerNotifier interface {
	NotifyOwner(ctx context.Context, title, content string) (bool, error)
}

// Procedures holds everything the RPC methods call into.
type Procedures struct {
	Characters *service.CharacterService
	Factions   *service.FactionService
	Locations  *service.LocationService
	Events     *service.EventService
	Concepts   *service.ConceptService
	Glitches   *service.GlitchService
	Search     *service.SearchService
	Notifier   OwnerNotifier
	// StorageAvailable reports whether a database is connected.
	StorageAvailable func() bool
}

// SuccessResult is returned by procedures that have nothing else to say.
type SuccessResult struct {
	Success bool `json:"success"`
}

// HealthInput is the system.health parameter.
type HealthInput struct {
	Timestamp *float64 `json:"timestamp"`
}

// HealthResult is returned by system.health and GET /healthz.
type HealthResult struct {
	OK      bool   `json:"ok"`
	Storage string `json:"storage"`
}

// NotifyOwnerInput is the system.notifyOwner parameter.
type NotifyOwnerInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Register adds every procedure to d.
//
// Reads and search are public, every write is admin-only. auth.me and
// auth.logout are public so an anonymous browser can call them.
func (p *Procedures) Register(d *rpc.Dispatcher) {
	// characters
	d.Register("characters.list", rpc.Public, rpc.NoParams(p.Characters.List))
	d.Register("characters.get", rpc.Public, rpc.Method(p.Characters.Get))
	d.Register("characters.create", rpc.Admin, rpc.Method(p.Characters.Create))
	d.Register("characters.update", rpc.Admin, rpc.Method(p.Characters.Update))
	d.Register("characters.delete", rpc.Admin, rpc.Method(deleted(p.Characters.Delete)))

	// factions
	d.Register("factions.list", rpc.Public, rpc.NoParams(p.Factions.List))
	d.Register("factions.get", rpc.Public, rpc.Method(p.Factions.Get))
	d.Register("factions.create", rpc.Admin, rpc.Method(p.Factions.Create))
	d.Register("factions.update", rpc.Admin, rpc.Method(p.Factions.Update))
	d.Register("factions.delete", rpc.Admin, rpc.Method(deleted(p.Factions.Delete)))

	// locations
	d.Register("locations.list", rpc.Public, rpc.NoParams(p.Locations.List))
	d.Register("locations.get", rpc.Public, rpc.Method(p.Locations.Get))
	d.Register("locations.create", rpc.Admin, rpc.Method(p.Locations.Create))
	d.Register("locations.update", rpc.Admin, rpc.Method(p.Locations.Update))
	d.Register("locations.delete", rpc.Admin, rpc.Method(deleted(p.Locations.Delete)))

	// events
	d.Register("events.list", rpc.Public, rpc.NoParams(p.Events.List))
	d.Register("events.get", rpc.Public, rpc.Method(p.Events.Get))
	d.Register("events.timeline", rpc.Public, rpc.NoParams(p.Events.Timeline))
	d.Register("events.create", rpc.Admin, rpc.Method(p.Events.Create))
	d.Register("events.update", rpc.Admin, rpc.Method(p.Events.Update))
	d.Register("events.delete", rpc.Admin, rpc.Method(deleted(p.Events.Delete)))

	// concepts
	d.Register("concepts.list", rpc.Public, rpc.NoParams(p.Concepts.List))
	d.Register("concepts.get", rpc.Public, rpc.Method(p.Concepts.Get))
	d.Register("concepts.create", rpc.Admin, rpc.Method(p.Concepts.Create))
	d.Register("concepts.update", rpc.Admin, rpc.Method(p.Concepts.Update))
	d.Register("concepts.delete", rpc.Admin, rpc.Method(deleted(p.Concepts.Delete)))

	// glitches
	d.Register("glitches.list", rpc.Public, rpc.NoParams(p.Glitches.List))
	d.Register("glitches.unresolved", rpc.Public, rpc.NoParams(p.Glitches.Unresolved))
	d.Register("glitches.get", rpc.Public, rpc.Method(p.Glitches.Get))
	d.Register("glitches.create", rpc.Admin, rpc.Method(p.Glitches.Create))
	d.Register("glitches.update", rpc.Admin, rpc.Method(p.Glitches.Update))
	d.Register("glitches.delete", rpc.Admin, rpc.Method(deleted(p.Glitches.Delete)))
	d.Register("glitches.resolve", rpc.Admin, rpc.Method(p.resolveGlitch))

	// search
	d.Register("search.all", rpc.Public, rpc.Method(p.Search.All))

	// session
	d.Register("auth.me", rpc.Public, rpc.NoParams(me))
	d.Register("auth.logout", rpc.Public, rpc.NoParams(logout))

	// system
	d.Register("system.health", rpc.Public, rpc.Method(p.health))
	d.Register("system.notifyOwner", rpc.Admin, rpc.Method(p.notifyOwner))
}

// deleted adapts a service Delete to the {success:true} result.
func deleted(del func(context.Context, service.IDInput) error) func(context.Context, service.IDInput) (SuccessResult, error) {
	return func(ctx context.Context, in service.IDInput) (SuccessResult, error) {
		if err := del(ctx, in); err != nil {
			return SuccessResult{}, err
		}
		return SuccessResult{Success: true}, nil
	}
}

func (p *Procedures) resolveGlitch(ctx context.Context, in service.ResolveGlitchInput) (*model.Glitch, error) {
	user, _ := auth.UserFromContext(ctx)
	return p.Glitches.Resolve(ctx, in, user)
}

// me returns the signed-in user, or null for an anonymous caller.
func me(ctx context.Context) (*model.User, error) {
	user, _ := auth.UserFromContext(ctx)
	return user, nil
}

// logout clears the session cookie. It succeeds whether or not the caller
// was signed in; the token itself stays valid until it expires.
func logout(ctx context.Context) (SuccessResult, error) {
	if r := rpc.HTTPRequest(ctx); r != nil {
		rpc.SetCookie(ctx, auth.ClearSessionCookie(r))
	}
	return SuccessResult{Success: true}, nil
}

func (p *Procedures) health(_ context.Context, in HealthInput) (HealthResult, error) {
	if in.Timestamp == nil {
		return HealthResult{}, apperror.ValidationFailed("timestamp", "timestamp is required")
	}
	if *in.Timestamp < 0 {
		return HealthResult{}, apperror.ValidationFailed("timestamp", "timestamp cannot be negative")
	}
	return p.status(), nil
}

func (p *Procedures) status() HealthResult {
	storage := "available"
	if p.StorageAvailable != nil && !p.StorageAvailable() {
		storage = "unavailable"
	}
	return HealthResult{OK: true, Storage: storage}
}

func (p *Procedures) notifyOwner(ctx context.Context, in NotifyOwnerInput) (SuccessResult, error) {
	if p.Notifier == nil {
		return SuccessResult{}, apperror.Internal("Notification service is not configured.")
	}
	delivered, err := p.Notifier.NotifyOwner(ctx, in.Title, in.Content)
	if err != nil {
		return SuccessResult{}, err
	}
	return SuccessResult{Success: delivered}, nil
}
