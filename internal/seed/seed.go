// Package seed loads lore fixtures from YAML and writes them through the
// service layer, so seeded rows pass the same validation and defaults as
// rows created over RPC.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/service"
)

//go:embed lore.yaml
var defaultFixture []byte

// Fixture is the document shape of a lore YAML file. Keys match the RPC
// field names.
type Fixture struct {
	Characters []Character `yaml:"characters"`
	Factions   []Faction   `yaml:"factions"`
	Locations  []Location  `yaml:"locations"`
	Events     []Event     `yaml:"events"`
	Concepts   []Concept   `yaml:"concepts"`
	Glitches   []Glitch    `yaml:"glitches"`
}

type Character struct {
	Name        string  `yaml:"name"`
	Alias       *string `yaml:"alias"`
	Archetype   *string `yaml:"archetype"`
	Role        *string `yaml:"role"`
	Description *string `yaml:"description"`
	Psychology  *string `yaml:"psychology"`
	Conflicts   *string `yaml:"conflicts"`
	References  *string `yaml:"references"`
	ImageURL    *string `yaml:"imageUrl"`
}

type Faction struct {
	Name        string             `yaml:"name"`
	Type        *model.FactionType `yaml:"type"`
	Motto       *string            `yaml:"motto"`
	Description *string            `yaml:"description"`
	Politics    *string            `yaml:"politics"`
	Territory   *string            `yaml:"territory"`
	ImageURL    *string            `yaml:"imageUrl"`
}

type Location struct {
	Name            string              `yaml:"name"`
	Type            *model.LocationType `yaml:"type"`
	Description     *string             `yaml:"description"`
	Characteristics *string             `yaml:"characteristics"`
	Inhabitants     *string             `yaml:"inhabitants"`
	Significance    *string             `yaml:"significance"`
	ImageURL        *string             `yaml:"imageUrl"`
}

type Event struct {
	Year        *int                 `yaml:"year"`
	Title       string               `yaml:"title"`
	Description *string              `yaml:"description"`
	Category    *model.EventCategory `yaml:"category"`
}

type Concept struct {
	Name             string                 `yaml:"name"`
	Category         *model.ConceptCategory `yaml:"category"`
	ShortDescription *string                `yaml:"shortDescription"`
	FullDescription  *string                `yaml:"fullDescription"`
	Properties       *string                `yaml:"properties"`
	Manifestations   *string                `yaml:"manifestations"`
	ImageURL         *string                `yaml:"imageUrl"`
}

type Glitch struct {
	Title       string                `yaml:"title"`
	Severity    *model.GlitchSeverity `yaml:"severity"`
	Description *string               `yaml:"description"`
	VersionA    *string               `yaml:"versionA"`
	VersionB    *string               `yaml:"versionB"`
}

// Load decodes a fixture. Unknown keys are rejected so a typo does not
// silently drop a field.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("seed: decoding fixture: %w", err)
	}
	return &f, nil
}

// Default returns the built-in GAIA fixture.
func Default() (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(defaultFixture, &f); err != nil {
		return nil, fmt.Errorf("seed: decoding built-in fixture: %w", err)
	}
	return &f, nil
}

// Services are the write paths Apply uses.
type Services struct {
	Characters *service.CharacterService
	Factions   *service.FactionService
	Locations  *service.LocationService
	Events     *service.EventService
	Concepts   *service.ConceptService
	Glitches   *service.GlitchService
}

// Report counts what Apply did per collection.
type Report struct {
	Inserted map[string]int
	Skipped  []string
}

// Apply inserts the fixture. A collection that already has rows is skipped
// unless force is set; with force, fixture rows are added next to the
// existing ones. The first failing insert stops the run.
func Apply(ctx context.Context, svc Services, f *Fixture, force bool, logger *slog.Logger) (*Report, error) {
	rep := &Report{Inserted: make(map[string]int)}

	steps := []struct {
		kind  string
		count int
		have  func(context.Context) (bool, error)
		add   func(context.Context, int) error
	}{
		{"characters", len(f.Characters), nonEmpty(svc.Characters.List), func(ctx context.Context, i int) error {
			c := f.Characters[i]
			_, err := svc.Characters.Create(ctx, service.CreateCharacterInput{
				Name: c.Name, Alias: c.Alias, Archetype: c.Archetype, Role: c.Role,
				Description: c.Description, Psychology: c.Psychology, Conflicts: c.Conflicts,
				References: c.References, ImageURL: c.ImageURL,
			})
			return err
		}},
		{"factions", len(f.Factions), nonEmpty(svc.Factions.List), func(ctx context.Context, i int) error {
			x := f.Factions[i]
			_, err := svc.Factions.Create(ctx, service.CreateFactionInput{
				Name: x.Name, Type: x.Type, Motto: x.Motto, Description: x.Description,
				Politics: x.Politics, Territory: x.Territory, ImageURL: x.ImageURL,
			})
			return err
		}},
		{"locations", len(f.Locations), nonEmpty(svc.Locations.List), func(ctx context.Context, i int) error {
			l := f.Locations[i]
			_, err := svc.Locations.Create(ctx, service.CreateLocationInput{
				Name: l.Name, Type: l.Type, Description: l.Description,
				Characteristics: l.Characteristics, Inhabitants: l.Inhabitants,
				Significance: l.Significance, ImageURL: l.ImageURL,
			})
			return err
		}},
		{"events", len(f.Events), nonEmpty(svc.Events.List), func(ctx context.Context, i int) error {
			e := f.Events[i]
			_, err := svc.Events.Create(ctx, service.CreateEventInput{
				Year: e.Year, Title: e.Title, Description: e.Description, Category: e.Category,
			})
			return err
		}},
		{"concepts", len(f.Concepts), nonEmpty(svc.Concepts.List), func(ctx context.Context, i int) error {
			c := f.Concepts[i]
			_, err := svc.Concepts.Create(ctx, service.CreateConceptInput{
				Name: c.Name, Category: c.Category, ShortDescription: c.ShortDescription,
				FullDescription: c.FullDescription, Properties: c.Properties,
				Manifestations: c.Manifestations, ImageURL: c.ImageURL,
			})
			return err
		}},
		{"glitches", len(f.Glitches), nonEmpty(svc.Glitches.List), func(ctx context.Context, i int) error {
			g := f.Glitches[i]
			_, err := svc.Glitches.Create(ctx, service.CreateGlitchInput{
				Title: g.Title, Severity: g.Severity, Description: g.Description,
				VersionA: g.VersionA, VersionB: g.VersionB,
			})
			return err
		}},
	}

	for _, step := range steps {
		if step.count == 0 {
			continue
		}
		if !force {
			has, err := step.have(ctx)
			if err != nil {
				return rep, fmt.Errorf("seed: checking %s: %w", step.kind, err)
			}
			if has {
				logger.Info("seed skipped, collection not empty", slog.String("collection", step.kind))
				rep.Skipped = append(rep.Skipped, step.kind)
				continue
			}
		}
		for i := 0; i < step.count; i++ {
			if err := step.add(ctx, i); err != nil {
				return rep, fmt.Errorf("seed: %s[%d]: %w", step.kind, i, err)
			}
			rep.Inserted[step.kind]++
		}
		logger.Info("seeded collection",
			slog.String("collection", step.kind),
			slog.Int("rows", rep.Inserted[step.kind]),
		)
	}

	return rep, nil
}

func nonEmpty[T any](list func(context.Context) ([]T, error)) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		rows, err := list(ctx)
		if err != nil {
			return false, err
		}
		return len(rows) > 0, nil
	}
}
