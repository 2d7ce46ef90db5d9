package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/gaia-lore/internal/model"
)

// SearchRepository is what the cross-entity search reads from.
type SearchRepository interface {
	SearchCharacters(ctx context.Context, query string) ([]model.Character, error)
	SearchFactions(ctx context.Context, query string) ([]model.Faction, error)
	SearchLocations(ctx context.Context, query string) ([]model.Location, error)
	SearchEvents(ctx context.Context, query string) ([]model.Event, error)
	SearchConcepts(ctx context.Context, query string) ([]model.Concept, error)
	Available() bool
}

// SearchService runs the global search box.
type SearchService struct {
	repo   SearchRepository
	logger *slog.Logger
}

func NewSearchService(repo SearchRepository, logger *slog.Logger) *SearchService {
	return &SearchService{repo: repo, logger: logger}
}

// All matches the query against five collections concurrently.
//
// An empty query, or a store that is offline, returns five empty collections
// without issuing any query. Otherwise the result is all-or-nothing: if any
// of the five queries fails, the others are cancelled and the error returned.
func (s *SearchService) All(ctx context.Context, in SearchInput) (*model.SearchResults, error) {
	in.Query = strings.TrimSpace(in.Query)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Query == "" {
		return model.EmptySearchResults(), nil
	}
	if !s.repo.Available() {
		s.logger.Warn("storage unavailable, returning empty result", slog.String("op", "search"))
		return model.EmptySearchResults(), nil
	}

	res := model.EmptySearchResults()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		found, err := s.repo.SearchCharacters(gctx, in.Query)
		if err == nil {
			res.Characters = found
		}
		return err
	})
	g.Go(func() error {
		found, err := s.repo.SearchFactions(gctx, in.Query)
		if err == nil {
			res.Factions = found
		}
		return err
	})
	g.Go(func() error {
		found, err := s.repo.SearchLocations(gctx, in.Query)
		if err == nil {
			res.Locations = found
		}
		return err
	})
	g.Go(func() error {
		found, err := s.repo.SearchEvents(gctx, in.Query)
		if err == nil {
			res.Events = found
		}
		return err
	})
	g.Go(func() error {
		found, err := s.repo.SearchConcepts(gctx, in.Query)
		if err == nil {
			res.Concepts = found
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("search failed",
			slog.String("query", in.Query),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching: %w", err)
	}

	s.logger.Debug("search completed",
		slog.String("query", in.Query),
		slog.Int("characters", len(res.Characters)),
		slog.Int("factions", len(res.Factions)),
		slog.Int("locations", len(res.Locations)),
		slog.Int("events", len(res.Events)),
		slog.Int("concepts", len(res.Concepts)),
	)
	return res, nil
}
