package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// FactionService handles business logic for factions.
type FactionService struct {
	repo   repository.FactionRepository
	logger *slog.Logger
}

func NewFactionService(repo repository.FactionRepository, logger *slog.Logger) *FactionService {
	return &FactionService{repo: repo, logger: logger}
}

func (s *FactionService) List(ctx context.Context) ([]model.Faction, error) {
	list, err := s.repo.ListFactions(ctx)
	if err != nil {
		return degradeList[model.Faction](s.logger, "listing factions", err)
	}
	return list, nil
}

func (s *FactionService) Get(ctx context.Context, in IDInput) (*model.Faction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	f, err := s.repo.GetFaction(ctx, in.ID)
	if err != nil {
		return degradeGet[model.Faction](s.logger, "getting faction", err)
	}
	return f, nil
}

// Create validates and saves a new faction. An omitted type defaults to "other".
func (s *FactionService) Create(ctx context.Context, in CreateFactionInput) (*model.Faction, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	f := &model.Faction{
		Name:        in.Name,
		Type:        model.DefaultFactionType,
		Motto:       in.Motto,
		Description: in.Description,
		Politics:    in.Politics,
		Territory:   in.Territory,
		ImageURL:    trimPtr(in.ImageURL),
	}
	if in.Type != nil {
		f.Type = *in.Type
	}
	if err := s.repo.CreateFaction(ctx, f); err != nil {
		s.logger.Error("failed to create faction",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating faction: %w", err)
	}

	s.logger.Info("faction created", slog.Int64("id", f.ID), slog.String("name", f.Name))
	return f, nil
}

func (s *FactionService) Update(ctx context.Context, in UpdateFactionInput) (*model.Faction, error) {
	in.Name = trimPtr(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	patch := model.FactionPatch{
		Name:        in.Name,
		Type:        in.Type,
		Motto:       in.Motto,
		Description: in.Description,
		Politics:    in.Politics,
		Territory:   in.Territory,
		ImageURL:    trimPtr(in.ImageURL),
	}
	if err := s.repo.UpdateFaction(ctx, in.ID, patch); err != nil {
		return nil, fmt.Errorf("updating faction: %w", err)
	}

	f, err := s.repo.GetFaction(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading faction: %w", err)
	}

	s.logger.Info("faction updated", slog.Int64("id", f.ID))
	return f, nil
}

func (s *FactionService) Delete(ctx context.Context, in IDInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := s.repo.DeleteFaction(ctx, in.ID); err != nil {
		return fmt.Errorf("deleting faction: %w", err)
	}
	s.logger.Info("faction deleted", slog.Int64("id", in.ID))
	return nil
}
