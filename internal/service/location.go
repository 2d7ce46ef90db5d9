package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// LocationService handles business logic for locations.
type LocationService struct {
	repo   repository.LocationRepository
	logger *slog.Logger
}

func NewLocationService(repo repository.LocationRepository, logger *slog.Logger) *LocationService {
	return &LocationService{repo: repo, logger: logger}
}

func (s *LocationService) List(ctx context.Context) ([]model.Location, error) {
	list, err := s.repo.ListLocations(ctx)
	if err != nil {
		return degradeList[model.Location](s.logger, "listing locations", err)
	}
	return list, nil
}

func (s *LocationService) Get(ctx context.Context, in IDInput) (*model.Location, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	l, err := s.repo.GetLocation(ctx, in.ID)
	if err != nil {
		return degradeGet[model.Location](s.logger, "getting location", err)
	}
	return l, nil
}

// Create validates and saves a new location. An omitted type defaults to "planet".
func (s *LocationService) Create(ctx context.Context, in CreateLocationInput) (*model.Location, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	l := &model.Location{
		Name:            in.Name,
		Type:            model.DefaultLocationType,
		Description:     in.Description,
		Characteristics: in.Characteristics,
		Inhabitants:     in.Inhabitants,
		Significance:    in.Significance,
		ImageURL:        trimPtr(in.ImageURL),
	}
	if in.Type != nil {
		l.Type = *in.Type
	}
	if err := s.repo.CreateLocation(ctx, l); err != nil {
		s.logger.Error("failed to create location",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating location: %w", err)
	}

	s.logger.Info("location created", slog.Int64("id", l.ID), slog.String("name", l.Name))
	return l, nil
}

func (s *LocationService) Update(ctx context.Context, in UpdateLocationInput) (*model.Location, error) {
	in.Name = trimPtr(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	patch := model.LocationPatch{
		Name:            in.Name,
		Type:            in.Type,
		Description:     in.Description,
		Characteristics: in.Characteristics,
		Inhabitants:     in.Inhabitants,
		Significance:    in.Significance,
		ImageURL:        trimPtr(in.ImageURL),
	}
	if err := s.repo.UpdateLocation(ctx, in.ID, patch); err != nil {
		return nil, fmt.Errorf("updating location: %w", err)
	}

	l, err := s.repo.GetLocation(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading location: %w", err)
	}

	s.logger.Info("location updated", slog.Int64("id", l.ID))
	return l, nil
}

func (s *LocationService) Delete(ctx context.Context, in IDInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := s.repo.DeleteLocation(ctx, in.ID); err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	s.logger.Info("location deleted", slog.Int64("id", in.ID))
	return nil
}
