package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// ConceptService handles business logic for concepts.
type ConceptService struct {
	repo   repository.ConceptRepository
	logger *slog.Logger
}

func NewConceptService(repo repository.ConceptRepository, logger *slog.Logger) *ConceptService {
	return &ConceptService{repo: repo, logger: logger}
}

func (s *ConceptService) List(ctx context.Context) ([]model.Concept, error) {
	list, err := s.repo.ListConcepts(ctx)
	if err != nil {
		return degradeList[model.Concept](s.logger, "listing concepts", err)
	}
	return list, nil
}

func (s *ConceptService) Get(ctx context.Context, in IDInput) (*model.Concept, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c, err := s.repo.GetConcept(ctx, in.ID)
	if err != nil {
		return degradeGet[model.Concept](s.logger, "getting concept", err)
	}
	return c, nil
}

// Create validates and saves a new concept. An omitted category defaults to "other".
func (s *ConceptService) Create(ctx context.Context, in CreateConceptInput) (*model.Concept, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	c := &model.Concept{
		Name:             in.Name,
		Category:         model.DefaultConceptCategory,
		ShortDescription: in.ShortDescription,
		FullDescription:  in.FullDescription,
		Properties:       in.Properties,
		Manifestations:   in.Manifestations,
		ImageURL:         trimPtr(in.ImageURL),
	}
	if in.Category != nil {
		c.Category = *in.Category
	}
	if err := s.repo.CreateConcept(ctx, c); err != nil {
		s.logger.Error("failed to create concept",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating concept: %w", err)
	}

	s.logger.Info("concept created", slog.Int64("id", c.ID), slog.String("name", c.Name))
	return c, nil
}

func (s *ConceptService) Update(ctx context.Context, in UpdateConceptInput) (*model.Concept, error) {
	in.Name = trimPtr(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	patch := model.ConceptPatch{
		Name:             in.Name,
		Category:         in.Category,
		ShortDescription: in.ShortDescription,
		FullDescription:  in.FullDescription,
		Properties:       in.Properties,
		Manifestations:   in.Manifestations,
		ImageURL:         trimPtr(in.ImageURL),
	}
	if err := s.repo.UpdateConcept(ctx, in.ID, patch); err != nil {
		return nil, fmt.Errorf("updating concept: %w", err)
	}

	c, err := s.repo.GetConcept(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading concept: %w", err)
	}

	s.logger.Info("concept updated", slog.Int64("id", c.ID))
	return c, nil
}

func (s *ConceptService) Delete(ctx context.Context, in IDInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := s.repo.DeleteConcept(ctx, in.ID); err != nil {
		return fmt.Errorf("deleting concept: %w", err)
	}
	s.logger.Info("concept deleted", slog.Int64("id", in.ID))
	return nil
}
