package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// CharacterService handles business logic for characters.
type CharacterService struct {
	repo   repository.CharacterRepository
	logger *slog.Logger
}

// NewCharacterService creates a new CharacterService.
func NewCharacterService(repo repository.CharacterRepository, logger *slog.Logger) *CharacterService {
	return &CharacterService{repo: repo, logger: logger}
}

// List returns every character ordered by name.
func (s *CharacterService) List(ctx context.Context) ([]model.Character, error) {
	list, err := s.repo.ListCharacters(ctx)
	if err != nil {
		return degradeList[model.Character](s.logger, "listing characters", err)
	}
	return list, nil
}

// Get returns one character, or nil when storage is unavailable.
func (s *CharacterService) Get(ctx context.Context, in IDInput) (*model.Character, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c, err := s.repo.GetCharacter(ctx, in.ID)
	if err != nil {
		return degradeGet[model.Character](s.logger, "getting character", err)
	}
	return c, nil
}

// Create validates and saves a new character.
func (s *CharacterService) Create(ctx context.Context, in CreateCharacterInput) (*model.Character, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	c := &model.Character{
		Name:        in.Name,
		Alias:       trimPtr(in.Alias),
		Archetype:   trimPtr(in.Archetype),
		Role:        in.Role,
		Description: in.Description,
		Psychology:  in.Psychology,
		Conflicts:   in.Conflicts,
		References:  in.References,
		ImageURL:    trimPtr(in.ImageURL),
	}
	if err := s.repo.CreateCharacter(ctx, c); err != nil {
		s.logger.Error("failed to create character",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating character: %w", err)
	}

	s.logger.Info("character created", slog.Int64("id", c.ID), slog.String("name", c.Name))
	return c, nil
}

// Update applies the provided fields and returns the stored record.
func (s *CharacterService) Update(ctx context.Context, in UpdateCharacterInput) (*model.Character, error) {
	in.Name = trimPtr(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	patch := model.CharacterPatch{
		Name:        in.Name,
		Alias:       trimPtr(in.Alias),
		Archetype:   trimPtr(in.Archetype),
		Role:        in.Role,
		Description: in.Description,
		Psychology:  in.Psychology,
		Conflicts:   in.Conflicts,
		References:  in.References,
		ImageURL:    trimPtr(in.ImageURL),
	}
	if err := s.repo.UpdateCharacter(ctx, in.ID, patch); err != nil {
		return nil, fmt.Errorf("updating character: %w", err)
	}

	c, err := s.repo.GetCharacter(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading character: %w", err)
	}

	s.logger.Info("character updated", slog.Int64("id", c.ID))
	return c, nil
}

// Delete removes a character. Deleting a missing id succeeds.
func (s *CharacterService) Delete(ctx context.Context, in IDInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := s.repo.DeleteCharacter(ctx, in.ID); err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	s.logger.Info("character deleted", slog.Int64("id", in.ID))
	return nil
}
