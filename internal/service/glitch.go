package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// GlitchService handles business logic for glitches: recorded contradictions
// between two lore accounts, tracked until an admin resolves them.
type GlitchService struct {
	repo   repository.GlitchRepository
	logger *slog.Logger
}

func NewGlitchService(repo repository.GlitchRepository, logger *slog.Logger) *GlitchService {
	return &GlitchService{repo: repo, logger: logger}
}

// List returns every glitch, newest first.
func (s *GlitchService) List(ctx context.Context) ([]model.Glitch, error) {
	list, err := s.repo.ListGlitches(ctx)
	if err != nil {
		return degradeList[model.Glitch](s.logger, "listing glitches", err)
	}
	return list, nil
}

// Unresolved returns the glitches still awaiting a resolution, newest first.
func (s *GlitchService) Unresolved(ctx context.Context) ([]model.Glitch, error) {
	list, err := s.repo.ListUnresolvedGlitches(ctx)
	if err != nil {
		return degradeList[model.Glitch](s.logger, "listing unresolved glitches", err)
	}
	return list, nil
}

func (s *GlitchService) Get(ctx context.Context, in IDInput) (*model.Glitch, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	g, err := s.repo.GetGlitch(ctx, in.ID)
	if err != nil {
		return degradeGet[model.Glitch](s.logger, "getting glitch", err)
	}
	return g, nil
}

// Create records a new, unresolved glitch. Severity defaults to "major".
func (s *GlitchService) Create(ctx context.Context, in CreateGlitchInput) (*model.Glitch, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	g := &model.Glitch{
		Title:       in.Title,
		Severity:    model.DefaultGlitchSeverity,
		Description: in.Description,
		VersionA:    in.VersionA,
		VersionB:    in.VersionB,
	}
	if in.Severity != nil {
		g.Severity = *in.Severity
	}
	if err := s.repo.CreateGlitch(ctx, g); err != nil {
		s.logger.Error("failed to create glitch",
			slog.String("title", in.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating glitch: %w", err)
	}

	s.logger.Info("glitch created",
		slog.Int64("id", g.ID),
		slog.String("severity", string(g.Severity)),
	)
	return g, nil
}

// Update edits the descriptive fields. It cannot touch the resolution.
func (s *GlitchService) Update(ctx context.Context, in UpdateGlitchInput) (*model.Glitch, error) {
	in.Title = trimPtr(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	patch := model.GlitchPatch{
		Title:       in.Title,
		Severity:    in.Severity,
		Description: in.Description,
		VersionA:    in.VersionA,
		VersionB:    in.VersionB,
	}
	if err := s.repo.UpdateGlitch(ctx, in.ID, patch); err != nil {
		return nil, fmt.Errorf("updating glitch: %w", err)
	}

	g, err := s.repo.GetGlitch(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading glitch: %w", err)
	}

	s.logger.Info("glitch updated", slog.Int64("id", g.ID))
	return g, nil
}

func (s *GlitchService) Delete(ctx context.Context, in IDInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := s.repo.DeleteGlitch(ctx, in.ID); err != nil {
		return fmt.Errorf("deleting glitch: %w", err)
	}
	s.logger.Info("glitch deleted", slog.Int64("id", in.ID))
	return nil
}

// Resolve records the canonical resolution chosen by resolver. A glitch can
// be resolved once; a second call fails with apperror.ErrConflict.
func (s *GlitchService) Resolve(ctx context.Context, in ResolveGlitchInput, resolver *model.User) (*model.Glitch, error) {
	if resolver == nil {
		return nil, apperror.Unauthorized(apperror.UnauthenticatedMessage)
	}
	in.Resolution = strings.TrimSpace(in.Resolution)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if err := s.repo.ResolveGlitch(ctx, in.ID, in.Resolution, resolver.ID); err != nil {
		return nil, fmt.Errorf("resolving glitch: %w", err)
	}

	g, err := s.repo.GetGlitch(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading glitch: %w", err)
	}

	s.logger.Info("glitch resolved",
		slog.Int64("id", g.ID),
		slog.Int64("resolvedBy", resolver.ID),
	)
	return g, nil
}
