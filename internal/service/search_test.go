package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

// failingSearch wraps a real store and fails one collection.
type failingSearch struct {
	SearchRepository
}

func (failingSearch) SearchLocations(context.Context, string) ([]model.Location, error) {
	return nil, errors.New("disk on fire")
}

func seedLore(t *testing.T, store repository.Store) {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	_, err := NewCharacterService(store, logger).Create(ctx, CreateCharacterInput{
		Name: "Sid Grinberg", Description: strPtr("Built the first resonance tower"),
	})
	require.NoError(t, err)
	_, err = NewFactionService(store, logger).Create(ctx, CreateFactionInput{
		Name: "Resonance Council",
	})
	require.NoError(t, err)
	_, err = NewLocationService(store, logger).Create(ctx, CreateLocationInput{
		Name: "Tower Nine", Description: strPtr("A resonance relay"),
	})
	require.NoError(t, err)
	_, err = NewEventService(store, logger).Create(ctx, CreateEventInput{
		Year: intPtr(1961), Title: "The Founding",
	})
	require.NoError(t, err)
	_, err = NewConceptService(store, logger).Create(ctx, CreateConceptInput{
		Name: "Aether", ShortDescription: strPtr("Resonance given form"),
	})
	require.NoError(t, err)
}

func TestSearchService_MatchesAcrossCollections(t *testing.T) {
	store := newTestStore(t)
	seedLore(t, store)
	svc := NewSearchService(store, testLogger())

	res, err := svc.All(context.Background(), SearchInput{Query: "resonance"})
	require.NoError(t, err)

	assert.Len(t, res.Characters, 1)
	assert.Len(t, res.Factions, 1)
	assert.Len(t, res.Locations, 1)
	assert.Empty(t, res.Events)
	assert.NotNil(t, res.Events)
	assert.Len(t, res.Concepts, 1)
}

func TestSearchService_EmptyQuery(t *testing.T) {
	store := newTestStore(t)
	seedLore(t, store)
	svc := NewSearchService(store, testLogger())

	res, err := svc.All(context.Background(), SearchInput{Query: "   "})
	require.NoError(t, err)
	assert.Equal(t, model.EmptySearchResults(), res)
}

func TestSearchService_QueryTooLong(t *testing.T) {
	svc := NewSearchService(newTestStore(t), testLogger())

	_, err := svc.All(context.Background(), SearchInput{Query: strings.Repeat("a", 201)})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSearchService_Offline(t *testing.T) {
	svc := NewSearchService(repository.Offline(), testLogger())

	res, err := svc.All(context.Background(), SearchInput{Query: "resonance"})
	require.NoError(t, err)
	assert.Equal(t, model.EmptySearchResults(), res)
}

func TestSearchService_AllOrNothing(t *testing.T) {
	store := newTestStore(t)
	seedLore(t, store)
	svc := NewSearchService(failingSearch{store}, testLogger())

	res, err := svc.All(context.Background(), SearchInput{Query: "resonance"})
	assert.Error(t, err)
	assert.Nil(t, res)
}
