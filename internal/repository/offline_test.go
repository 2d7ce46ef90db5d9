package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
)

func TestOffline_ReportsUnavailable(t *testing.T) {
	store := Offline()
	ctx := context.Background()

	if store.Available() {
		t.Fatal("Available() = true, want false")
	}

	checks := map[string]error{
		"list characters": func() error { _, err := store.ListCharacters(ctx); return err }(),
		"get glitch":      func() error { _, err := store.GetGlitch(ctx, 1); return err }(),
		"create event":    store.CreateEvent(ctx, &model.Event{Year: 1960, Title: "x"}),
		"resolve glitch":  store.ResolveGlitch(ctx, 1, "canon", 1),
		"upsert user":     store.UpsertUser(ctx, model.UserUpsert{OpenID: "abc"}),
	}
	for name, err := range checks {
		if !errors.Is(err, apperror.ErrUnavailable) {
			t.Errorf("%s: error = %v, want ErrUnavailable", name, err)
		}
	}

	if err := store.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
