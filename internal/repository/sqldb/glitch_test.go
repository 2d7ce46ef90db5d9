package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
)

func createTestGlitch(t *testing.T, db *DB, title string, severity model.GlitchSeverity) *model.Glitch {
	t.Helper()
	g := &model.Glitch{
		Title:    title,
		Severity: severity,
		VersionA: strPtr("X"),
		VersionB: strPtr("Y"),
	}
	if err := db.CreateGlitch(context.Background(), g); err != nil {
		t.Fatalf("failed to create test glitch: %v", err)
	}
	return g
}

func TestCreateGlitch_StartsUnresolved(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	g := &model.Glitch{Title: "Conflicto", Resolved: true, Resolution: strPtr("sneaky")}
	require.NoError(t, db.CreateGlitch(ctx, g))

	got, err := db.GetGlitch(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, got.Resolved)
	assert.Nil(t, got.Resolution)
	assert.Nil(t, got.ResolvedAt)
	assert.Nil(t, got.ResolvedBy)
	assert.Equal(t, model.SeverityMajor, got.Severity)
}

func TestListGlitches_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Hour)
		db.now = func() time.Time { return at }
		createTestGlitch(t, db, title, model.SeverityMinor)
	}

	list, err := db.ListGlitches(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}
}

func TestResolveGlitch_OneWay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	g := createTestGlitch(t, db, "Conflicto de origen", model.SeverityCritical)

	unresolved, err := db.ListUnresolvedGlitches(ctx)
	require.NoError(t, err)
	require.Len(t, unresolved, 1)

	require.NoError(t, db.ResolveGlitch(ctx, g.ID, "Canonical: X", 7))

	got, err := db.GetGlitch(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, got.Resolved)
	require.NotNil(t, got.Resolution)
	assert.Equal(t, "Canonical: X", *got.Resolution)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, int64(7), *got.ResolvedBy)
	assert.NotNil(t, got.ResolvedAt)

	unresolved, err = db.ListUnresolvedGlitches(ctx)
	require.NoError(t, err)
	assert.Empty(t, unresolved)

	all, err := db.ListGlitches(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// a second resolve must not overwrite the first
	err = db.ResolveGlitch(ctx, g.ID, "Canonical: Y", 8)
	assert.True(t, errors.Is(err, apperror.ErrConflict), "got %v", err)

	got, err = db.GetGlitch(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canonical: X", *got.Resolution)
	assert.Equal(t, int64(7), *got.ResolvedBy)
}

func TestResolveGlitch_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.ResolveGlitch(context.Background(), 404, "nothing", 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
}

func TestUpdateGlitch_DoesNotTouchResolution(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	g := createTestGlitch(t, db, "Ambigüedad", model.SeverityMajor)
	require.NoError(t, db.ResolveGlitch(ctx, g.ID, "keep A", 1))

	minor := model.SeverityMinor
	require.NoError(t, db.UpdateGlitch(ctx, g.ID, model.GlitchPatch{Severity: &minor}))

	got, err := db.GetGlitch(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SeverityMinor, got.Severity)
	assert.True(t, got.Resolved)
	assert.Equal(t, "keep A", *got.Resolution)
}
