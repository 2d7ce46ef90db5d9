package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

var _ repository.GlitchRepository = (*DB)(nil)

const glitchColumns = `id, title, severity, description, version_a, version_b,
	resolution, resolved, resolved_at, resolved_by, created_at, updated_at`

func scanGlitch(row rowScanner, g *model.Glitch) error {
	return row.Scan(
		&g.ID, &g.Title, &g.Severity, &g.Description, &g.VersionA, &g.VersionB,
		&g.Resolution, &g.Resolved, &g.ResolvedAt, &g.ResolvedBy, &g.CreatedAt, &g.UpdatedAt,
	)
}

// ListGlitches returns every glitch, newest first.
func (db *DB) ListGlitches(ctx context.Context) ([]model.Glitch, error) {
	return db.queryGlitches(ctx, "listing glitches",
		`SELECT `+glitchColumns+` FROM glitches ORDER BY created_at DESC, id DESC`)
}

// ListUnresolvedGlitches returns the glitches still awaiting a resolution.
func (db *DB) ListUnresolvedGlitches(ctx context.Context) ([]model.Glitch, error) {
	return db.queryGlitches(ctx, "listing unresolved glitches",
		`SELECT `+glitchColumns+` FROM glitches WHERE resolved = ?
		 ORDER BY created_at DESC, id DESC`, false)
}

func (db *DB) queryGlitches(ctx context.Context, op, query string, args ...any) ([]model.Glitch, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: %s: %w", op, err)
	}
	defer rows.Close()

	glitches := make([]model.Glitch, 0)
	for rows.Next() {
		var g model.Glitch
		if err := scanGlitch(rows, &g); err != nil {
			return nil, fmt.Errorf("sqldb: scanning glitch row: %w", err)
		}
		glitches = append(glitches, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating glitches: %w", err)
	}
	return glitches, nil
}

func (db *DB) GetGlitch(ctx context.Context, id int64) (*model.Glitch, error) {
	var g model.Glitch
	err := scanGlitch(db.conn.QueryRowContext(ctx,
		`SELECT `+glitchColumns+` FROM glitches WHERE id = ?`, id), &g)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("glitch", id)
		}
		return nil, fmt.Errorf("sqldb: getting glitch %d: %w", id, err)
	}
	return &g, nil
}

// CreateGlitch inserts g as unresolved, whatever its resolution fields say.
func (db *DB) CreateGlitch(ctx context.Context, g *model.Glitch) error {
	if g.Severity == "" {
		g.Severity = model.DefaultGlitchSeverity
	}
	g.Resolved = false
	g.Resolution = nil
	g.ResolvedAt = nil
	g.ResolvedBy = nil
	g.CreatedAt, g.UpdatedAt = db.stamps()

	id, err := db.insert(ctx, "glitch",
		`INSERT INTO glitches (title, severity, description, version_a, version_b,
		 resolved, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Title, g.Severity, g.Description, g.VersionA, g.VersionB,
		false, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

func (db *DB) UpdateGlitch(ctx context.Context, id int64, patch model.GlitchPatch) error {
	s := &setList{}
	set(s, "title", patch.Title)
	set(s, "severity", patch.Severity)
	set(s, "description", patch.Description)
	set(s, "version_a", patch.VersionA)
	set(s, "version_b", patch.VersionB)
	return db.updateByID(ctx, "glitches", "glitch", id, s)
}

func (db *DB) DeleteGlitch(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "glitches", "glitch", id)
}

// ResolveGlitch marks an unresolved glitch as resolved.
//
// The "resolved = false" guard makes the transition one-way at the storage
// boundary: a second resolve matches no row and reports a conflict instead of
// overwriting the first resolution.
func (db *DB) ResolveGlitch(ctx context.Context, id int64, resolution string, resolvedBy int64) error {
	now := db.now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE glitches
		 SET resolved = ?, resolution = ?, resolved_at = ?, resolved_by = ?, updated_at = ?
		 WHERE id = ? AND resolved = ?`,
		true, resolution, now, resolvedBy, now, id, false,
	)
	if err != nil {
		return fmt.Errorf("sqldb: resolving glitch %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqldb: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if err := db.mustExist(ctx, "glitches", "glitch", id); err != nil {
			return err
		}
		return apperror.Conflict(fmt.Sprintf("glitch %d is already resolved", id))
	}
	return nil
}
