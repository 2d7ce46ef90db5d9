package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

var _ repository.FactionRepository = (*DB)(nil)

const factionColumns = `id, name, type, motto, description, politics, territory,
	image_url, created_at, updated_at`

func scanFaction(row rowScanner, f *model.Faction) error {
	return row.Scan(
		&f.ID, &f.Name, &f.Type, &f.Motto, &f.Description, &f.Politics, &f.Territory,
		&f.ImageURL, &f.CreatedAt, &f.UpdatedAt,
	)
}

func (db *DB) ListFactions(ctx context.Context) ([]model.Faction, error) {
	return db.queryFactions(ctx, "listing factions",
		`SELECT `+factionColumns+` FROM factions ORDER BY name ASC, id ASC`)
}

func (db *DB) SearchFactions(ctx context.Context, query string) ([]model.Faction, error) {
	p := likePattern(query)
	return db.queryFactions(ctx, "searching factions",
		`SELECT `+factionColumns+` FROM factions
		 WHERE name LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!'
		 ORDER BY name ASC, id ASC LIMIT ?`,
		p, p, searchLimit)
}

func (db *DB) queryFactions(ctx context.Context, op, query string, args ...any) ([]model.Faction, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: %s: %w", op, err)
	}
	defer rows.Close()

	factions := make([]model.Faction, 0)
	for rows.Next() {
		var f model.Faction
		if err := scanFaction(rows, &f); err != nil {
			return nil, fmt.Errorf("sqldb: scanning faction row: %w", err)
		}
		factions = append(factions, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating factions: %w", err)
	}
	return factions, nil
}

func (db *DB) GetFaction(ctx context.Context, id int64) (*model.Faction, error) {
	var f model.Faction
	err := scanFaction(db.conn.QueryRowContext(ctx,
		`SELECT `+factionColumns+` FROM factions WHERE id = ?`, id), &f)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("faction", id)
		}
		return nil, fmt.Errorf("sqldb: getting faction %d: %w", id, err)
	}
	return &f, nil
}

func (db *DB) CreateFaction(ctx context.Context, f *model.Faction) error {
	if f.Type == "" {
		f.Type = model.DefaultFactionType
	}
	f.CreatedAt, f.UpdatedAt = db.stamps()

	id, err := db.insert(ctx, "faction",
		`INSERT INTO factions (name, type, motto, description, politics, territory,
		 image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.Type, f.Motto, f.Description, f.Politics, f.Territory,
		f.ImageURL, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (db *DB) UpdateFaction(ctx context.Context, id int64, patch model.FactionPatch) error {
	s := &setList{}
	set(s, "name", patch.Name)
	set(s, "type", patch.Type)
	set(s, "motto", patch.Motto)
	set(s, "description", patch.Description)
	set(s, "politics", patch.Politics)
	set(s, "territory", patch.Territory)
	set(s, "image_url", patch.ImageURL)
	return db.updateByID(ctx, "factions", "faction", id, s)
}

func (db *DB) DeleteFaction(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "factions", "faction", id)
}
