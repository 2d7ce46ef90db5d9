package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

var _ repository.LocationRepository = (*DB)(nil)

const locationColumns = `id, name, type, description, characteristics, inhabitants,
	significance, image_url, created_at, updated_at`

func scanLocation(row rowScanner, l *model.Location) error {
	return row.Scan(
		&l.ID, &l.Name, &l.Type, &l.Description, &l.Characteristics, &l.Inhabitants,
		&l.Significance, &l.ImageURL, &l.CreatedAt, &l.UpdatedAt,
	)
}

func (db *DB) ListLocations(ctx context.Context) ([]model.Location, error) {
	return db.queryLocations(ctx, "listing locations",
		`SELECT `+locationColumns+` FROM locations ORDER BY name ASC, id ASC`)
}

func (db *DB) SearchLocations(ctx context.Context, query string) ([]model.Location, error) {
	p := likePattern(query)
	return db.queryLocations(ctx, "searching locations",
		`SELECT `+locationColumns+` FROM locations
		 WHERE name LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!'
		 ORDER BY name ASC, id ASC LIMIT ?`,
		p, p, searchLimit)
}

func (db *DB) queryLocations(ctx context.Context, op, query string, args ...any) ([]model.Location, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: %s: %w", op, err)
	}
	defer rows.Close()

	locations := make([]model.Location, 0)
	for rows.Next() {
		var l model.Location
		if err := scanLocation(rows, &l); err != nil {
			return nil, fmt.Errorf("sqldb: scanning location row: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating locations: %w", err)
	}
	return locations, nil
}

func (db *DB) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	var l model.Location
	err := scanLocation(db.conn.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = ?`, id), &l)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("location", id)
		}
		return nil, fmt.Errorf("sqldb: getting location %d: %w", id, err)
	}
	return &l, nil
}

func (db *DB) CreateLocation(ctx context.Context, l *model.Location) error {
	if l.Type == "" {
		l.Type = model.DefaultLocationType
	}
	l.CreatedAt, l.UpdatedAt = db.stamps()

	id, err := db.insert(ctx, "location",
		`INSERT INTO locations (name, type, description, characteristics, inhabitants,
		 significance, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Name, l.Type, l.Description, l.Characteristics, l.Inhabitants,
		l.Significance, l.ImageURL, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (db *DB) UpdateLocation(ctx context.Context, id int64, patch model.LocationPatch) error {
	s := &setList{}
	set(s, "name", patch.Name)
	set(s, "type", patch.Type)
	set(s, "description", patch.Description)
	set(s, "characteristics", patch.Characteristics)
	set(s, "inhabitants", patch.Inhabitants)
	set(s, "significance", patch.Significance)
	set(s, "image_url", patch.ImageURL)
	return db.updateByID(ctx, "locations", "location", id, s)
}

func (db *DB) DeleteLocation(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "locations", "location", id)
}
