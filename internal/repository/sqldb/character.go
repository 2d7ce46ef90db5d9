package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

var _ repository.CharacterRepository = (*DB)(nil)

const characterColumns = `id, name, alias, archetype, role, description, psychology,
	conflicts, refs, image_url, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner, c *model.Character) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Alias, &c.Archetype, &c.Role, &c.Description, &c.Psychology,
		&c.Conflicts, &c.References, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt,
	)
}

// ListCharacters returns every character ordered by name.
func (db *DB) ListCharacters(ctx context.Context) ([]model.Character, error) {
	return db.queryCharacters(ctx, "listing characters",
		`SELECT `+characterColumns+` FROM characters ORDER BY name ASC, id ASC`)
}

// SearchCharacters matches the query against name and description.
func (db *DB) SearchCharacters(ctx context.Context, query string) ([]model.Character, error) {
	p := likePattern(query)
	return db.queryCharacters(ctx, "searching characters",
		`SELECT `+characterColumns+` FROM characters
		 WHERE name LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!'
		 ORDER BY name ASC, id ASC LIMIT ?`,
		p, p, searchLimit)
}

func (db *DB) queryCharacters(ctx context.Context, op, query string, args ...any) ([]model.Character, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: %s: %w", op, err)
	}
	defer rows.Close()

	characters := make([]model.Character, 0)
	for rows.Next() {
		var c model.Character
		if err := scanCharacter(rows, &c); err != nil {
			return nil, fmt.Errorf("sqldb: scanning character row: %w", err)
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating characters: %w", err)
	}
	return characters, nil
}

// GetCharacter returns one character or apperror.ErrNotFound.
func (db *DB) GetCharacter(ctx context.Context, id int64) (*model.Character, error) {
	var c model.Character
	err := scanCharacter(db.conn.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("character", id)
		}
		return nil, fmt.Errorf("sqldb: getting character %d: %w", id, err)
	}
	return &c, nil
}

// CreateCharacter inserts c and fills in its ID and timestamps.
func (db *DB) CreateCharacter(ctx context.Context, c *model.Character) error {
	c.CreatedAt, c.UpdatedAt = db.stamps()

	id, err := db.insert(ctx, "character",
		`INSERT INTO characters (name, alias, archetype, role, description, psychology,
		 conflicts, refs, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Alias, c.Archetype, c.Role, c.Description, c.Psychology,
		c.Conflicts, c.References, c.ImageURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// UpdateCharacter writes only the fields present in patch.
func (db *DB) UpdateCharacter(ctx context.Context, id int64, patch model.CharacterPatch) error {
	s := &setList{}
	set(s, "name", patch.Name)
	set(s, "alias", patch.Alias)
	set(s, "archetype", patch.Archetype)
	set(s, "role", patch.Role)
	set(s, "description", patch.Description)
	set(s, "psychology", patch.Psychology)
	set(s, "conflicts", patch.Conflicts)
	set(s, "refs", patch.References)
	set(s, "image_url", patch.ImageURL)
	return db.updateByID(ctx, "characters", "character", id, s)
}

// DeleteCharacter removes a character. Missing ids are ignored.
func (db *DB) DeleteCharacter(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "characters", "character", id)
}
