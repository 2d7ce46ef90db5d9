package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

var _ repository.ConceptRepository = (*DB)(nil)

const conceptColumns = `id, name, category, short_description, full_description,
	properties, manifestations, image_url, created_at, updated_at`

func scanConcept(row rowScanner, c *model.Concept) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Category, &c.ShortDescription, &c.FullDescription,
		&c.Properties, &c.Manifestations, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (db *DB) ListConcepts(ctx context.Context) ([]model.Concept, error) {
	return db.queryConcepts(ctx, "listing concepts",
		`SELECT `+conceptColumns+` FROM concepts ORDER BY name ASC, id ASC`)
}

// SearchConcepts matches against name and the short description.
func (db *DB) SearchConcepts(ctx context.Context, query string) ([]model.Concept, error) {
	p := likePattern(query)
	return db.queryConcepts(ctx, "searching concepts",
		`SELECT `+conceptColumns+` FROM concepts
		 WHERE name LIKE ? ESCAPE '!' OR short_description LIKE ? ESCAPE '!'
		 ORDER BY name ASC, id ASC LIMIT ?`,
		p, p, searchLimit)
}

func (db *DB) queryConcepts(ctx context.Context, op, query string, args ...any) ([]model.Concept, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: %s: %w", op, err)
	}
	defer rows.Close()

	concepts := make([]model.Concept, 0)
	for rows.Next() {
		var c model.Concept
		if err := scanConcept(rows, &c); err != nil {
			return nil, fmt.Errorf("sqldb: scanning concept row: %w", err)
		}
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating concepts: %w", err)
	}
	return concepts, nil
}

func (db *DB) GetConcept(ctx context.Context, id int64) (*model.Concept, error) {
	var c model.Concept
	err := scanConcept(db.conn.QueryRowContext(ctx,
		`SELECT `+conceptColumns+` FROM concepts WHERE id = ?`, id), &c)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("concept", id)
		}
		return nil, fmt.Errorf("sqldb: getting concept %d: %w", id, err)
	}
	return &c, nil
}

func (db *DB) CreateConcept(ctx context.Context, c *model.Concept) error {
	if c.Category == "" {
		c.Category = model.DefaultConceptCategory
	}
	c.CreatedAt, c.UpdatedAt = db.stamps()

	id, err := db.insert(ctx, "concept",
		`INSERT INTO concepts (name, category, short_description, full_description,
		 properties, manifestations, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Category, c.ShortDescription, c.FullDescription,
		c.Properties, c.Manifestations, c.ImageURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (db *DB) UpdateConcept(ctx context.Context, id int64, patch model.ConceptPatch) error {
	s := &setList{}
	set(s, "name", patch.Name)
	set(s, "category", patch.Category)
	set(s, "short_description", patch.ShortDescription)
	set(s, "full_description", patch.FullDescription)
	set(s, "properties", patch.Properties)
	set(s, "manifestations", patch.Manifestations)
	set(s, "image_url", patch.ImageURL)
	return db.updateByID(ctx, "concepts", "concept", id, s)
}

func (db *DB) DeleteConcept(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "concepts", "concept", id)
}
