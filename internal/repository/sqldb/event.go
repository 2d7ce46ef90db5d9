package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/gaia-lore/internal/apperror"
	"github.com/sakif/gaia-lore/internal/model"
	"github.com/sakif/gaia-lore/internal/repository"
)

var _ repository.EventRepository = (*DB)(nil)

const eventColumns = `id, year, title, description, category, related_character_id,
	related_location_id, created_at, updated_at`

func scanEvent(row rowScanner, e *model.Event) error {
	return row.Scan(
		&e.ID, &e.Year, &e.Title, &e.Description, &e.Category, &e.RelatedCharacterID,
		&e.RelatedLocationID, &e.CreatedAt, &e.UpdatedAt,
	)
}

// ListEvents returns the timeline in ascending year order.
func (db *DB) ListEvents(ctx context.Context) ([]model.Event, error) {
	return db.queryEvents(ctx, "listing events",
		`SELECT `+eventColumns+` FROM events ORDER BY year ASC, id ASC`)
}

// SearchEvents matches the query against title and description.
func (db *DB) SearchEvents(ctx context.Context, query string) ([]model.Event, error) {
	p := likePattern(query)
	return db.queryEvents(ctx, "searching events",
		`SELECT `+eventColumns+` FROM events
		 WHERE title LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!'
		 ORDER BY year ASC, id ASC LIMIT ?`,
		p, p, searchLimit)
}

func (db *DB) queryEvents(ctx context.Context, op, query string, args ...any) ([]model.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: %s: %w", op, err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("sqldb: scanning event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating events: %w", err)
	}
	return events, nil
}

func (db *DB) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	var e model.Event
	err := scanEvent(db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id), &e)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("event", id)
		}
		return nil, fmt.Errorf("sqldb: getting event %d: %w", id, err)
	}
	return &e, nil
}

// CreateEvent inserts e. Related ids are stored as given; they are not
// checked against characters or locations.
func (db *DB) CreateEvent(ctx context.Context, e *model.Event) error {
	if e.Category == "" {
		e.Category = model.DefaultEventCategory
	}
	e.CreatedAt, e.UpdatedAt = db.stamps()

	id, err := db.insert(ctx, "event",
		`INSERT INTO events (year, title, description, category, related_character_id,
		 related_location_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Year, e.Title, e.Description, e.Category, e.RelatedCharacterID,
		e.RelatedLocationID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (db *DB) UpdateEvent(ctx context.Context, id int64, patch model.EventPatch) error {
	s := &setList{}
	set(s, "year", patch.Year)
	set(s, "title", patch.Title)
	set(s, "description", patch.Description)
	set(s, "category", patch.Category)
	set(s, "related_character_id", patch.RelatedCharacterID)
	set(s, "related_location_id", patch.RelatedLocationID)
	return db.updateByID(ctx, "events", "event", id, s)
}

func (db *DB) DeleteEvent(ctx context.Context, id int64) error {
	return db.deleteByID(ctx, "events", "event", id)
}
