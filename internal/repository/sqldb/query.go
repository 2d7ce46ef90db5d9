package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/gaia-lore/internal/apperror"
)

// searchLimit caps each collection returned by a search query.
const searchLimit = 50

// setList accumulates "column = ?" assignments for a partial UPDATE.
type setList struct {
	cols []string
	args []any
}

// set records col only when v is non-nil.
func set[T any](s *setList, col string, v *T) {
	if v == nil {
		return
	}
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, *v)
}

func (s *setList) empty() bool { return len(s.cols) == 0 }

// updateByID applies s to the row with the given id, stamping updated_at.
// An empty patch only checks that the row exists.
func (db *DB) updateByID(ctx context.Context, table, resource string, id int64, s *setList) error {
	if s.empty() {
		return db.mustExist(ctx, table, resource, id)
	}

	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = ? WHERE id = ?",
		table, strings.Join(s.cols, ", "))
	args := append(s.args, db.now(), id)

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqldb: updating %s %d: %w", resource, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqldb: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// deleteByID removes a row. Deleting a missing id is not an error.
func (db *DB) deleteByID(ctx context.Context, table, resource string, id int64) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("sqldb: deleting %s %d: %w", resource, id, err)
	}
	return nil
}

func (db *DB) mustExist(ctx context.Context, table, resource string, id int64) error {
	var one int
	err := db.conn.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return apperror.NotFound(resource, id)
	}
	if err != nil {
		return fmt.Errorf("sqldb: checking %s %d: %w", resource, id, err)
	}
	return nil
}

// insert runs an INSERT and returns the generated id.
func (db *DB) insert(ctx context.Context, resource, query string, args ...any) (int64, error) {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqldb: creating %s: %w", resource, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqldb: reading %s id: %w", resource, err)
	}
	return id, nil
}

// stamps returns matching created/updated timestamps for a new row.
func (db *DB) stamps() (time.Time, time.Time) {
	now := db.now()
	return now, now
}

// likePattern turns a user query into a substring LIKE pattern. "!" is the
// escape character in every search statement.
func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(q) + "%"
}
