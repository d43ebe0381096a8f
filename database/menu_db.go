package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ListLiveSubjectKeys returns every image subject key still referenced by a
// menu item that has not been soft-deleted. The orphan sweep consults this so
// a file whose index row was lost (e.g. the index write failed after upload)
// is never mistaken for garbage while its record still points at it.
func ListLiveSubjectKeys(db *sql.DB) (map[string]bool, error) {
	querySQL, args, err := psql.Select("image_subject_key").
		From("menu_items").
		Where(sq.And{
			sq.NotEq{"image_subject_key": nil},
			sq.NotEq{"image_subject_key": ""},
			sq.Eq{"deleted_at": nil},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build live subject key query: %w", err)
	}

	rows, err := db.Query(querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query live subject keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan subject key: %w", err)
		}
		keys[key] = true
	}
	return keys, rows.Err()
}
