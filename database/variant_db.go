package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/camden-git/menusysbackend/media"
)

// ReplaceVariantSet replaces the indexed rows for a subject with the given
// freshly written descriptor set, in one transaction. The files themselves
// are already durable by the time this runs; rows for superseded files are
// dropped here and the files reaped by the cleanup worker.
func ReplaceVariantSet(db *sql.DB, set media.DescriptorSet) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin variant index transaction: %w", err)
	}
	defer tx.Rollback()

	delSQL, delArgs, err := psql.Delete("variants").
		Where(sq.Eq{"subject_key": set.SubjectKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build variant delete for %s: %w", set.SubjectKey, err)
	}
	if _, err := tx.Exec(delSQL, delArgs...); err != nil {
		return fmt.Errorf("failed to clear variant index for %s: %w", set.SubjectKey, err)
	}

	now := time.Now().Unix()
	for _, v := range set.Variants {
		insSQL, insArgs, err := psql.Insert("variants").
			Columns("path", "subject_key", "spec_name", "format", "width", "height", "byte_size", "created_at").
			Values(v.Path, set.SubjectKey, v.SpecName, string(v.Format), v.Width, v.Height, v.ByteSize, now).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build variant insert for %s: %w", v.Path, err)
		}
		if _, err := tx.Exec(insSQL, insArgs...); err != nil {
			return fmt.Errorf("failed to index variant %s: %w", v.Path, err)
		}
	}

	return tx.Commit()
}

// ListVariantPaths returns the indexed storage paths for a subject
func ListVariantPaths(db *sql.DB, subjectKey string) ([]string, error) {
	querySQL, args, err := psql.Select("path").
		From("variants").
		Where(sq.Eq{"subject_key": subjectKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build variant path query for %s: %w", subjectKey, err)
	}

	rows, err := db.Query(querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variant paths for %s: %w", subjectKey, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan variant path for %s: %w", subjectKey, err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// ListAllVariantPaths returns every indexed storage path, for the orphan sweep
func ListAllVariantPaths(db *sql.DB) (map[string]bool, error) {
	querySQL, args, err := psql.Select("path").From("variants").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build variant path query: %w", err)
	}

	rows, err := db.Query(querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variant paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]bool)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan variant path: %w", err)
		}
		paths[path] = true
	}
	return paths, rows.Err()
}

// DeleteVariantPaths removes index rows for the given storage paths
func DeleteVariantPaths(db *sql.DB, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	delSQL, args, err := psql.Delete("variants").
		Where(sq.Eq{"path": paths}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build variant path delete: %w", err)
	}
	if _, err := db.Exec(delSQL, args...); err != nil {
		return fmt.Errorf("failed to delete variant index rows: %w", err)
	}
	return nil
}
