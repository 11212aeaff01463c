package db

import (
	"context"
	"database/sql"
	"sort"

	"github.com/doug-martin/goqu/v9"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/version"
)

const historyTable = "migration_history"

var dialect = goqu.Dialect("sqlite3")

// AppliedSchema is one schema version recorded in migration_history.
type AppliedSchema struct {
	Version   string `db:"version"`
	CreatedTs int64  `db:"created_ts"`
}

// RecordSchema marks version as applied. Recording the same version again
// keeps its original timestamp.
func (d *DB) RecordSchema(ctx context.Context, schemaVersion string) error {
	query, args, err := dialect.Insert(historyTable).Prepared(true).
		Rows(goqu.Record{"version": schemaVersion}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "failed to build migration history insert")
	}
	if _, err := d.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "failed to record schema %s", schemaVersion)
	}
	return nil
}

// AppliedSchemas lists recorded versions, lowest version first.
func (d *DB) AppliedSchemas(ctx context.Context) ([]*AppliedSchema, error) {
	query, args, err := dialect.From(historyTable).Prepared(true).
		Select("version", "created_ts").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build migration history query")
	}
	list := make([]*AppliedSchema, 0)
	if err := d.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		return version.IsVersionGreaterThan(list[j].Version, list[i].Version)
	})
	return list, nil
}

// latestSchema returns the highest recorded version, "" when none is recorded.
func (d *DB) latestSchema(ctx context.Context) (string, error) {
	list, err := d.AppliedSchemas(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[len(list)-1].Version, nil
}

func (d *DB) CheckTableExists(ctx context.Context, tableName string) (bool, error) {
	var name string
	err := d.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
