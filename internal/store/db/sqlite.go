package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/util"
	"github.com/shelfdesk/shelfdesk/internal/version"
)

const driverName = "sqlite"

type DB struct {
	*sqlx.DB
	path string
}

func init() {
	util.RegisterSQLFunctions()
}

// DSN builds the connection string for the database file at path. Foreign keys
// are enforced on every connection and transactions take the write lock when
// they begin, whatever a file: URI asks for. busy_timeout and WAL are added
// when the URI does not set them.
func DSN(path string) (string, error) {
	file, rawQuery, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", errors.Wrapf(err, "invalid database uri %q", path)
	}

	pragmas := []string{"foreign_keys(1)"}
	seen := map[string]bool{}
	for _, pragma := range query["_pragma"] {
		name, _, _ := strings.Cut(strings.ToLower(pragma), "(")
		name = strings.TrimSpace(name)
		if name == "foreign_keys" {
			continue
		}
		seen[name] = true
		pragmas = append(pragmas, pragma)
	}
	if !seen["busy_timeout"] {
		pragmas = append(pragmas, "busy_timeout(5000)")
	}
	if !seen["journal_mode"] {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}
	query["_pragma"] = pragmas
	query.Set("_txlock", "immediate")

	return "file:" + file + "?" + query.Encode(), nil
}

// filePath strips the file: scheme and URI parameters from path.
func filePath(path string) string {
	file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	return file
}

func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("Database path is required")
	}
	dsn, err := DSN(path)
	if err != nil {
		return nil, err
	}

	d, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, store.NewStorageUnavailableError("open", err)
	}
	if err := d.Ping(); err != nil {
		d.Close()
		return nil, store.NewStorageUnavailableError("open", err)
	}

	return &DB{DB: d, path: filePath(path)}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}

//go:embed migration
var migrationFS embed.FS

const latestSchemaFileName = "LATEST_SCHEMA.sql"

// Migrate brings the schema up to the current version. A file without
// migration_history but with circulation tables predates the history and is
// migrated from scratch.
func (d *DB) Migrate(ctx context.Context) error {
	target := version.GetSchemaVersion(version.GetCurrentVersion())
	log.Info("Migrate database", zap.String("schema", target), zap.String("path", d.path))

	tracked, err := d.CheckTableExists(ctx, historyTable)
	if err != nil {
		return errors.Wrap(err, "failed to check database table")
	}
	if !tracked {
		legacy, err := d.CheckTableExists(ctx, "book")
		if err != nil {
			return errors.Wrap(err, "failed to check database table")
		}
		if legacy {
			return d.migrateFrom(ctx, "0.0.0", target)
		}
		if err := d.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		return d.RecordSchema(ctx, target)
	}

	applied, err := d.latestSchema(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read migration history")
	}
	if applied == "" {
		applied = "0.0.0"
	}
	if !version.IsVersionGreaterThan(target, applied) {
		return nil
	}
	return d.migrateFrom(ctx, applied, target)
}

// migrateFrom applies every minor version directory newer than from and not
// newer than to. A backup of the database is taken first and removed on success.
func (d *DB) migrateFrom(ctx context.Context, from, to string) error {
	backupPath := filepath.Join(filepath.Dir(d.path), fmt.Sprintf("shelfdesk_%s_%d_backup.db", from, time.Now().Unix()))
	if _, err := d.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return errors.Wrap(err, "failed to write backup database file")
	}
	log.Info("Backup database file", zap.String("path", backupPath))
	log.Info("Start migration", zap.String("from", from), zap.String("to", to))

	for _, minorVersion := range getMinorVersionList() {
		// Patch releases never change the schema.
		normalizedVersion := minorVersion + ".0"
		if version.IsVersionGreaterThan(normalizedVersion, from) && version.IsVersionGreaterOrEqualThan(to, normalizedVersion) {
			log.Info("Applying migration", zap.String("version", normalizedVersion))
			if err := d.applyMigrationForMinorVersion(ctx, minorVersion); err != nil {
				return errors.Wrapf(err, "failed to apply minor version migration, backup kept at %s", backupPath)
			}
		}
	}
	log.Info("End migrate")

	if err := os.Remove(backupPath); err != nil {
		log.Warn("Failed to remove backup database file", zap.Error(err))
	}
	return nil
}

func (d *DB) applyLatestSchema(ctx context.Context) error {
	name := "migration/" + latestSchemaFileName
	buf, err := migrationFS.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "failed to read %q", name)
	}
	return d.execute(ctx, string(buf))
}

func (d *DB) applyMigrationForMinorVersion(ctx context.Context, minorVersion string) error {
	filenames, err := fs.Glob(migrationFS, fmt.Sprintf("migration/%s/*.sql", minorVersion))
	if err != nil {
		return errors.Wrapf(err, "failed to find migration files for version %s", minorVersion)
	}

	// 10001_x.sql runs before 10002_y.sql.
	slices.Sort(filenames)

	for _, filename := range filenames {
		buf, err := migrationFS.ReadFile(filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file %q", filename)
		}
		if err := d.execute(ctx, string(buf)); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s", filename)
		}
	}

	return d.RecordSchema(ctx, minorVersion+".0")
}

// execute runs a SQL script within a transaction.
func (d *DB) execute(ctx context.Context, stmt string) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute script")
	}
	return tx.Commit()
}

var minorDirRegexp = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// getMinorVersionList returns the embedded migration directories in version order.
func getMinorVersionList() []string {
	entries, err := migrationFS.ReadDir("migration")
	if err != nil {
		panic(err)
	}
	list := []string{}
	for _, entry := range entries {
		if entry.IsDir() && minorDirRegexp.MatchString(entry.Name()) {
			list = append(list, entry.Name())
		}
	}
	sort.Sort(version.SortVersion(list))
	return list
}
