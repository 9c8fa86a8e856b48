package database

import (
	"strings"
	"time"

	"digital-advisor/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/migrator"
	"gorm.io/gorm/schema"
)

// Open opens the ledger store: Postgres when a DSN is configured, otherwise a
// local SQLite file. PreferSimpleProtocol disables prepared statement caching to
// avoid 42P05 ("prepared statement already exists") behind connection poolers.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	if dsn == "" {
		return OpenSQLite(sqlitePath)
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
}

// OpenSQLite opens a SQLite database (":memory:" in tests). SQLite has a single
// writer and no row locks, so the pool is pinned to one connection; concurrent
// ledger transactions then queue on it instead of failing with SQLITE_BUSY.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(exactSQLite{sqlite.Dialector{DSN: path}}, gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// exactSQLite stores decimal columns as TEXT. SQLite gives decimal(p,s) NUMERIC
// affinity, which coerces balances and volumes to lossy REAL values.
type exactSQLite struct {
	sqlite.Dialector
}

func (d exactSQLite) DataTypeOf(field *schema.Field) string {
	if strings.HasPrefix(strings.ToLower(string(field.DataType)), "decimal") {
		return "text"
	}
	return d.Dialector.DataTypeOf(field)
}

func (d exactSQLite) Migrator(db *gorm.DB) gorm.Migrator {
	return sqlite.Migrator{Migrator: migrator.Migrator{Config: migrator.Config{
		DB:                          db,
		Dialector:                   d,
		CreateIndexAfterCreateTable: true,
	}}}
}

// sqlLogWriter forwards gorm's slow-query and error lines to zerolog.
type sqlLogWriter struct{}

func (sqlLogWriter) Printf(format string, args ...interface{}) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}

// Missing rows are an expected outcome of lookups and are not logged.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(sqlLogWriter{}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}
