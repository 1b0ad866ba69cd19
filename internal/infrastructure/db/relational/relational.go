// Package relational stores accounts in PostgreSQL or SQLite through gorm.
// The schema is owned by the embedded goose migrations.
package relational

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// gooseUp is swapped in tests.
var gooseUp = goose.UpContext

// Config describes how to reach the database.
type Config struct {
	Driver     string
	DSN        string // postgres connection string
	SQLitePath string
	Timeout    time.Duration
}

// Open connects, configures the pool, pings, and applies pending migrations.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("relational: DATABASE_URL is empty")
		}
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite, "":
		dialector = sqlite.Open(sqliteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("relational: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(printfLogger{log}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("relational: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("relational: get sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg.Driver)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("relational: ping: %w", err)
	}

	if err := migrate(ctx, sqlDB, cfg.Driver, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info().Str("driver", driverName(cfg.Driver)).Msg("relational store ready")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func migrate(ctx context.Context, db *sql.DB, driver string, log zerolog.Logger) error {
	dir, dialect := "migrations/sqlite", "sqlite3"
	if driver == DriverPostgres {
		dir, dialect = "migrations/postgres", "postgres"
	}

	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("relational: migrations fs: %w", err)
	}
	goose.SetBaseFS(sub)
	goose.SetLogger(printfLogger{log})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("relational: goose dialect: %w", err)
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("relational: migrate: %w", err)
	}
	return nil
}

func configurePool(sqlDB *sql.DB, driver string) {
	if driver != DriverPostgres {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		return
	}

	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func sqliteDSN(path string) string {
	if path == "" {
		path = "tickets.db"
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)"
}

func driverName(d string) string {
	if d == "" {
		return DriverSQLite
	}
	return d
}

// printfLogger routes goose and gorm output through zerolog.
type printfLogger struct {
	log zerolog.Logger
}

func (l printfLogger) Printf(format string, v ...any) {
	l.log.Info().Msgf(strings.TrimSpace(format), v...)
}

func (l printfLogger) Fatalf(format string, v ...any) {
	l.log.Error().Msgf(strings.TrimSpace(format), v...)
}
