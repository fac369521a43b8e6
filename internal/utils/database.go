package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	sqliteDataSourcePrefix = "data source="
	slowQueryThreshold     = 200 * time.Millisecond
)

// InitDatabase opens the credential store. PostgreSQL URLs and keyword/value
// DSNs go to the postgres driver; anything else is treated as an SQLite
// file, including the "Data Source=<file>" form and ":memory:". gorm's own
// messages go to log; a nil log discards them.
func InitDatabase(connectionString string, log *zap.Logger) (*gorm.DB, error) {
	dialector := dialectorFor(connectionString)
	db, err := gorm.Open(dialector, gormConfig(log))
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer, and an in-memory database lives only as
	// long as its one connection.
	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// PingDatabase reports whether the underlying connection pool is reachable.
func PingDatabase(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func dialectorFor(connectionString string) gorm.Dialector {
	cs := strings.TrimSpace(connectionString)
	if isPostgres(cs) {
		return postgres.Open(cs)
	}
	if strings.HasPrefix(strings.ToLower(cs), sqliteDataSourcePrefix) {
		cs = strings.TrimSpace(cs[len(sqliteDataSourcePrefix):])
	}
	return sqlite.Open(cs)
}

func isPostgres(cs string) bool {
	lower := strings.ToLower(cs)
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=")
}

func gormConfig(log *zap.Logger) *gorm.Config {
	if log == nil {
		log = zap.NewNop()
	}
	return &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
		Logger: logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}
