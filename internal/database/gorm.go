package database

import (
	"fmt"

	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"docscan/internal/config"
)

// NewGorm opens a GORM connection for the configured driver on top of the same
// instrumented, pooled *sql.DB that Open returns, so queries keep their DB spans.
// SQL statements are logged only when c.Debug is set.
func NewGorm(c config.DatabaseConfig) (*gorm.DB, error) {
	sqlDB, dialect, err := Open(c)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = gormpostgres.New(gormpostgres.Config{Conn: sqlDB})
	default:
		dialector = gormsqlite.New(gormsqlite.Config{Conn: sqlDB})
	}

	logLevel := logger.Silent
	if c.Debug {
		logLevel = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	return gdb, nil
}
