// Package database opens and migrates the portal's sqlite database.
// The handle is returned to the caller and injected into the services
// that need it; there is no package-level instance.
package database

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"

	"modportal/config"
	"modportal/database/model"
	"modportal/util/common"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func migrate(db *gorm.DB) error {
	models := []any{
		&model.User{},
		&model.Session{},
		&model.AuditLog{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}

// Open opens the sqlite database at dbPath, applies pragmas and runs
// the schema migration.
func Open(dbPath string) (*gorm.DB, error) {
	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return nil, common.NewErrorf("create database folder %s: %v", dir, err)
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err := gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA cache_size = -64000;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA foreign_keys = ON;",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, err
		}
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Close checkpoints the WAL and closes the underlying connection.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	_ = db.Exec("PRAGMA wal_checkpoint;").Error

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsNotFound reports whether err is gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err is a sqlite unique index
// violation. Uniqueness of username and badge number is enforced by the
// store, so concurrent creates lose here rather than corrupting state.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
