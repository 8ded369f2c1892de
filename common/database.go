package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the sqlite database at path and keeps it as the shared handle.
func Init(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	DB = db
	return DB, nil
}

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// sqlite allows a single writer; commit batches fan out goroutines that would
	// otherwise hit "database is locked".
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// GetDB returns the shared database handle.
func GetDB() *gorm.DB {
	return DB
}

// TestDBInit opens a private in-memory database for a test and installs it as
// the shared handle.
func TestDBInit(name string) *gorm.DB {
	db, err := open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		panic(err)
	}
	DB = db
	return DB
}

// TestDBFree closes a database opened by TestDBInit.
func TestDBFree(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
