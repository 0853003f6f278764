package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormConnection opens the PostgreSQL pool through lib/pq and hands it to
// GORM. The returned handle is the process-wide persistence gateway: create it
// once at startup, inject it into repositories and release it with Close.
func NewGormConnection(cfg Config) (*gorm.DB, error) {
	sqlDB, err := NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Reuse the pooled connection
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig(cfg))
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return db, nil
}

// GormConfig returns the GORM settings shared by every dialect.
func GormConfig(cfg Config) *gorm.Config {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}
	return &gorm.Config{
		Logger:         NewGormLogger(cfg.SlowThreshold).LogMode(level),
		TranslateError: true,
	}
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
