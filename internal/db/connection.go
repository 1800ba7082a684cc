package db

import (
	"fmt"

	"github.com/siddeshwardm/chat-application/config"
	"github.com/siddeshwardm/chat-application/internal/models"
	"github.com/siddeshwardm/chat-application/pkg/log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to Postgres and pings it.
func Open(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is missing")
	}
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return conn, nil
}

// Migrate creates or updates the users and messages tables.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// InitDB opens and migrates the database, exiting the process on failure so
// the API never runs half-configured.
func InitDB(cfg config.Config) *gorm.DB {
	conn, err := Open(cfg)
	if err != nil {
		log.Logger.Fatal().Err(err).Msg("InitDB: database unavailable")
	}
	if err := Migrate(conn); err != nil {
		log.Logger.Fatal().Err(err).Msg("InitDB: migration failed")
	}
	log.Logger.Info().Str("host", cfg.DBHost).Msg("Database connected & migrated")
	return conn
}
