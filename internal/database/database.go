package database

import (
	"fmt"
	"log/slog"

	"github.com/agentarium/agentarium/internal/config"
	"github.com/agentarium/agentarium/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey so handlers can branch on them.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	slog.Info("Database connected", "host", cfg.DBHost, "db", cfg.DBName)
	return nil
}

func Migrate() error {
	return MigrateOn(DB)
}

// MigrateOn runs auto-migration against an arbitrary connection.
// Tests use it with an in-memory sqlite database.
func MigrateOn(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Agent{},
		&models.SavedAgent{},
		&models.SimulationState{},
		&models.ConversationRound{},
		&models.ObserverMessage{},
	)
}
