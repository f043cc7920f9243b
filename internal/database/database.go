package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tarjama/api/internal/config"
	"github.com/tarjama/api/internal/model"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Playlist{},
		&model.Video{},
		&model.Transcript{},
		&model.Task{},
		&model.ReportedIssue{},
	)
	if err != nil {
		return err
	}

	// A transcript is unique per (video, language)
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_transcripts_video_language ON transcripts(video_id, language)")

	// Create unique index for users (provider, provider_id)
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_provider_id ON users(provider, provider_id)")

	return nil
}
