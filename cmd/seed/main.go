package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/tarjama/api/internal/config"
	"github.com/tarjama/api/internal/database"
	"github.com/tarjama/api/internal/model"
)

func main() {
	// Parse command line flags
	filePath := flag.String("file", "data/videos.txt", "Path to YouTube ID list file")
	playlistName := flag.String("playlist", "", "Playlist to attach the videos to (created if missing)")
	flag.Parse()

	log.Printf("Seeding videos from %s", *filePath)

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migration
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Load YouTube IDs from file
	ids, err := loadIDList(*filePath)
	if err != nil {
		log.Fatalf("Failed to load ID list: %v", err)
	}

	log.Printf("Loaded %d video IDs from file", len(ids))

	var playlistID *int64
	if *playlistName != "" {
		playlistID = findOrCreatePlaylist(db, *playlistName)
	}

	inserted, skipped := seedVideos(db, ids, playlistID)
	log.Printf("Seeding complete. Inserted: %d, Skipped: %d", inserted, skipped)
}

func loadIDList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}

	return ids, scanner.Err()
}

func findOrCreatePlaylist(db *gorm.DB, name string) *int64 {
	var playlist model.Playlist
	result := db.Where("name = ?", name).First(&playlist)
	if result.Error != nil {
		playlist = model.Playlist{Name: name}
		if err := db.Create(&playlist).Error; err != nil {
			log.Fatalf("Failed to create playlist %q: %v", name, err)
		}
		log.Printf("Created playlist %q (id=%d)", name, playlist.ID)
	}
	return &playlist.ID
}

func seedVideos(db *gorm.DB, ids []string, playlistID *int64) (inserted int, skipped int) {
	for position, youtubeID := range ids {
		result := db.Exec(`
			INSERT INTO videos (id, youtube_id, playlist_id, position, status, created_at, updated_at)
			VALUES (gen_random_uuid(), ?, ?, ?, ?, NOW(), NOW())
			ON CONFLICT (youtube_id) DO NOTHING
		`, youtubeID, playlistID, position+1, model.VideoStatusProcessing)

		if result.Error != nil {
			log.Printf("Error inserting video %s: %v", youtubeID, result.Error)
			skipped++
			continue
		}

		if result.RowsAffected > 0 {
			inserted++
		} else {
			skipped++
		}
	}

	return inserted, skipped
}
