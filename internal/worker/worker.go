package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tarjama/api/internal/client"
	"github.com/tarjama/api/internal/model"
)

// MaintenanceWorker periodically resolves metadata for videos stuck in
// processing and sweeps dead refresh tokens.
type MaintenanceWorker struct {
	db       *gorm.DB
	youtube  *client.YouTubeClient
	interval time.Duration
	running  bool
	lastRun  time.Time
	promoted int64
	mu       sync.Mutex
	stopChan chan struct{}
}

type Config struct {
	Interval time.Duration
}

func NewMaintenanceWorker(db *gorm.DB, youtube *client.YouTubeClient, cfg Config) *MaintenanceWorker {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}

	return &MaintenanceWorker{
		db:       db,
		youtube:  youtube,
		interval: cfg.Interval,
		stopChan: make(chan struct{}),
	}
}

func (w *MaintenanceWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	log.Printf("[Worker] Starting with interval %v", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Worker] Context cancelled, stopping")
			return
		case <-w.stopChan:
			log.Println("[Worker] Stop signal received")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *MaintenanceWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		close(w.stopChan)
		w.running = false
		log.Println("[Worker] Stopped")
	}
}

func (w *MaintenanceWorker) sweep(ctx context.Context) {
	w.mu.Lock()
	w.lastRun = time.Now()
	w.mu.Unlock()

	w.promoteProcessingVideos(ctx)
	w.deleteDeadRefreshTokens()
}

func (w *MaintenanceWorker) promoteProcessingVideos(ctx context.Context) {
	if w.youtube == nil {
		return
	}

	var videos []model.Video
	w.db.Where("status = ?", model.VideoStatusProcessing).Limit(50).Find(&videos)

	for _, video := range videos {
		meta, err := w.youtube.GetMetadata(ctx, video.YoutubeID)
		if err != nil {
			// Still private or unavailable; retried next sweep
			log.Printf("[Worker] Metadata not resolved for %s: %v", video.YoutubeID, err)
			continue
		}

		updates := map[string]interface{}{
			"status":        model.VideoStatusPublic,
			"thumbnail_url": meta.ThumbnailURL,
			"updated_at":    time.Now(),
		}
		if video.Title == "" {
			updates["title"] = meta.Title
		}

		if err := w.db.Model(&model.Video{}).Where("id = ?", video.ID).Updates(updates).Error; err != nil {
			log.Printf("[Worker] Failed to promote video %s: %v", video.ID, err)
			continue
		}

		w.mu.Lock()
		w.promoted++
		w.mu.Unlock()

		log.Printf("[Worker] Promoted video %s (%s)", video.ID, video.YoutubeID)

		// Small delay between lookups to avoid rate limiting
		time.Sleep(500 * time.Millisecond)
	}
}

func (w *MaintenanceWorker) deleteDeadRefreshTokens() {
	result := w.db.Where("expires_at < ? OR revoked = true", time.Now()).Delete(&model.RefreshToken{})
	if result.Error != nil {
		log.Printf("[Worker] Failed to sweep refresh tokens: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[Worker] Deleted %d dead refresh tokens", result.RowsAffected)
	}
}

// GetStatus returns current worker status
func (w *MaintenanceWorker) GetStatus() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := map[string]interface{}{
		"running":        w.running,
		"interval":       w.interval.String(),
		"promotedVideos": w.promoted,
	}
	if !w.lastRun.IsZero() {
		status["lastRun"] = w.lastRun
	}
	return status
}
