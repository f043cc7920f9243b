package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tarjama/api/internal/auth"
	"github.com/tarjama/api/internal/middleware"
	"github.com/tarjama/api/internal/model"
)

const testJWTSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Playlist{},
		&model.Video{},
		&model.Transcript{},
		&model.Task{},
		&model.ReportedIssue{},
	))

	return db
}

// memoryCache is an in-process stand-in for the redis viewer cache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return value, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func newTestRouter(db *gorm.DB) *gin.Engine {
	return newTestRouterWithCache(db, nil)
}

// newTestRouterWithCache wires the routes under test with the same middleware
// chain the server uses.
func newTestRouterWithCache(db *gorm.DB, viewerCache ViewerCache) *gin.Engine {
	r := gin.New()

	authHandler := NewAuthHandler(db, testJWTSecret, nil, "", nil)
	videoHandler := NewVideoHandler(db, nil, viewerCache)
	playlistHandler := NewPlaylistHandler(db)
	transcriptHandler := NewTranscriptHandler(db, viewerCache)
	taskHandler := NewTaskHandler(db)
	publicHandler := NewPublicHandler(db, viewerCache)
	adminHandler := NewAdminHandler(db)

	r.POST("/auth/refresh", authHandler.RefreshToken)
	r.POST("/auth/logout", authHandler.Logout)

	public := r.Group("/api/public")
	{
		public.GET("/playlists", publicHandler.ListPlaylists)
		public.GET("/playlists/:id", publicHandler.GetPlaylist)
		public.GET("/videos/:id", publicHandler.GetVideo)
		public.GET("/videos/:id/transcript", publicHandler.GetTranscript)
		public.POST("/issues", publicHandler.ReportIssue)
	}

	editorRoles := []string{model.RoleAdmin, model.RoleArabicEditor, model.RoleTranslationsEditor}

	api := r.Group("/api", middleware.AuthMiddleware(testJWTSecret))
	{
		api.GET("/videos", videoHandler.List)
		api.GET("/videos/:id", videoHandler.Get)
		api.POST("/videos", middleware.RequireRole(model.RoleAdmin), videoHandler.Create)
		api.PUT("/videos/:id", middleware.RequireRole(model.RoleAdmin), videoHandler.Update)
		api.DELETE("/videos/:id", middleware.RequireRole(model.RoleAdmin), videoHandler.Delete)

		api.GET("/playlists", playlistHandler.List)
		api.GET("/playlists/:id", playlistHandler.Get)
		api.POST("/playlists", middleware.RequireRole(model.RoleAdmin), playlistHandler.Create)
		api.PUT("/playlists/:id/videos", middleware.RequireRole(model.RoleAdmin), playlistHandler.SetVideos)

		api.GET("/videos/:id/transcripts", transcriptHandler.List)
		api.GET("/videos/:id/transcripts/:language", middleware.RequireRole(editorRoles...), transcriptHandler.Get)
		api.PUT("/videos/:id/transcripts/:language/draft", middleware.RequireRole(editorRoles...), transcriptHandler.SaveDraft)
		api.POST("/videos/:id/transcripts/:language/publish", middleware.RequireRole(editorRoles...), transcriptHandler.Publish)
		api.POST("/videos/:id/transcripts/:language/discard", middleware.RequireRole(editorRoles...), transcriptHandler.DiscardDraft)
		api.POST("/videos/:id/transcripts/:language/import", middleware.RequireRole(editorRoles...), transcriptHandler.ImportSRT)
		api.GET("/videos/:id/transcripts/:language/export", transcriptHandler.ExportSRT)
		api.PUT("/videos/:id/transcripts/:language/status", middleware.RequireRole(model.RoleAdmin), transcriptHandler.UpdateStatus)

		tasks := api.Group("/tasks", middleware.RequireRole(editorRoles...))
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
		}

		admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			admin.GET("/issues", adminHandler.ListIssues)
			admin.PUT("/issues/:id", adminHandler.ReviewIssue)
		}
	}

	return r
}

func tokenFor(t *testing.T, userID int64, role string) string {
	t.Helper()

	token, err := auth.GenerateAccessToken(&model.User{
		ID:    userID,
		Email: fmt.Sprintf("user%d@example.com", userID),
		Role:  role,
	}, testJWTSecret)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func createTestVideo(t *testing.T, db *gorm.DB, youtubeID, status string) model.Video {
	t.Helper()

	video := model.Video{
		YoutubeID: youtubeID,
		Title:     "Video " + youtubeID,
		Status:    status,
	}
	require.NoError(t, db.Create(&video).Error)
	return video
}
