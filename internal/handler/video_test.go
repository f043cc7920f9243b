package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarjama/api/internal/cache"
	"github.com/tarjama/api/internal/model"
)

func TestVideoDeleteInvalidatesViewerCache(t *testing.T) {
	db := newTestDB(t)
	memCache := newMemoryCache()
	r := newTestRouterWithCache(db, memCache)
	video := createTestVideo(t, db, "vid-del-cache", model.VideoStatusPublic)
	editor := tokenFor(t, 1, model.RoleArabicEditor)
	admin := tokenFor(t, 2, model.RoleAdmin)
	key := cache.TranscriptKey(video.ID, "ar")

	w := doJSON(t, r, http.MethodPost, "/api/videos/"+video.ID+"/transcripts/ar/import", editor,
		h{"srt": sampleSRT})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/videos/"+video.ID+"/transcripts/ar/publish", editor, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/public/videos/"+video.ID+"/transcript?language=ar", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, memCache.has(key))

	w = doJSON(t, r, http.MethodDelete, "/api/videos/"+video.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.False(t, memCache.has(key))

	// Transcripts are gone with the video
	var count int64
	db.Model(&model.Transcript{}).Where("video_id = ?", video.ID).Count(&count)
	require.Zero(t, count)

	w = doJSON(t, r, http.MethodGet, "/api/public/videos/"+video.ID+"/transcript?language=ar", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestVideoDeleteRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	video := createTestVideo(t, db, "vid-del-role", model.VideoStatusPublic)
	editor := tokenFor(t, 1, model.RoleArabicEditor)

	w := doJSON(t, r, http.MethodDelete, "/api/videos/"+video.ID, editor, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	db.Model(&model.Video{}).Count(&count)
	require.Equal(t, int64(1), count)
}
