package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tarjama/api/internal/auth"
	"github.com/tarjama/api/internal/model"
)

func seedSessionUser(t *testing.T, db *gorm.DB) model.User {
	t.Helper()
	user := model.User{
		ID:         1,
		Provider:   "google",
		ProviderID: "p1",
		Email:      "editor@example.com",
		Role:       model.RoleArabicEditor,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestRefreshTokenMintsAccessToken(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user := seedSessionUser(t, db)

	require.NoError(t, db.Create(&model.RefreshToken{
		UserID:    user.ID,
		Token:     "live-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	w := doJSON(t, r, http.MethodPost, "/auth/refresh", "", h{"refreshToken": "live-token"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, int(auth.AccessTokenExpiry.Seconds()), resp.ExpiresIn)

	claims, err := auth.ValidateAccessToken(resp.AccessToken, testJWTSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, model.RoleArabicEditor, claims.Role)
}

func TestRefreshTokenRejectsDeadTokens(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user := seedSessionUser(t, db)

	tokens := []model.RefreshToken{
		{UserID: user.ID, Token: "expired-token", ExpiresAt: time.Now().Add(-time.Hour)},
		{UserID: user.ID, Token: "revoked-token", ExpiresAt: time.Now().Add(time.Hour), Revoked: true},
	}
	for i := range tokens {
		require.NoError(t, db.Create(&tokens[i]).Error)
	}

	w := doJSON(t, r, http.MethodPost, "/auth/refresh", "", h{"refreshToken": "expired-token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", "", h{"refreshToken": "revoked-token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", "", h{"refreshToken": "never-issued"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", "", h{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	user := seedSessionUser(t, db)

	require.NoError(t, db.Create(&model.RefreshToken{
		UserID:    user.ID,
		Token:     "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	w := doJSON(t, r, http.MethodPost, "/auth/logout", "", h{"refreshToken": "session-token"})
	require.Equal(t, http.StatusOK, w.Code)

	var stored model.RefreshToken
	require.NoError(t, db.Where("token = ?", "session-token").First(&stored).Error)
	require.True(t, stored.Revoked)

	// A revoked session cannot mint access tokens anymore
	w = doJSON(t, r, http.MethodPost, "/auth/refresh", "", h{"refreshToken": "session-token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
