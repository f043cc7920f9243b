package model

import "time"

type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Provider   string    `gorm:"not null;size:20" json:"provider"`
	ProviderID string    `gorm:"not null;size:255" json:"providerId"`
	Email      string    `gorm:"not null;size:255" json:"email"`
	Name       string    `gorm:"size:255" json:"name"`
	AvatarURL  string    `json:"avatarUrl"`
	Role       string    `gorm:"not null;default:'viewer';size:40" json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleAdmin              = "admin"
	RoleArabicEditor       = "arabic_transcripts_editor"
	RoleTranslationsEditor = "translations_editor"
	RoleViewer             = "viewer"
)

// ArabicLanguage is the language code of original transcripts.
const ArabicLanguage = "ar"

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleArabicEditor, RoleTranslationsEditor, RoleViewer:
		return true
	}
	return false
}

// CanEditLanguage reports whether a role may edit transcripts in the given
// language. Arabic editors own the originals, translations editors own
// everything else, admins own both.
func CanEditLanguage(role, language string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleArabicEditor:
		return language == ArabicLanguage
	case RoleTranslationsEditor:
		return language != ArabicLanguage
	}
	return false
}
