package domain

import "strings"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole uppercases s; anything but ADMIN is a member.
func ParseRole(s string) Role {
	if Role(strings.ToUpper(s)) == RoleAdmin {
		return RoleAdmin
	}

	return RoleMember
}

type Difficulty string

const (
	DifficultyEasy     Difficulty = "Facile"
	DifficultyMedium   Difficulty = "Moyen"
	DifficultyHardcore Difficulty = "Hardcore"
)

func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(s); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHardcore:
		return d
	default:
		return DifficultyMedium
	}
}

type AppTheme string

const (
	ThemeNeon    AppTheme = "neon"
	ThemeGold    AppTheme = "gold"
	ThemeOcean   AppTheme = "ocean"
	ThemeCrimson AppTheme = "crimson"
	ThemeFrost   AppTheme = "frost"
)

var AppThemes = []AppTheme{ThemeNeon, ThemeGold, ThemeOcean, ThemeCrimson, ThemeFrost}

func ParseAppTheme(s string) AppTheme {
	return parseEnum(s, AppThemes, ThemeNeon)
}

type ProfileTheme string

var ProfileThemes = []ProfileTheme{"midnight", "sunset", "emerald", "aurora", "obsidian"}

func ParseProfileTheme(s string) ProfileTheme {
	return parseEnum(s, ProfileThemes, ProfileThemes[0])
}

type NameStyle string

var NameStyles = []NameStyle{"default", "sunfire", "aqua", "royal", "rainbow"}

func ParseNameStyle(s string) NameStyle {
	return parseEnum(s, NameStyles, NameStyles[0])
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType reports false for anything but image or video.
func ParseMediaType(s string) (MediaType, bool) {
	switch t := MediaType(strings.ToLower(strings.TrimSpace(s))); t {
	case MediaImage, MediaVideo:
		return t, true
	default:
		return "", false
	}
}

const (
	NotificationInfo        = "info"
	NotificationMessage     = "message"
	NotificationPost        = "post"
	NotificationItem        = "item"
	NotificationAchievement = "achievement"
)

func parseEnum[T ~string](s string, allowed []T, fallback T) T {
	for _, v := range allowed {
		if string(v) == s {
			return v
		}
	}

	return fallback
}
