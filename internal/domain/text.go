package domain

import "strings"

const (
	MaxUserName      = 40
	MaxClassName     = 40
	MaxBio           = 180
	MaxProfileTitle  = 40
	MaxProfileMotto  = 110
	MaxFavoriteDrink = 32
	MaxBannerURL     = 300

	MaxNotificationType  = 20
	MaxNotificationTitle = 80
	MaxNotificationBody  = 220

	MaxActivityReason = 120
	MaxChallengeText  = 180

	MaxItemName        = 40
	MaxItemDescription = 120

	MaxAchievementName        = 50
	MaxAchievementDescription = 120
	MaxAchievementIcon        = 4
)

// Cut truncates s to at most n characters.
func Cut(s string, n int) string {
	if n <= 0 {
		return ""
	}

	var count int
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}

	return s
}

// CutTrim trims, truncates and trims again so the result is stable under reapplication.
func CutTrim(s string, n int) string {
	return strings.TrimSpace(Cut(strings.TrimSpace(s), n))
}
