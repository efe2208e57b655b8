package repository

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

var (
	aiLabelExp    = regexp2.MustCompile(`\s*\(sans\s*ia\)\s*`, regexp2.IgnoreCase)
	whitespaceExp = regexp2.MustCompile(`\s{2,}`, regexp2.None)
)

// Normalizer coerces any decoded JSON value into a valid Document. It never fails.
type Normalizer struct {
	Now   func() time.Time
	NewID func(prefix string) string
	Hash  func(password string) (string, error)
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Now:   time.Now,
		NewID: GenerateID,
		Hash:  HashPassword,
	}
}

// GenerateID returns "<prefix>_<unix seconds>_<8 hex chars>".
func GenerateID(prefix string) string {
	id := uuid.New()

	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().Unix(), hex.EncodeToString(id[:4]))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Default is the document served when storage is empty or unreadable.
func (n *Normalizer) Default() domain.Document {
	return domain.Document{
		Users:              domain.DefaultUsers(n.adminHash()),
		Parties:            []domain.Party{},
		Posts:              []domain.Post{},
		Challenges:         domain.SeedChallenges(),
		Settings:           domain.Settings{IsMapEnabled: true},
		Activity:           []domain.ActivityEntry{},
		Notifications:      []domain.Notification{},
		AchievementLibrary: []domain.Achievement{},
	}
}

// NormalizeDocument re-runs normalization over an already typed document.
func (n *Normalizer) NormalizeDocument(doc domain.Document) domain.Document {
	body, err := json.Marshal(doc)
	if err != nil {
		zap.L().Error("n.NormalizeDocument -> json.Marshal", zap.Error(err))
		return n.Default()
	}

	raw, err := decodeRaw(body)
	if err != nil {
		return n.Default()
	}

	return n.Normalize(raw)
}

func decodeRaw(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return raw, nil
}

func (n *Normalizer) Normalize(raw any) domain.Document {
	input, ok := raw.(map[string]any)
	if !ok {
		return n.Default()
	}

	doc := domain.Document{
		Users:              n.users(input),
		Parties:            make([]domain.Party, 0),
		Posts:              make([]domain.Post, 0),
		Challenges:         n.challenges(input),
		Settings:           domain.Settings{IsMapEnabled: true},
		Activity:           make([]domain.ActivityEntry, 0),
		Notifications:      make([]domain.Notification, 0),
		AchievementLibrary: make([]domain.Achievement, 0),
	}

	for _, p := range objects(input, "parties") {
		doc.Parties = append(doc.Parties, n.party(p))
	}
	for _, p := range objects(input, "posts") {
		doc.Posts = append(doc.Posts, n.post(p))
	}
	if settings, ok := input["settings"].(map[string]any); ok {
		doc.Settings.IsMapEnabled = boolean(settings, true, "isMapEnabled")
	}
	for _, a := range objects(input, "activity") {
		doc.Activity = append(doc.Activity, n.activity(a))
	}
	for _, nt := range objects(input, "notifications") {
		doc.Notifications = append(doc.Notifications, n.notification(nt))
	}
	for _, msg := range objects(input, "messages") {
		toUserID := strings.TrimSpace(str(msg, "", "toUserId"))
		if toUserID == "" {
			continue
		}
		doc.Notifications = append(doc.Notifications, n.notification(map[string]any{
			"toUserId":  toUserID,
			"type":      domain.NotificationMessage,
			"title":     "Message",
			"body":      str(msg, "", "text"),
			"createdAt": integer(msg, n.Now().Unix(), "timestamp"),
		}))
	}
	for _, a := range objects(input, "achievementLibrary") {
		doc.AchievementLibrary = append(doc.AchievementLibrary, n.achievement(a))
	}

	return doc
}

func (n *Normalizer) users(input map[string]any) []domain.User {
	users := make([]domain.User, 0)
	for _, u := range objects(input, "users") {
		users = append(users, n.user(u))
	}

	if len(users) == 0 {
		return domain.DefaultUsers(n.adminHash())
	}

	for _, u := range users {
		if u.IsAdmin() {
			return users
		}
	}

	return append(users, domain.DefaultAdmin(n.adminHash()))
}

func (n *Normalizer) adminHash() string {
	hash, err := n.Hash(domain.DefaultAdminPassword)
	if err != nil {
		zap.L().Error("n.adminHash -> n.Hash", zap.Error(err))
		return ""
	}

	return hash
}

func (n *Normalizer) user(m map[string]any) domain.User {
	role := domain.ParseRole(str(m, string(domain.RoleMember), "role"))

	name := domain.CutTrim(str(m, "Membre", "name"), domain.MaxUserName)
	if name == "" {
		name = "Membre"
	}

	var passwordHash *string
	if hash := str(m, "", "password_hash", "passwordHash"); hash != "" {
		passwordHash = &hash
	} else if legacy := str(m, "", "password"); legacy != "" {
		hash, err := n.Hash(legacy)
		if err != nil {
			zap.L().Warn("failed to hash legacy password", zap.Error(err))
		} else {
			passwordHash = &hash
		}
	}

	mustSetPassword := boolean(m, false, "must_set_password", "mustSetPassword")
	if role == domain.RoleMember && passwordHash == nil {
		mustSetPassword = true
	}

	inventory := make([]domain.Item, 0)
	for _, it := range objects(m, "inventory") {
		inventory = append(inventory, n.item(it))
	}

	achievements := make([]domain.Achievement, 0)
	for _, a := range objects(m, "achievements") {
		achievements = append(achievements, n.achievement(a))
	}

	return domain.User{
		ID:              str(m, n.NewID("u"), "id"),
		Name:            name,
		Role:            role,
		Points:          domain.ClampPoints(int(integer(m, 0, "points"))),
		ClassName:       domain.CutTrim(str(m, domain.DefaultClassName, "className"), domain.MaxClassName),
		Bio:             domain.CutTrim(str(m, "", "bio"), domain.MaxBio),
		AvatarURL:       str(m, domain.SeedAvatar(name), "avatarUrl"),
		Inventory:       inventory,
		Achievements:    achievements,
		PasswordHash:    passwordHash,
		MustSetPassword: mustSetPassword,
		Theme:           domain.ParseAppTheme(str(m, "", "theme")),
		ProfileTheme:    domain.ParseProfileTheme(str(m, "", "profileTheme")),
		NameStyle:       domain.ParseNameStyle(str(m, "", "nameStyle")),
		ProfileTitle:    domain.CutTrim(str(m, "", "profileTitle"), domain.MaxProfileTitle),
		ProfileMotto:    domain.CutTrim(str(m, "", "profileMotto"), domain.MaxProfileMotto),
		FavoriteDrink:   domain.CutTrim(str(m, "", "favoriteDrink"), domain.MaxFavoriteDrink),
		BannerURL:       domain.CutTrim(str(m, "", "bannerUrl"), domain.MaxBannerURL),
	}
}

func (n *Normalizer) item(m map[string]any) domain.Item {
	return domain.Item{
		ID:          str(m, n.NewID("item"), "id"),
		Name:        domain.CutTrim(str(m, "Objet", "name"), domain.MaxItemName),
		Description: domain.CutTrim(str(m, "Objet mysterieux", "description"), domain.MaxItemDescription),
		Rarity:      strings.TrimSpace(str(m, "Commune", "rarity")),
		ImageURL:    str(m, "", "imageUrl"),
		Stats:       str(m, "Special", "stats"),
	}
}

func (n *Normalizer) achievement(m map[string]any) domain.Achievement {
	return domain.Achievement{
		ID:          str(m, n.NewID("ach"), "id"),
		Name:        domain.CutTrim(str(m, "Succes", "name"), domain.MaxAchievementName),
		Description: domain.CutTrim(str(m, "Succes debloque", "description"), domain.MaxAchievementDescription),
		Icon:        domain.CutTrim(str(m, "🏆", "icon"), domain.MaxAchievementIcon),
		UnlockedAt:  integer(m, n.Now().Unix(), "unlockedAt"),
	}
}

func (n *Normalizer) party(m map[string]any) domain.Party {
	party := domain.Party{
		ID:           str(m, n.NewID("party"), "id"),
		Name:         strings.TrimSpace(str(m, "Soiree", "name")),
		Date:         str(m, n.Now().Format(time.DateOnly), "date"),
		LocationName: strings.TrimSpace(str(m, "Lieu inconnu", "locationName")),
		CoverURL:     str(m, "logo.png", "coverUrl"),
		CreatedBy:    str(m, domain.DefaultAdminID, "createdBy"),
	}

	lat, latOK := number(m, "lat")
	lng, lngOK := number(m, "lng")
	if latOK && lngOK {
		party.Lat = &lat
		party.Lng = &lng
	}

	return party
}

func (n *Normalizer) media(m map[string]any) []domain.Media {
	media := make([]domain.Media, 0)

	if list, ok := m["media"].([]any); ok {
		for _, el := range list {
			entry, ok := el.(map[string]any)
			if !ok {
				continue
			}
			mediaType, ok := domain.ParseMediaType(str(entry, "", "type"))
			url := strings.TrimSpace(str(entry, "", "url"))
			if !ok || url == "" {
				continue
			}
			media = append(media, domain.Media{Type: mediaType, URL: url})
		}
	}

	if len(media) == 0 {
		if legacy := strings.TrimSpace(str(m, "", "imageUrl")); legacy != "" {
			media = append(media, domain.Media{Type: domain.MediaImage, URL: legacy})
		}
	}

	if len(media) > domain.MaxPostMedia {
		media = media[:domain.MaxPostMedia]
	}

	return media
}

func (n *Normalizer) post(m map[string]any) domain.Post {
	media := n.media(m)

	imageURL := str(m, "", "imageUrl")
	for _, entry := range media {
		if entry.Type == domain.MediaImage {
			imageURL = entry.URL
			break
		}
	}

	likes := make([]string, 0)
	seen := make(map[string]bool)
	if list, ok := m["likes"].([]any); ok {
		for _, el := range list {
			uid, ok := el.(string)
			if !ok || uid == "" || seen[uid] {
				continue
			}
			seen[uid] = true
			likes = append(likes, uid)
		}
	}

	return domain.Post{
		ID:            str(m, n.NewID("post"), "id"),
		UserID:        str(m, "", "userId"),
		PartyID:       str(m, "", "partyId"),
		ImageURL:      imageURL,
		Media:         media,
		Description:   strings.TrimSpace(str(m, "", "description")),
		PointsAwarded: int(integer(m, 0, "pointsAwarded")),
		GMComment:     StripAILabel(str(m, "Post publie.", "gmComment")),
		Timestamp:     integer(m, n.Now().Unix(), "timestamp"),
		Likes:         likes,
	}
}

// StripAILabel removes the "(sans IA)" marker left in older comments.
func StripAILabel(s string) string {
	cleaned, err := aiLabelExp.Replace(s, " ", -1, -1)
	if err != nil {
		return strings.TrimSpace(s)
	}

	collapsed, err := whitespaceExp.Replace(cleaned, " ", -1, -1)
	if err != nil {
		return strings.TrimSpace(cleaned)
	}

	return strings.TrimSpace(collapsed)
}

func (n *Normalizer) challenges(input map[string]any) []domain.Challenge {
	challenges := make([]domain.Challenge, 0)
	for _, c := range objects(input, "challenges") {
		challenges = append(challenges, n.challenge(c))
	}

	seen := make(map[string]bool, len(challenges))
	for _, c := range challenges {
		if key := challengeKey(c.Text); key != "" {
			seen[key] = true
		}
	}

	for _, seed := range domain.SeedChallenges() {
		key := challengeKey(seed.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		challenges = append(challenges, seed)
	}

	return challenges
}

func challengeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (n *Normalizer) challenge(m map[string]any) domain.Challenge {
	return domain.Challenge{
		ID:         str(m, n.NewID("challenge"), "id"),
		Text:       domain.CutTrim(str(m, "Defi mystere", "text"), domain.MaxChallengeText),
		Difficulty: domain.ParseDifficulty(strings.TrimSpace(str(m, "", "difficulty"))),
	}
}

func (n *Normalizer) notification(m map[string]any) domain.Notification {
	notification := domain.Notification{
		ID:        str(m, n.NewID("notif"), "id"),
		ToUserID:  str(m, "", "toUserId"),
		Type:      domain.CutTrim(str(m, domain.NotificationInfo, "type"), domain.MaxNotificationType),
		Title:     domain.CutTrim(str(m, "Notification", "title"), domain.MaxNotificationTitle),
		Body:      domain.CutTrim(str(m, "", "body"), domain.MaxNotificationBody),
		CreatedAt: integer(m, n.Now().Unix(), "createdAt"),
	}

	if _, ok := field(m, "readAt"); ok {
		readAt := integer(m, 0, "readAt")
		notification.ReadAt = &readAt
	}

	return notification
}

func (n *Normalizer) activity(m map[string]any) domain.ActivityEntry {
	return domain.ActivityEntry{
		ID:        str(m, n.NewID("act"), "id"),
		Type:      str(m, "event", "type"),
		By:        str(m, "", "by"),
		Target:    str(m, "", "target"),
		Delta:     int(integer(m, 0, "delta")),
		Reason:    domain.Cut(str(m, "", "reason"), domain.MaxActivityReason),
		Timestamp: integer(m, n.Now().Unix(), "timestamp"),
	}
}
