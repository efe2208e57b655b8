package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestNormalizer() *Normalizer {
	var seq atomic.Int64
	now := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)

	return &Normalizer{
		Now: func() time.Time { return now },
		NewID: func(prefix string) string {
			return fmt.Sprintf("%s_%d", prefix, seq.Add(1))
		},
		Hash: func(password string) (string, error) {
			return "hashed:" + password, nil
		},
	}
}

func mustRaw(t *testing.T, s string) any {
	t.Helper()

	raw, err := decodeRaw([]byte(s))
	require.NoError(t, err)

	return raw
}

var malformedInputs = map[string]string{
	"empty object":        `{}`,
	"wrong list types":    `{"users": "nope", "posts": 3, "parties": {"a": 1}, "challenges": null}`,
	"non object elements": `{"users": [1, "x", null, {"id": "u9", "name": "  Zoe  ", "role": "admin"}]}`,
	"legacy shapes": `{
		"users": [{"id": "u1", "name": "Old", "password": "secret", "points": -40}],
		"posts": [{"id": "p1", "userId": "u1", "imageUrl": " pic.jpg ", "likes": ["u2", "u2", "", 4]}],
		"messages": [{"toUserId": "u1", "text": "hello", "timestamp": 12}, {"toUserId": "  ", "text": "dropped"}]
	}`,
	"odd scalars": `{
		"users": [{"id": 42, "name": true, "points": "17abc", "theme": "pink", "must_set_password": "0"}],
		"parties": [{"name": "Fete", "lat": "48.85", "lng": null}, {"name": "Plage", "lat": 43.3, "lng": "5.37"}],
		"notifications": [{"toUserId": "u1", "readAt": "99", "title": "` + strings.Repeat("t", 120) + `"}],
		"settings": {"isMapEnabled": "0"}
	}`,
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	for name, input := range malformedInputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			n := newTestNormalizer()
			once := n.Normalize(mustRaw(t, input))
			twice := n.NormalizeDocument(once)

			assert.Equal(t, once, twice)
		})
	}
}

func TestNormalize_AlwaysHasAdmin(t *testing.T) {
	t.Parallel()

	for name, input := range malformedInputs {
		doc := newTestNormalizer().Normalize(mustRaw(t, input))
		assert.True(t, doc.HasAdmin(), name)
	}

	doc := newTestNormalizer().Normalize([]any{"not", "an", "object"})
	assert.True(t, doc.HasAdmin())
}

func TestNormalize_BackupRoundTrip(t *testing.T) {
	t.Parallel()

	n := newTestNormalizer()
	repo := NewDocumentRepository(nil, n)

	for name, input := range malformedInputs {
		normalized := n.Normalize(mustRaw(t, input))

		body, err := repo.Encode(normalized)
		require.NoError(t, err)

		restored, err := repo.Decode(body)
		require.NoError(t, err, name)
		assert.Equal(t, normalized, restored, name)
	}
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func TestNormalize_EmptyUsersRestoresRoster(t *testing.T) {
	t.Parallel()

	doc := newTestNormalizer().Normalize(mustRaw(t, `{"users": []}`))

	require.Len(t, doc.Users, 6)
	assert.Equal(t, "u1", doc.Users[0].ID)
	assert.Equal(t, "Guilhem", doc.Users[4].Name)
	assert.True(t, doc.Users[0].MustSetPassword)
	assert.Nil(t, doc.Users[0].PasswordHash)

	admin := doc.Users[5]
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	require.NotNil(t, admin.PasswordHash)
	assert.Equal(t, "hashed:admin", *admin.PasswordHash)
}

func TestNormalize_MissingAdminAppended(t *testing.T) {
	t.Parallel()

	doc := newTestNormalizer().Normalize(mustRaw(t, `{"users": [{"id": "u1", "name": "Justin"}]}`))

	require.Len(t, doc.Users, 2)
	assert.Equal(t, domain.DefaultAdminID, doc.Users[1].ID)
}

func TestNormalize_ChallengeSeedMerge(t *testing.T) {
	t.Parallel()

	n := newTestNormalizer()
	doc := n.Normalize(mustRaw(t, `{"challenges": [{"id": "mine", "text": "Fais un salto", "difficulty": "Hardcore"}]}`))

	require.Len(t, doc.Challenges, 61)
	assert.Equal(t, domain.Challenge{ID: "mine", Text: "Fais un salto", Difficulty: domain.DifficultyHardcore}, doc.Challenges[0])

	again := n.NormalizeDocument(doc)
	assert.Len(t, again.Challenges, 61)
}

func TestNormalize_ChallengeSeedMatchesCaseInsensitively(t *testing.T) {
	t.Parallel()

	doc := newTestNormalizer().Normalize(mustRaw(t, `{"challenges": [{"id": "x", "text": "  CUL SEC + 10 POMPES.  ", "difficulty": "??"}]}`))

	assert.Len(t, doc.Challenges, 60)
	assert.Equal(t, "CUL SEC + 10 POMPES.", doc.Challenges[0].Text)
	assert.Equal(t, domain.DifficultyMedium, doc.Challenges[0].Difficulty)
}

func TestNormalize_LegacyMigration(t *testing.T) {
	t.Parallel()

	doc := newTestNormalizer().Normalize(mustRaw(t, malformedInputs["legacy shapes"]))

	user := doc.Users[0]
	require.NotNil(t, user.PasswordHash)
	assert.Equal(t, "hashed:secret", *user.PasswordHash)
	assert.False(t, user.MustSetPassword)
	assert.Equal(t, 0, user.Points)

	post := doc.Posts[0]
	assert.Equal(t, []domain.Media{{Type: domain.MediaImage, URL: "pic.jpg"}}, post.Media)
	assert.Equal(t, "pic.jpg", post.ImageURL)
	assert.Equal(t, []string{"u2"}, post.Likes)
	assert.Equal(t, "Post publie.", post.GMComment)

	require.Len(t, doc.Notifications, 1)
	assert.Equal(t, domain.NotificationMessage, doc.Notifications[0].Type)
	assert.Equal(t, "hello", doc.Notifications[0].Body)
	assert.Equal(t, int64(12), doc.Notifications[0].CreatedAt)
	assert.Nil(t, doc.Notifications[0].ReadAt)
}

func TestNormalize_ScalarCoercion(t *testing.T) {
	t.Parallel()

	doc := newTestNormalizer().Normalize(mustRaw(t, malformedInputs["odd scalars"]))

	user := doc.Users[0]
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "1", user.Name)
	assert.Equal(t, 17, user.Points)
	assert.Equal(t, domain.ThemeNeon, user.Theme)
	assert.True(t, user.MustSetPassword)

	assert.Nil(t, doc.Parties[0].Lat)
	assert.Nil(t, doc.Parties[0].Lng)
	require.NotNil(t, doc.Parties[1].Lat)
	assert.InDelta(t, 43.3, *doc.Parties[1].Lat, 1e-9)
	assert.InDelta(t, 5.37, *doc.Parties[1].Lng, 1e-9)
	assert.Equal(t, "2026-03-14", doc.Parties[0].Date)
	assert.Equal(t, "logo.png", doc.Parties[0].CoverURL)

	require.NotNil(t, doc.Notifications[0].ReadAt)
	assert.Equal(t, int64(99), *doc.Notifications[0].ReadAt)
	assert.Len(t, []rune(doc.Notifications[0].Title), domain.MaxNotificationTitle)

	assert.False(t, doc.Settings.IsMapEnabled)
}

func TestNormalize_PostMedia(t *testing.T) {
	t.Parallel()

	entries := make([]map[string]any, 0, 12)
	entries = append(entries, map[string]any{"type": "VIDEO", "url": "v.mp4"})
	entries = append(entries, map[string]any{"type": "audio", "url": "a.mp3"})
	entries = append(entries, map[string]any{"type": "image", "url": "  "})
	for i := 0; i < 10; i++ {
		entries = append(entries, map[string]any{"type": "image", "url": fmt.Sprintf("%d.jpg", i)})
	}
	body, err := json.Marshal(map[string]any{"posts": []any{map[string]any{"media": entries, "gmComment": "Top (sans IA)  post"}}})
	require.NoError(t, err)

	doc := newTestNormalizer().Normalize(mustRaw(t, string(body)))

	post := doc.Posts[0]
	require.Len(t, post.Media, domain.MaxPostMedia)
	assert.Equal(t, domain.MediaVideo, post.Media[0].Type)
	assert.Equal(t, "0.jpg", post.ImageURL)
	assert.Equal(t, "Top post", post.GMComment)
}

func TestNormalize_UserCaps(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 400)
	body, err := json.Marshal(map[string]any{"users": []any{map[string]any{
		"id": "u1", "role": "ADMIN", "name": long, "bio": long, "profileTitle": long,
		"profileMotto": long, "favoriteDrink": long, "bannerUrl": long,
	}}})
	require.NoError(t, err)

	user := newTestNormalizer().Normalize(mustRaw(t, string(body))).Users[0]

	assert.Len(t, []rune(user.Name), domain.MaxUserName)
	assert.Len(t, []rune(user.Bio), domain.MaxBio)
	assert.Len(t, []rune(user.ProfileTitle), domain.MaxProfileTitle)
	assert.Len(t, []rune(user.ProfileMotto), domain.MaxProfileMotto)
	assert.Len(t, []rune(user.FavoriteDrink), domain.MaxFavoriteDrink)
	assert.Len(t, []rune(user.BannerURL), domain.MaxBannerURL)
}
