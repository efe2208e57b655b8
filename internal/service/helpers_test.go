package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/pkg/guard"
	"github.com/laconfrerie/confrerie-api/internal/repository"
	"github.com/laconfrerie/confrerie-api/internal/repository/dao"
)

var testNow = time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC)

// fixedRand always returns the same draw and deals the deck unchanged.
type fixedRand struct {
	n int
}

func (r fixedRand) Intn(n int) int {
	if r.n >= n {
		return n - 1
	}

	return r.n
}

func (fixedRand) Shuffle(int, func(i, j int)) {}

func fastHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func sequentialIDs() func(prefix string) string {
	var seq atomic.Int64

	return func(prefix string) string {
		return fmt.Sprintf("%s_%d", prefix, seq.Add(1))
	}
}

type fixture struct {
	repo  *repository.DocumentRepository
	env   Env
	guard *guard.Cooldown

	policy *PasswordPolicy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	norm := &repository.Normalizer{
		Now:   func() time.Time { return testNow },
		NewID: sequentialIDs(),
		Hash:  fastHash,
	}
	store := dao.NewFileDAO(filepath.Join(t.TempDir(), "app_data.json"))

	policy, err := NewPasswordPolicy(4, "")
	require.NoError(t, err)

	cooldown := guard.NewCooldown(4*time.Second, time.Minute)
	t.Cleanup(cooldown.Stop)

	return &fixture{
		repo: repository.NewDocumentRepository(store, norm),
		env: Env{
			Now:   func() time.Time { return testNow },
			NewID: sequentialIDs(),
			Hash:  fastHash,
			Rand:  fixedRand{},
		},
		guard:  cooldown,
		policy: policy,
	}
}

func (f *fixture) seed(t *testing.T, fn func(doc *domain.Document)) {
	t.Helper()

	_, err := f.repo.Update(context.Background(), func(doc *domain.Document) error {
		fn(doc)
		return nil
	})
	require.NoError(t, err)
}

func (f *fixture) load(t *testing.T) domain.Document {
	t.Helper()

	doc, err := f.repo.Load(context.Background())
	require.NoError(t, err)

	return doc
}

func (f *fixture) user(t *testing.T, id string) domain.User {
	t.Helper()

	doc := f.load(t)
	u, ok := doc.FindUser(id)
	require.True(t, ok, "user %s", id)

	return *u
}

func (f *fixture) posts() *PostService {
	return NewPostService(f.repo, f.env, f.guard)
}

func (f *fixture) parties() *PartyService {
	return NewPartyService(f.repo, f.env, f.guard)
}

func (f *fixture) admin() *AdminService {
	return NewAdminService(f.repo, f.repo, f.env, f.policy)
}

func (f *fixture) auth() *AuthService {
	return NewAuthService(f.repo, f.env, f.policy)
}

func (f *fixture) users() *UserService {
	return NewUserService(f.repo, f.env, f.policy)
}

func (f *fixture) notifications() *NotificationService {
	return NewNotificationService(f.repo, f.env, 15)
}

func member(id string) domain.Actor {
	return domain.Actor{UserID: id, SessionID: "sess-" + id}
}

func adminActor() domain.Actor {
	return domain.Actor{UserID: domain.DefaultAdminID, SessionID: "sess-admin"}
}

func party(id, name string) domain.Party {
	return domain.Party{ID: id, Name: name, Date: "2026-03-14", LocationName: "Chez Robin", CoverURL: "logo.png", CreatedBy: "u1"}
}

func post(id, userID, partyID string, awarded int, likes ...string) domain.Post {
	if likes == nil {
		likes = []string{}
	}

	return domain.Post{
		ID:            id,
		UserID:        userID,
		PartyID:       partyID,
		Media:         []domain.Media{},
		Description:   "souvenir",
		PointsAwarded: awarded,
		GMComment:     "Post publie.",
		Timestamp:     testNow.Unix(),
		Likes:         likes,
	}
}
