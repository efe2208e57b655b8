package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

func TestAdminService_RejectsNonAdmins(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()
	before := f.load(t)

	ops := map[string]func(actor domain.Actor) error{
		"add points": func(a domain.Actor) error { return svc.AddPoints(ctx, a, "u1", 10, "") },
		"create user": func(a domain.Actor) error {
			_, err := svc.CreateUser(ctx, a, NewUser{Name: "Nouveau"})
			return err
		},
		"delete user": func(a domain.Actor) error { return svc.DeleteUser(ctx, a, "u2") },
		"toggle map": func(a domain.Actor) error {
			_, err := svc.ToggleMap(ctx, a, false)
			return err
		},
		"create challenge": func(a domain.Actor) error {
			_, err := svc.CreateChallenge(ctx, a, "Chanter", "easy")
			return err
		},
		"delete challenge": func(a domain.Actor) error { return svc.DeleteChallenge(ctx, a, before.Challenges[0].ID) },
		"create item": func(a domain.Actor) error {
			return svc.CreateItem(ctx, a, NewItem{Name: "Verre", Target: domain.Single("u1")})
		},
		"create achievement": func(a domain.Actor) error {
			_, err := svc.CreateAchievement(ctx, a, "Noctambule", "", "")
			return err
		},
		"import": func(a domain.Actor) error {
			_, err := svc.ImportBackup(ctx, a, []byte(`{"users":[]}`))
			return err
		},
		"export": func(a domain.Actor) error {
			_, err := svc.ExportBackup(ctx, a)
			return err
		},
	}

	for name, op := range ops {
		for _, actor := range []domain.Actor{{}, member("u1"), member("u5")} {
			err := op(actor)
			require.ErrorIs(t, err, ErrPermission, "%s as %q", name, actor.UserID)
		}
	}

	assert.Equal(t, before, f.load(t))
}

func TestAdminService_DelegateInAdminMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	actor := member("u5")
	actor.AdminMode = true

	require.NoError(t, f.admin().AddPoints(context.Background(), actor, "u1", 10, "bonus"))

	doc := f.load(t)
	require.Len(t, doc.Activity, 1)
	assert.Equal(t, "u5", doc.Activity[0].By)
}

func TestAdminService_AddPoints(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()

	require.NoError(t, svc.AddPoints(ctx, adminActor(), "u2", 25, "  Organisation  "))
	require.NoError(t, svc.AddPoints(ctx, adminActor(), "u2", -40, ""))

	assert.Zero(t, f.user(t, "u2").Points)

	doc := f.load(t)
	require.Len(t, doc.Activity, 2)
	assert.Equal(t, domain.ActivityEntry{
		ID:        doc.Activity[0].ID,
		Type:      "points",
		By:        domain.DefaultAdminID,
		Target:    "u2",
		Delta:     25,
		Reason:    "Organisation",
		Timestamp: testNow.Unix(),
	}, doc.Activity[0])
	assert.Equal(t, -40, doc.Activity[1].Delta)

	for _, target := range []string{"u99", domain.DefaultAdminID} {
		err := svc.AddPoints(ctx, adminActor(), target, 5, "")
		require.ErrorIs(t, err, ErrValidation)
		msg, _ := domain.UserMessage(err)
		assert.Equal(t, "Joueur invalide.", msg)
	}
}

func TestAdminService_CreateUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, adminActor(), NewUser{Name: " Zoe ", AvatarURL: "pas une url"})
	require.NoError(t, err)
	assert.Equal(t, "Zoe", user.Name)
	assert.Equal(t, domain.RoleMember, user.Role)
	assert.Equal(t, domain.DefaultClassName, user.ClassName)
	assert.Equal(t, domain.SeedAvatar("Zoe"), user.AvatarURL)
	assert.True(t, user.MustSetPassword)
	assert.False(t, user.HasPassword())
	assert.Contains(t, user.ID, "user")

	stored := f.user(t, user.ID)
	assert.Equal(t, user.Name, stored.Name)

	withPassword, err := svc.CreateUser(ctx, adminActor(), NewUser{
		Name: "Max", ClassName: "Barde", Password: "secret",
		AvatarUpload: func() (string, error) { return "uploads/img_max.png", nil },
	})
	require.NoError(t, err)
	assert.False(t, withPassword.MustSetPassword)
	assert.Equal(t, "uploads/img_max.png", withPassword.AvatarURL)
	_, err = f.auth().Login(ctx, withPassword.ID, "secret")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, adminActor(), NewUser{Name: "Boss", Role: "ADMIN", Password: "ab"})
	require.ErrorIs(t, err, ErrValidation)
	msg, _ := domain.UserMessage(err)
	assert.Equal(t, "Mot de passe admin obligatoire (min 4).", msg)

	boss, err := svc.CreateUser(ctx, adminActor(), NewUser{Name: "Boss", Role: "ADMIN", Password: "patron"})
	require.NoError(t, err)
	assert.True(t, boss.IsAdmin())
	assert.False(t, boss.MustSetPassword)

	_, err = svc.CreateUser(ctx, adminActor(), NewUser{Name: "   "})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAdminService_DeleteUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, func(doc *domain.Document) {
		doc.Parties = []domain.Party{party("party_1", "Soiree")}
		doc.Posts = []domain.Post{post("post_1", "u1", "party_1", 10, "u2", "u3")}
	})
	svc := f.admin()
	ctx := context.Background()

	require.NoError(t, svc.DeleteUser(ctx, adminActor(), "u2"))

	doc := f.load(t)
	assert.Equal(t, -1, doc.UserIndex("u2"))
	assert.Equal(t, []string{"u3"}, doc.Posts[0].Likes)

	err := svc.DeleteUser(ctx, adminActor(), "u2")
	require.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteUser(ctx, adminActor(), domain.DefaultAdminID)
	require.ErrorIs(t, err, ErrPermission)
	msg, _ := domain.UserMessage(err)
	assert.Equal(t, "Suppression impossible pour ce compte.", msg)

	delegate := member("u5")
	delegate.AdminMode = true
	err = svc.DeleteUser(ctx, delegate, "u5")
	require.ErrorIs(t, err, ErrPermission)
}

func TestAdminService_ToggleMap(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	enabled, err := f.admin().ToggleMap(context.Background(), adminActor(), false)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, f.load(t).Settings.IsMapEnabled)
}

func TestAdminService_Challenges(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()
	count := len(f.load(t).Challenges)

	challenge, err := svc.CreateChallenge(ctx, adminActor(), "  Danser sur la table  ", "legendary")
	require.NoError(t, err)
	assert.Equal(t, "Danser sur la table", challenge.Text)
	assert.Equal(t, domain.ParseDifficulty(""), challenge.Difficulty)
	assert.Len(t, f.load(t).Challenges, count+1)

	_, err = svc.CreateChallenge(ctx, adminActor(), "   ", "easy")
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteChallenge(ctx, adminActor(), challenge.ID))
	assert.Len(t, f.load(t).Challenges, count)

	require.NoError(t, svc.DeleteChallenge(ctx, adminActor(), "unknown"))
}

func TestAdminService_CreateItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()

	require.NoError(t, svc.CreateItem(ctx, adminActor(), NewItem{Name: "Chope doree", Target: domain.Broadcast()}))

	doc := f.load(t)
	ids := make(map[string]bool)
	for _, m := range doc.Members() {
		require.Len(t, m.Inventory, 1, m.ID)
		item := m.Inventory[0]
		assert.Equal(t, "Chope doree", item.Name)
		assert.Equal(t, "Objet mysterieux", item.Description)
		assert.Equal(t, "Commune", item.Rarity)
		assert.Equal(t, "Special", item.Stats)
		assert.False(t, ids[item.ID], "item id %s reused", item.ID)
		ids[item.ID] = true
	}
	assert.Len(t, doc.Notifications, len(doc.Members()))
	assert.Equal(t, "Tu as recu: Chope doree", doc.Notifications[0].Body)

	require.NoError(t, svc.CreateItem(ctx, adminActor(), NewItem{
		Name: "Casquette", Rarity: "Legendaire", Target: domain.Single("u3"),
		Image: func() (string, error) { return "uploads/img_cap.png", nil },
	}))
	u3 := f.user(t, "u3")
	require.Len(t, u3.Inventory, 2)
	assert.Equal(t, "uploads/img_cap.png", u3.Inventory[1].ImageURL)
	assert.Equal(t, "Legendaire", u3.Inventory[1].Rarity)

	uploads := 0
	image := func() (string, error) {
		uploads++
		return "", nil
	}
	err := svc.CreateItem(ctx, adminActor(), NewItem{Name: "Rien", Target: domain.Single("u77"), Image: image})
	require.ErrorIs(t, err, ErrValidation)
	err = svc.CreateItem(ctx, adminActor(), NewItem{Name: "", Target: domain.Single("u1"), Image: image})
	require.ErrorIs(t, err, ErrValidation)
	err = svc.CreateItem(ctx, adminActor(), NewItem{Name: "Sans cible", Image: image})
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, uploads)
}

func TestAdminService_Achievements(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()

	ach, err := svc.CreateAchievement(ctx, adminActor(), "Noctambule", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Succes debloque", ach.Description)
	assert.Equal(t, "🏆", ach.Icon)
	assert.Equal(t, testNow.Unix(), ach.UnlockedAt)

	_, err = svc.CreateAchievement(ctx, adminActor(), " ", "", "")
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.AssignAchievement(ctx, adminActor(), ach.ID, domain.Single("u1")))
	u1 := f.user(t, "u1")
	require.Len(t, u1.Achievements, 1)
	assert.Equal(t, ach.ID, u1.Achievements[0].ID)

	require.NoError(t, svc.AssignAchievement(ctx, adminActor(), ach.ID, domain.ParseTarget("ALL")))
	doc := f.load(t)
	for _, m := range doc.Members() {
		require.Len(t, m.Achievements, 1, m.ID)
		if m.ID != "u1" {
			assert.NotEqual(t, ach.ID, m.Achievements[0].ID)
		}
	}

	err = svc.AssignAchievement(ctx, adminActor(), "ach_missing", domain.Single("u1"))
	require.ErrorIs(t, err, ErrNotFound)
	err = svc.AssignAchievement(ctx, adminActor(), ach.ID, domain.Target{})
	require.ErrorIs(t, err, ErrValidation)
	err = svc.AssignAchievement(ctx, adminActor(), ach.ID, domain.Single("u77"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestAdminService_ExportImportBackup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := f.admin()
	ctx := context.Background()
	f.seed(t, func(doc *domain.Document) {
		doc.Parties = []domain.Party{party("party_1", "Soiree")}
		doc.Users[2].Points = 321
	})

	backup, err := svc.ExportBackup(ctx, adminActor())
	require.NoError(t, err)
	assert.Equal(t, "confrerie_backup_2026-03-14_21-30.json", backup.FileName)
	assert.True(t, json.Valid(backup.Body))

	f.seed(t, func(doc *domain.Document) {
		doc.Parties = nil
		doc.Users[2].Points = 0
	})

	restored, err := svc.ImportBackup(ctx, adminActor(), backup.Body)
	require.NoError(t, err)
	assert.Len(t, restored.Parties, 1)
	assert.Equal(t, 321, f.user(t, "u3").Points)

	_, err = svc.ImportBackup(ctx, adminActor(), []byte("{broken"))
	require.ErrorIs(t, err, ErrValidation)
	msg, _ := domain.UserMessage(err)
	assert.Equal(t, "JSON invalide.", msg)
	assert.Len(t, f.load(t).Parties, 1)
}

func TestAdminService_ImportWithoutAdminCanStillLogIn(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	doc, err := f.admin().ImportBackup(context.Background(), adminActor(), []byte(`{"users":[{"id":"x1","name":"Solo","role":"MEMBER"}]}`))
	require.NoError(t, err)

	assert.True(t, doc.HasAdmin())
	assert.NotEqual(t, -1, doc.UserIndex("x1"))
	_, err = f.auth().Login(context.Background(), domain.DefaultAdminID, domain.DefaultAdminPassword)
	require.NoError(t, err)
}
