package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

// BackupCodec converts between the document and its backup file format.
// Decode returns a normalized document, which always holds the default admin.
type BackupCodec interface {
	Decode(body []byte) (domain.Document, error)
	Encode(doc domain.Document) ([]byte, error)
}

type AdminService struct {
	repo   DocumentRepository
	codec  BackupCodec
	env    Env
	policy *PasswordPolicy
}

func NewAdminService(repo DocumentRepository, codec BackupCodec, env Env, policy *PasswordPolicy) *AdminService {
	return &AdminService{
		repo:   repo,
		codec:  codec,
		env:    env,
		policy: policy,
	}
}

// update runs fn against the document once the actor is known to have admin access.
func (s *AdminService) update(ctx context.Context, actor domain.Actor, fn func(doc *domain.Document, admin *domain.User) error) error {
	_, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		admin, err := requireAdmin(doc, actor)
		if err != nil {
			return err
		}

		return fn(doc, admin)
	})
	if err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}

// checkAdmin verifies admin access before side effects that happen outside Update.
func (s *AdminService) checkAdmin(ctx context.Context, actor domain.Actor) (domain.Document, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("s.repo.Load -> %w", err)
	}

	if _, err = requireAdmin(&doc, actor); err != nil {
		return domain.Document{}, err
	}

	return doc, nil
}

// AddPoints applies a signed delta to a member and records it in the activity log.
func (s *AdminService) AddPoints(ctx context.Context, actor domain.Actor, targetID string, delta int, reason string) error {
	targetID = strings.TrimSpace(targetID)

	return s.update(ctx, actor, func(doc *domain.Document, admin *domain.User) error {
		target, ok := doc.FindUser(targetID)
		if !ok || target.IsAdmin() {
			return domain.NewValidationError("target_user_id", "Joueur invalide.")
		}

		target.AddPoints(delta)
		doc.Activity = append(doc.Activity, domain.ActivityEntry{
			ID:        s.env.NewID("act"),
			Type:      "points",
			By:        admin.ID,
			Target:    targetID,
			Delta:     delta,
			Reason:    domain.CutTrim(reason, domain.MaxActivityReason),
			Timestamp: s.env.Now().Unix(),
		})

		return nil
	})
}

type NewUser struct {
	Name         string
	ClassName    string
	Role         string
	Password     string
	AvatarUpload ImageSource
	AvatarURL    string
}

func (s *AdminService) CreateUser(ctx context.Context, actor domain.Actor, in NewUser) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.User{}, domain.NewValidationError("name", "Nom obligatoire.")
	}

	role := domain.ParseRole(strings.TrimSpace(in.Role))
	password := strings.TrimSpace(in.Password)
	if role == domain.RoleAdmin {
		tooShort := fmt.Sprintf("Mot de passe admin obligatoire (min %d).", s.policy.MinLength())
		if err := s.policy.Check("password", password, tooShort); err != nil {
			return domain.User{}, err
		}
	}

	if _, err := s.checkAdmin(ctx, actor); err != nil {
		return domain.User{}, err
	}

	avatar := ""
	if in.AvatarUpload != nil {
		stored, err := in.AvatarUpload()
		if err != nil {
			return domain.User{}, err
		}
		avatar = stored
	}
	if input := strings.TrimSpace(in.AvatarURL); avatar == "" && validURL(input) {
		avatar = input
	}
	if avatar == "" {
		avatar = domain.SeedAvatar(name)
	}

	className := strings.TrimSpace(in.ClassName)
	if className == "" {
		className = domain.DefaultClassName
	}

	user := domain.User{
		ID:              s.env.NewID("user"),
		Name:            domain.CutTrim(name, domain.MaxUserName),
		Role:            role,
		ClassName:       domain.CutTrim(className, domain.MaxClassName),
		AvatarURL:       avatar,
		Inventory:       []domain.Item{},
		Achievements:    []domain.Achievement{},
		MustSetPassword: role == domain.RoleMember && password == "",
		Theme:           domain.ThemeNeon,
		ProfileTheme:    domain.ParseProfileTheme(""),
		NameStyle:       domain.ParseNameStyle(""),
	}
	if password != "" {
		hash, err := s.env.Hash(password)
		if err != nil {
			return domain.User{}, fmt.Errorf("s.env.Hash -> %w", err)
		}
		user.PasswordHash = &hash
	}

	err := s.update(ctx, actor, func(doc *domain.Document, _ *domain.User) error {
		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// DeleteUser removes a member and scrubs their likes. Their posts and items stay in place.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Actor, targetID string) error {
	targetID = strings.TrimSpace(targetID)

	return s.update(ctx, actor, func(doc *domain.Document, admin *domain.User) error {
		idx := doc.UserIndex(targetID)
		if idx < 0 {
			return domain.NewNotFoundError("user", targetID, "Utilisateur introuvable.")
		}
		if doc.Users[idx].IsAdmin() || targetID == admin.ID {
			return domain.NewPermissionError("Suppression impossible pour ce compte.")
		}

		doc.Users = append(doc.Users[:idx], doc.Users[idx+1:]...)
		for i := range doc.Posts {
			likes := doc.Posts[i].Likes[:0]
			for _, id := range doc.Posts[i].Likes {
				if id != targetID {
					likes = append(likes, id)
				}
			}
			doc.Posts[i].Likes = likes
		}

		return nil
	})
}

func (s *AdminService) ToggleMap(ctx context.Context, actor domain.Actor, enabled bool) (bool, error) {
	err := s.update(ctx, actor, func(doc *domain.Document, _ *domain.User) error {
		doc.Settings.IsMapEnabled = enabled
		return nil
	})
	if err != nil {
		return false, err
	}

	return enabled, nil
}

func (s *AdminService) CreateChallenge(ctx context.Context, actor domain.Actor, text, difficulty string) (domain.Challenge, error) {
	text = domain.CutTrim(text, domain.MaxChallengeText)
	if text == "" {
		return domain.Challenge{}, domain.NewValidationError("challenge_text", "Texte du defi obligatoire.")
	}

	challenge := domain.Challenge{
		ID:         s.env.NewID("challenge"),
		Text:       text,
		Difficulty: domain.ParseDifficulty(strings.TrimSpace(difficulty)),
	}

	err := s.update(ctx, actor, func(doc *domain.Document, _ *domain.User) error {
		doc.Challenges = append(doc.Challenges, challenge)
		return nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}

	return challenge, nil
}

// DeleteChallenge removes the challenge with the given id. Unknown ids are a no-op.
func (s *AdminService) DeleteChallenge(ctx context.Context, actor domain.Actor, challengeID string) error {
	challengeID = strings.TrimSpace(challengeID)

	return s.update(ctx, actor, func(doc *domain.Document, _ *domain.User) error {
		kept := make([]domain.Challenge, 0, len(doc.Challenges))
		for _, c := range doc.Challenges {
			if c.ID != challengeID {
				kept = append(kept, c)
			}
		}
		doc.Challenges = kept

		return nil
	})
}

type NewItem struct {
	Name        string
	Description string
	Rarity      string
	Target      domain.Target
	Image       ImageSource
}

// CreateItem gives an item to one user, or a fresh copy to every member.
func (s *AdminService) CreateItem(ctx context.Context, actor domain.Actor, in NewItem) error {
	name := domain.CutTrim(in.Name, domain.MaxItemName)
	if name == "" || in.Target.IsZero() {
		return domain.NewValidationError("item_name", "Nom objet + destinataire requis.")
	}

	doc, err := s.checkAdmin(ctx, actor)
	if err != nil {
		return err
	}
	if !in.Target.IsBroadcast() && doc.UserIndex(in.Target.UserID()) < 0 {
		return domain.NewValidationError("item_target", "Destinataire invalide.")
	}

	image := ""
	if in.Image != nil {
		if image, err = in.Image(); err != nil {
			return err
		}
	}

	description := domain.CutTrim(in.Description, domain.MaxItemDescription)
	if description == "" {
		description = "Objet mysterieux"
	}
	rarity := strings.TrimSpace(in.Rarity)
	if rarity == "" {
		rarity = "Commune"
	}

	item := domain.Item{
		Name:        name,
		Description: description,
		Rarity:      rarity,
		ImageURL:    image,
		Stats:       "Special",
	}

	return s.update(ctx, actor, func(doc *domain.Document, _ *domain.User) error {
		give := func(u *domain.User) {
			copied := item
			copied.ID = s.env.NewID("item")
			u.Inventory = append(u.Inventory, copied)
			push(doc, s.env, u.ID, domain.NotificationItem, "Nouvel objet recu", "Tu as recu: "+item.Name)
		}

		if in.Target.IsBroadcast() {
			for i := range doc.Users {
				if doc.Users[i].Role == domain.RoleMember {
					give(&doc.Users[i])
				}
			}
			return nil
		}

		target, ok := doc.FindUser(in.Target.UserID())
		if !ok {
			return domain.NewValidationError("item_target", "Destinataire invalide.")
		}
		give(target)

		return nil
	})
}

func (s *AdminService) CreateAchievement(ctx context.Context, actor domain.Actor, name, description, icon string) (domain.Achievement, error) {
	name = domain.CutTrim(name, domain.MaxAchievementName)
	if name == "" {
		return domain.Achievement{}, domain.NewValidationError("ach_name", "Nom succes requis.")
	}

	description = domain.CutTrim(description, domain.MaxAchievementDescription)
	if description == "" {
		description = "Succes debloque"
	}
	icon = domain.CutTrim(icon, domain.MaxAchievementIcon)
	if icon == "" {
		icon = "🏆"
	}

	achievement := domain.Achievement{
		ID:          s.env.NewID("ach"),
		Name:        name,
		Description: description,
		Icon:        icon,
		UnlockedAt:  s.env.Now().Unix(),
	}

	err := s.update(ctx, actor, func(doc *domain.Document, _ *domain.User) error {
		doc.AchievementLibrary = append(doc.AchievementLibrary, achievement)
		return nil
	})
	if err != nil {
		return domain.Achievement{}, err
	}

	return achievement, nil
}

// AssignAchievement copies a library achievement to one user, or to every member
// who does not already hold one with the same name.
func (s *AdminService) AssignAchievement(ctx context.Context, actor domain.Actor, achievementID string, target domain.Target) error {
	achievementID = strings.TrimSpace(achievementID)
	if achievementID == "" || target.IsZero() {
		return domain.NewValidationError("achievement_id", "Succes et destinataire requis.")
	}

	return s.update(ctx, actor, func(doc *domain.Document, _ *domain.User) error {
		var (
			achievement domain.Achievement
			found       bool
		)
		for _, a := range doc.AchievementLibrary {
			if a.ID == achievementID {
				achievement, found = a, true
				break
			}
		}
		if !found {
			return domain.NewNotFoundError("achievement", achievementID, "Succes introuvable.")
		}

		notify := func(u *domain.User) {
			push(doc, s.env, u.ID, domain.NotificationAchievement, "Succes debloque", "Tu as obtenu: "+achievement.Name)
		}

		if target.IsBroadcast() {
			for i := range doc.Users {
				u := &doc.Users[i]
				if u.Role != domain.RoleMember || u.HasAchievementNamed(achievement.Name) {
					continue
				}
				copied := achievement
				copied.ID = s.env.NewID("ach")
				u.Achievements = append(u.Achievements, copied)
				notify(u)
			}
			return nil
		}

		u, ok := doc.FindUser(target.UserID())
		if !ok {
			return domain.NewValidationError("ach_target", "Destinataire invalide.")
		}
		u.Achievements = append(u.Achievements, achievement)
		notify(u)

		return nil
	})
}

// ImportBackup replaces the whole document with the uploaded backup.
func (s *AdminService) ImportBackup(ctx context.Context, actor domain.Actor, body []byte) (domain.Document, error) {
	if _, err := s.checkAdmin(ctx, actor); err != nil {
		return domain.Document{}, err
	}

	imported, err := s.codec.Decode(body)
	if err != nil {
		if errors.Is(err, ErrInvalidJSON) {
			return domain.Document{}, domain.NewValidationError("backup_file", "JSON invalide.")
		}
		return domain.Document{}, fmt.Errorf("s.codec.Decode -> %w", err)
	}

	out, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		*doc = imported
		return nil
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return out, nil
}

type Backup struct {
	FileName string
	Body     []byte
}

// ExportBackup renders the current document as a downloadable backup.
func (s *AdminService) ExportBackup(ctx context.Context, actor domain.Actor) (Backup, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return Backup{}, fmt.Errorf("s.repo.Load -> %w", err)
	}

	user, err := requireUser(&doc, actor)
	if err != nil {
		return Backup{}, err
	}
	if !actor.CanAccessAdmin(*user) {
		return Backup{}, domain.NewPermissionError("Acces admin requis.")
	}

	body, err := s.codec.Encode(doc)
	if err != nil {
		return Backup{}, fmt.Errorf("s.codec.Encode -> %w", err)
	}

	return Backup{
		FileName: "confrerie_backup_" + s.env.Now().Format("2006-01-02_15-04") + ".json",
		Body:     body,
	}, nil
}
