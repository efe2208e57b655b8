package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

type AuthService struct {
	repo   DocumentRepository
	env    Env
	policy *PasswordPolicy
}

func NewAuthService(repo DocumentRepository, env Env, policy *PasswordPolicy) *AuthService {
	return &AuthService{
		repo:   repo,
		env:    env,
		policy: policy,
	}
}

// Login checks the credentials of userID. A password is only required once
// the account has one, or for admins.
func (s *AuthService) Login(ctx context.Context, userID, password string) (domain.User, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Load -> %w", err)
	}

	user, ok := doc.FindUser(strings.TrimSpace(userID))
	if !ok {
		return domain.User{}, domain.NewNotFoundError("user", userID, "Compte introuvable.")
	}

	if user.HasPassword() || user.IsAdmin() {
		if !user.HasPassword() || bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
			return domain.User{}, domain.NewValidationError("password", "Mot de passe incorrect.")
		}
	}

	return *user, nil
}

func (s *AuthService) SetPassword(ctx context.Context, actor domain.Actor, password string) error {
	password = strings.TrimSpace(password)
	tooShort := fmt.Sprintf("Mot de passe trop court (min %d).", s.policy.MinLength())
	if err := s.policy.Check("new_password", password, tooShort); err != nil {
		return err
	}

	hash, err := s.env.Hash(password)
	if err != nil {
		return fmt.Errorf("s.env.Hash -> %w", err)
	}

	_, err = s.repo.Update(ctx, func(doc *domain.Document) error {
		user, err := requireUser(doc, actor)
		if err != nil {
			return err
		}

		user.PasswordHash = &hash
		user.MustSetPassword = false

		return nil
	})
	if err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}

// ToggleAdminMode validates that actor may switch admin mode. The mode itself lives in the session.
func (s *AuthService) ToggleAdminMode(actor domain.Actor, enabled bool) (bool, error) {
	if actor.UserID != domain.AdminDelegateID {
		return false, domain.NewPermissionError("Action reservee au compte Guilhem.")
	}

	return enabled, nil
}

// CanAccessAdmin resolves actor and reports whether admin operations are open to them.
func (s *AuthService) CanAccessAdmin(ctx context.Context, actor domain.Actor) (bool, error) {
	if actor.IsAnonymous() {
		return false, nil
	}

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("s.repo.Load -> %w", err)
	}

	user, ok := doc.FindUser(actor.UserID)
	if !ok {
		return false, nil
	}

	return actor.CanAccessAdmin(*user), nil
}
