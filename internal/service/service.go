package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/repository"
)

var (
	ErrValidation  = domain.ErrValidation
	ErrNotFound    = domain.ErrNotFound
	ErrPermission  = domain.ErrPermission
	ErrRateLimited = domain.ErrRateLimited
	ErrPersistence = repository.ErrPersistence
	ErrInvalidJSON = repository.ErrInvalidJSON
)

// DocumentRepository is the persistence contract every service runs its operations through.
type DocumentRepository interface {
	Load(ctx context.Context) (domain.Document, error)
	Update(ctx context.Context, fn func(doc *domain.Document) error) (domain.Document, error)
}

// Env carries the clock and generators shared by the services.
type Env struct {
	Now   func() time.Time
	NewID func(prefix string) string
	Hash  func(password string) (string, error)
	Rand  domain.Rand
}

func DefaultEnv(rnd domain.Rand) Env {
	return Env{
		Now:   time.Now,
		NewID: repository.GenerateID,
		Hash:  repository.HashPassword,
		Rand:  rnd,
	}
}

// requireUser resolves the acting user inside doc.
func requireUser(doc *domain.Document, actor domain.Actor) (*domain.User, error) {
	if actor.IsAnonymous() {
		return nil, domain.NewPermissionError("Connexion requise.")
	}

	u, ok := doc.FindUser(actor.UserID)
	if !ok {
		return nil, domain.NewPermissionError("Session invalide.")
	}

	return u, nil
}

func requireAdmin(doc *domain.Document, actor domain.Actor) (*domain.User, error) {
	u, err := requireUser(doc, actor)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccessAdmin(*u) {
		return nil, domain.NewPermissionError("Action reservee admin.")
	}

	return u, nil
}

// validURL accepts absolute http(s) URLs.
func validURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}

	return is.RequestURL.Validate(s) == nil
}

// PasswordPolicy checks new passwords against a minimum length and an optional pattern.
type PasswordPolicy struct {
	minLength int
	pattern   *regexp2.Regexp
}

func NewPasswordPolicy(minLength int, pattern string) (*PasswordPolicy, error) {
	p := &PasswordPolicy{minLength: minLength}
	if pattern == "" {
		return p, nil
	}

	exp, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("regexp2.Compile -> %w", err)
	}
	p.pattern = exp

	return p, nil
}

func (p *PasswordPolicy) MinLength() int {
	return p.minLength
}

// Check returns a ValidationError carrying tooShort when password is under the minimum length.
func (p *PasswordPolicy) Check(field, password, tooShort string) error {
	if len([]rune(password)) < p.minLength {
		return domain.NewValidationError(field, tooShort)
	}

	if p.pattern != nil {
		ok, err := p.pattern.MatchString(password)
		if err != nil || !ok {
			return domain.NewValidationError(field, "Mot de passe trop faible.")
		}
	}

	return nil
}

// LockedRand makes a *rand.Rand safe for concurrent requests.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.r.Intn(n)
}

func (l *LockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.r.Shuffle(n, swap)
}
