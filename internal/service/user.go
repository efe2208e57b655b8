package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

type UserService struct {
	repo   DocumentRepository
	env    Env
	policy *PasswordPolicy
}

func NewUserService(repo DocumentRepository, env Env, policy *PasswordPolicy) *UserService {
	return &UserService{
		repo:   repo,
		env:    env,
		policy: policy,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Load -> %w", err)
	}

	user, ok := doc.FindUser(id)
	if !ok {
		return domain.User{}, domain.NewNotFoundError("user", id, "Utilisateur introuvable.")
	}

	return *user, nil
}

// ProfileUpdate holds the submitted profile fields. Nil fields keep their current value.
type ProfileUpdate struct {
	Name          *string
	ClassName     *string
	Bio           *string
	Theme         *string
	ProfileTheme  *string
	NameStyle     *string
	ProfileTitle  *string
	ProfileMotto  *string
	FavoriteDrink *string
	BannerURL     *string
	NewPassword   string

	// AvatarUpload wins over AvatarURL, which is only kept when it is a valid absolute URL.
	AvatarUpload ImageSource
	AvatarURL    string
}

func pick(v *string, current string) string {
	if v == nil {
		return current
	}

	return strings.TrimSpace(*v)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, upd ProfileUpdate) (domain.User, error) {
	var hash *string
	if password := strings.TrimSpace(upd.NewPassword); password != "" {
		tooShort := fmt.Sprintf("Nouveau mot de passe trop court (min %d).", s.policy.MinLength())
		if err := s.policy.Check("new_password", password, tooShort); err != nil {
			return domain.User{}, err
		}

		h, err := s.env.Hash(password)
		if err != nil {
			return domain.User{}, fmt.Errorf("s.env.Hash -> %w", err)
		}
		hash = &h
	}

	avatar := ""
	if upd.AvatarUpload != nil {
		stored, err := upd.AvatarUpload()
		if err != nil {
			return domain.User{}, err
		}
		avatar = stored
	}
	if input := strings.TrimSpace(upd.AvatarURL); avatar == "" && validURL(input) {
		avatar = input
	}

	var updated domain.User
	_, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		user, err := requireUser(doc, actor)
		if err != nil {
			return err
		}

		name := pick(upd.Name, user.Name)
		if name == "" {
			name = user.Name
		}
		className := pick(upd.ClassName, user.ClassName)
		if className == "" {
			className = domain.DefaultClassName
		}

		user.Name = domain.CutTrim(name, domain.MaxUserName)
		user.ClassName = domain.CutTrim(className, domain.MaxClassName)
		user.Bio = domain.CutTrim(pick(upd.Bio, user.Bio), domain.MaxBio)
		user.Theme = domain.ParseAppTheme(pick(upd.Theme, string(user.Theme)))
		user.ProfileTheme = domain.ParseProfileTheme(pick(upd.ProfileTheme, string(user.ProfileTheme)))
		user.NameStyle = domain.ParseNameStyle(pick(upd.NameStyle, string(user.NameStyle)))
		user.ProfileTitle = domain.CutTrim(pick(upd.ProfileTitle, user.ProfileTitle), domain.MaxProfileTitle)
		user.ProfileMotto = domain.CutTrim(pick(upd.ProfileMotto, user.ProfileMotto), domain.MaxProfileMotto)
		user.FavoriteDrink = domain.CutTrim(pick(upd.FavoriteDrink, user.FavoriteDrink), domain.MaxFavoriteDrink)

		banner := pick(upd.BannerURL, user.BannerURL)
		user.BannerURL = ""
		if validURL(banner) {
			user.BannerURL = domain.Cut(banner, domain.MaxBannerURL)
		}

		if avatar != "" {
			user.AvatarURL = avatar
		}

		if hash != nil {
			user.PasswordHash = hash
			user.MustSetPassword = false
		}

		updated = *user

		return nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// Pages reachable through the page query parameter. PageAdmin needs admin access.
const (
	PageDashboard = "dashboard"
	PageParties   = "parties"
	PageFeed      = "feed"
	PageRankings  = "rankings"
	PageMap       = "map"
	PageAdmin     = "admin"
)

// SafePage falls back to the dashboard for unknown or forbidden pages.
func SafePage(candidate string, isAdmin bool) string {
	switch candidate {
	case PageDashboard, PageParties, PageFeed, PageRankings, PageMap:
		return candidate
	case PageAdmin:
		if isAdmin {
			return candidate
		}
	}

	return PageDashboard
}

type RankView struct {
	Current  domain.Rank  `json:"current"`
	Next     *domain.Rank `json:"next"`
	Progress float64      `json:"progress"`
}

func NewRankView(points int) RankView {
	view := RankView{
		Current:  domain.RankFor(points),
		Progress: domain.RankProgress(points),
	}
	if next, ok := domain.NextRank(points); ok {
		view.Next = &next
	}

	return view
}

// AdminView is only filled for actors with admin access.
type AdminView struct {
	Users              []domain.PublicUser    `json:"users"`
	Challenges         []domain.Challenge     `json:"challenges"`
	AchievementLibrary []domain.Achievement   `json:"achievementLibrary"`
	Activity           []domain.ActivityEntry `json:"activity"`
	KnownItems         []domain.Item          `json:"knownItems"`
	KnownAchievements  []domain.Achievement   `json:"knownAchievements"`
}

// PageView is the read model served for GET requests.
type PageView struct {
	Page            string              `json:"page"`
	IsLoggedIn      bool                `json:"isLoggedIn"`
	IsAdmin         bool                `json:"isAdmin"`
	CanUnlockAdmin  bool                `json:"canUnlockAdmin"`
	AdminMode       bool                `json:"adminModeEnabled"`
	MustSetPassword bool                `json:"mustSetPassword"`
	CurrentUser     *domain.PublicUser  `json:"currentUser"`
	ViewedUser      *domain.PublicUser  `json:"viewedUser"`
	IsOwnProfile    bool                `json:"isOwnProfile"`
	Rank            *RankView           `json:"rank"`
	Ranked          []domain.PublicUser `json:"rankedUsers"`
	Parties         []domain.Party      `json:"parties"`
	SelectedParty   *domain.Party       `json:"selectedParty"`
	Posts           []domain.Post       `json:"posts"`
	Settings        domain.Settings     `json:"settings"`
	Admin           *AdminView          `json:"admin,omitempty"`
}

type PageQuery struct {
	Page       string
	ViewUserID string
	PartyID    string
}

func (s *UserService) Page(ctx context.Context, actor domain.Actor, q PageQuery) (PageView, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return PageView{}, fmt.Errorf("s.repo.Load -> %w", err)
	}

	current, loggedIn := doc.FindUser(actor.UserID)
	loggedIn = loggedIn && !actor.IsAnonymous()
	isAdmin := loggedIn && actor.CanAccessAdmin(*current)

	view := PageView{
		Page:       SafePage(q.Page, isAdmin),
		IsLoggedIn: loggedIn,
		IsAdmin:    isAdmin,
		AdminMode:  actor.AdminMode,
		Ranked:     RankedMembers(doc),
		Parties:    doc.Parties,
		Posts:      SortPosts(doc.Posts),
		Settings:   doc.Settings,
	}

	if loggedIn {
		pub := current.Public()
		view.CurrentUser = &pub
		view.ViewedUser = &pub
		view.IsOwnProfile = true
		view.CanUnlockAdmin = current.ID == domain.AdminDelegateID
		view.MustSetPassword = current.MustSetPassword

		if view.Page == PageDashboard && q.ViewUserID != "" {
			if other, ok := doc.FindUser(strings.TrimSpace(q.ViewUserID)); ok {
				otherPub := other.Public()
				view.ViewedUser = &otherPub
				view.IsOwnProfile = other.ID == current.ID
			}
		}

		rank := NewRankView(view.ViewedUser.Points)
		view.Rank = &rank
	}

	if view.Page == PageParties && q.PartyID != "" {
		if idx := doc.PartyIndex(strings.TrimSpace(q.PartyID)); idx >= 0 {
			party := doc.Parties[idx]
			view.SelectedParty = &party
		}
	}

	if isAdmin {
		view.Admin = adminView(doc)
	}

	return view, nil
}

// RankedMembers lists members by points, highest first. Ties keep document order.
func RankedMembers(doc domain.Document) []domain.PublicUser {
	members := doc.Members()
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Points > members[j].Points
	})

	out := make([]domain.PublicUser, 0, len(members))
	for _, m := range members {
		out = append(out, m.Public())
	}

	return out
}

// SortPosts returns a copy of posts ordered by timestamp, newest first.
func SortPosts(posts []domain.Post) []domain.Post {
	out := append([]domain.Post(nil), posts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})

	return out
}

func adminView(doc domain.Document) *AdminView {
	view := &AdminView{
		Users:              make([]domain.PublicUser, 0, len(doc.Users)),
		Challenges:         doc.Challenges,
		AchievementLibrary: doc.AchievementLibrary,
		Activity:           doc.Activity,
		KnownItems:         make([]domain.Item, 0),
		KnownAchievements:  make([]domain.Achievement, 0),
	}
	for _, u := range doc.Users {
		view.Users = append(view.Users, u.Public())
	}

	items := make(map[string]int)
	achievements := make(map[string]int)
	addAchievement := func(a domain.Achievement) {
		if i, ok := achievements[a.Name]; ok {
			view.KnownAchievements[i] = a
			return
		}
		achievements[a.Name] = len(view.KnownAchievements)
		view.KnownAchievements = append(view.KnownAchievements, a)
	}

	for _, m := range doc.Members() {
		for _, it := range m.Inventory {
			if i, ok := items[it.Name]; ok {
				view.KnownItems[i] = it
				continue
			}
			items[it.Name] = len(view.KnownItems)
			view.KnownItems = append(view.KnownItems, it)
		}
		for _, a := range m.Achievements {
			addAchievement(a)
		}
	}
	for _, a := range doc.AchievementLibrary {
		addAchievement(a)
	}

	return view
}
