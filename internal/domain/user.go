package domain

type User struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Role            Role          `json:"role"`
	Points          int           `json:"points"`
	ClassName       string        `json:"className"`
	Bio             string        `json:"bio"`
	AvatarURL       string        `json:"avatarUrl"`
	Inventory       []Item        `json:"inventory"`
	Achievements    []Achievement `json:"achievements"`
	PasswordHash    *string       `json:"password_hash"`
	MustSetPassword bool          `json:"must_set_password"`
	Theme           AppTheme      `json:"theme"`
	ProfileTheme    ProfileTheme  `json:"profileTheme"`
	NameStyle       NameStyle     `json:"nameStyle"`
	ProfileTitle    string        `json:"profileTitle"`
	ProfileMotto    string        `json:"profileMotto"`
	FavoriteDrink   string        `json:"favoriteDrink"`
	BannerURL       string        `json:"bannerUrl"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// AddPoints applies delta and clamps the result at zero.
func (u *User) AddPoints(delta int) int {
	u.Points = ClampPoints(u.Points + delta)

	return u.Points
}

func (u User) HasAchievementNamed(name string) bool {
	for _, a := range u.Achievements {
		if a.Name == name {
			return true
		}
	}

	return false
}

// PublicUser is the subset of a user exposed to other members.
type PublicUser struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Role          Role          `json:"role"`
	Points        int           `json:"points"`
	ClassName     string        `json:"className"`
	Bio           string        `json:"bio"`
	AvatarURL     string        `json:"avatarUrl"`
	Inventory     []Item        `json:"inventory"`
	Achievements  []Achievement `json:"achievements"`
	Theme         AppTheme      `json:"theme"`
	ProfileTheme  ProfileTheme  `json:"profileTheme"`
	NameStyle     NameStyle     `json:"nameStyle"`
	ProfileTitle  string        `json:"profileTitle"`
	ProfileMotto  string        `json:"profileMotto"`
	FavoriteDrink string        `json:"favoriteDrink"`
	BannerURL     string        `json:"bannerUrl"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Role:          u.Role,
		Points:        u.Points,
		ClassName:     u.ClassName,
		Bio:           u.Bio,
		AvatarURL:     u.AvatarURL,
		Inventory:     u.Inventory,
		Achievements:  u.Achievements,
		Theme:         u.Theme,
		ProfileTheme:  u.ProfileTheme,
		NameStyle:     u.NameStyle,
		ProfileTitle:  u.ProfileTitle,
		ProfileMotto:  u.ProfileMotto,
		FavoriteDrink: u.FavoriteDrink,
		BannerURL:     u.BannerURL,
	}
}

func ClampPoints(points int) int {
	if points < 0 {
		return 0
	}

	return points
}
