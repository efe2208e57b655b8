package domain

// Document is the single aggregate persisted by the store.
type Document struct {
	Users              []User          `json:"users"`
	Parties            []Party         `json:"parties"`
	Posts              []Post          `json:"posts"`
	Challenges         []Challenge     `json:"challenges"`
	Settings           Settings        `json:"settings"`
	Activity           []ActivityEntry `json:"activity"`
	Notifications      []Notification  `json:"notifications"`
	AchievementLibrary []Achievement   `json:"achievementLibrary"`
}

type Party struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Date         string   `json:"date"`
	LocationName string   `json:"locationName"`
	CoverURL     string   `json:"coverUrl"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	CreatedBy    string   `json:"createdBy"`
}

type Media struct {
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
}

type Post struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	PartyID       string   `json:"partyId"`
	ImageURL      string   `json:"imageUrl"`
	Media         []Media  `json:"media"`
	Description   string   `json:"description"`
	PointsAwarded int      `json:"pointsAwarded"`
	GMComment     string   `json:"gmComment"`
	Timestamp     int64    `json:"timestamp"`
	Likes         []string `json:"likes"`
}

func (p Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}

	return false
}

type Challenge struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
}

type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      string `json:"rarity"`
	ImageURL    string `json:"imageUrl"`
	Stats       string `json:"stats"`
}

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	UnlockedAt  int64  `json:"unlockedAt"`
}

// Notification is unread while ReadAt is nil.
type Notification struct {
	ID        string `json:"id"`
	ToUserID  string `json:"toUserId"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
	ReadAt    *int64 `json:"readAt"`
}

type Settings struct {
	IsMapEnabled bool `json:"isMapEnabled"`
}

type ActivityEntry struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	By        string `json:"by"`
	Target    string `json:"target"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

func (d *Document) UserIndex(id string) int {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return i
		}
	}

	return -1
}

func (d *Document) PartyIndex(id string) int {
	for i := range d.Parties {
		if d.Parties[i].ID == id {
			return i
		}
	}

	return -1
}

func (d *Document) PostIndex(id string) int {
	for i := range d.Posts {
		if d.Posts[i].ID == id {
			return i
		}
	}

	return -1
}

func (d *Document) FindUser(id string) (*User, bool) {
	idx := d.UserIndex(id)
	if idx < 0 {
		return nil, false
	}

	return &d.Users[idx], true
}

// HasAdmin reports whether at least one ADMIN account exists.
func (d *Document) HasAdmin() bool {
	for _, u := range d.Users {
		if u.Role == RoleAdmin {
			return true
		}
	}

	return false
}

// Members returns the MEMBER accounts in document order.
func (d *Document) Members() []User {
	members := make([]User, 0, len(d.Users))
	for _, u := range d.Users {
		if u.Role == RoleMember {
			members = append(members, u)
		}
	}

	return members
}
