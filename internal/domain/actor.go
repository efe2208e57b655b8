package domain

// AdminDelegateID is the member allowed to switch admin mode on for their session.
const AdminDelegateID = "u5"

// Actor is the request-scoped identity passed into every operation.
type Actor struct {
	UserID    string
	SessionID string
	AdminMode bool
}

func (a Actor) IsAnonymous() bool {
	return a.UserID == ""
}

// CanAccessAdmin reports whether u, acting as a, may run admin operations.
func (a Actor) CanAccessAdmin(u User) bool {
	if u.IsAdmin() {
		return true
	}

	return u.ID == AdminDelegateID && a.AdminMode
}
