package domain

import "strings"

// Target addresses either one user or every member.
type Target struct {
	userID    string
	broadcast bool
}

func Single(userID string) Target {
	return Target{userID: userID}
}

func Broadcast() Target {
	return Target{broadcast: true}
}

// ParseTarget maps the form value "ALL" to Broadcast.
func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	if s == "ALL" {
		return Broadcast()
	}

	return Single(s)
}

func (t Target) IsBroadcast() bool {
	return t.broadcast
}

func (t Target) UserID() string {
	return t.userID
}

func (t Target) IsZero() bool {
	return !t.broadcast && t.userID == ""
}

func (t Target) String() string {
	if t.broadcast {
		return "ALL"
	}

	return t.userID
}
