package response

import (
	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/service"
	"github.com/laconfrerie/confrerie-api/internal/session"
)

// Page is the GET / body: the read model plus the per-session extras.
type Page struct {
	service.PageView
	CSRF            string                `json:"csrf"`
	Flash           *session.Flash        `json:"flash"`
	RandomChallenge string                `json:"randomChallenge"`
	Notifications   []domain.Notification `json:"notifications"`
}
