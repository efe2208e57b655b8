package service

import (
	"context"
	"fmt"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

// push appends an unread notification for toUserID.
func push(doc *domain.Document, env Env, toUserID, kind, title, body string) {
	doc.Notifications = append(doc.Notifications, domain.Notification{
		ID:        env.NewID("notif"),
		ToUserID:  toUserID,
		Type:      domain.Cut(kind, domain.MaxNotificationType),
		Title:     domain.CutTrim(title, domain.MaxNotificationTitle),
		Body:      domain.CutTrim(body, domain.MaxNotificationBody),
		CreatedAt: env.Now().Unix(),
	})
}

type NotificationService struct {
	repo  DocumentRepository
	env   Env
	limit int
}

func NewNotificationService(repo DocumentRepository, env Env, limit int) *NotificationService {
	return &NotificationService{
		repo:  repo,
		env:   env,
		limit: limit,
	}
}

// Poll marks up to the batch limit of the actor's unread notifications as read
// and returns them, newest first. A notification is returned at most once.
func (s *NotificationService) Poll(ctx context.Context, actor domain.Actor) ([]domain.Notification, error) {
	return s.Drain(ctx, actor, s.limit)
}

func (s *NotificationService) Drain(ctx context.Context, actor domain.Actor, limit int) ([]domain.Notification, error) {
	var out []domain.Notification

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Load -> %w", err)
	}
	if _, err = requireUser(&doc, actor); err != nil {
		return nil, err
	}
	if !hasUnread(doc, actor.UserID) {
		return []domain.Notification{}, nil
	}

	_, err = s.repo.Update(ctx, func(doc *domain.Document) error {
		if _, err := requireUser(doc, actor); err != nil {
			return err
		}

		out = make([]domain.Notification, 0, limit)
		readAt := s.env.Now().Unix()
		for i := len(doc.Notifications) - 1; i >= 0 && len(out) < limit; i-- {
			n := &doc.Notifications[i]
			if n.ToUserID != actor.UserID || n.ReadAt != nil {
				continue
			}

			ts := readAt
			n.ReadAt = &ts
			out = append(out, *n)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return out, nil
}

func hasUnread(doc domain.Document, userID string) bool {
	for _, n := range doc.Notifications {
		if n.ToUserID == userID && n.ReadAt == nil {
			return true
		}
	}

	return false
}
