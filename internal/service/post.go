package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/pkg/guard"
)

// ErrSelfLike marks the rejection of a like on one's own post.
var ErrSelfLike = errors.New("self like")

// Guard rejects a repeated submission key.
type Guard interface {
	Allow(key string) bool
}

// MediaSource stores the submitted media when called. It runs after validation only.
type MediaSource func() ([]domain.Media, error)

// ImageSource stores a submitted image when called and returns its URL, or "" when nothing was sent.
type ImageSource func() (string, error)

type PostService struct {
	repo  DocumentRepository
	env   Env
	guard Guard
}

func NewPostService(repo DocumentRepository, env Env, guard Guard) *PostService {
	return &PostService{
		repo:  repo,
		env:   env,
		guard: guard,
	}
}

type NewPost struct {
	PartyID     string
	Description string
	// MediaNames are the submitted file names, used to recognise a double submission.
	MediaNames []string
	Media      MediaSource
}

type PostOwner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

type CreatedPost struct {
	Post        domain.Post  `json:"post"`
	Owner       PostOwner    `json:"owner"`
	Party       domain.Party `json:"party"`
	OwnerPoints int          `json:"ownerPoints"`
}

func (s *PostService) CreatePost(ctx context.Context, actor domain.Actor, in NewPost) (CreatedPost, error) {
	description := strings.TrimSpace(in.Description)
	partyID := strings.TrimSpace(in.PartyID)
	if description == "" || partyID == "" {
		return CreatedPost{}, domain.NewValidationError("description", "Description et soiree obligatoires.")
	}

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return CreatedPost{}, fmt.Errorf("s.repo.Load -> %w", err)
	}
	author, err := requireUser(&doc, actor)
	if err != nil {
		return CreatedPost{}, err
	}
	if doc.PartyIndex(partyID) < 0 {
		return CreatedPost{}, domain.NewNotFoundError("party", partyID, "Soiree introuvable.")
	}

	names := make([]string, 0, len(in.MediaNames))
	for _, n := range in.MediaNames {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	key := guard.Key(actor.SessionID, "post", author.ID, partyID, description, strings.Join(names, "|"))
	if !s.guard.Allow(key) {
		return CreatedPost{}, domain.NewRateLimitedError(key, "Post deja envoye. Attends 2 secondes.")
	}

	var media []domain.Media
	if in.Media != nil {
		if media, err = in.Media(); err != nil {
			return CreatedPost{}, err
		}
	}
	if len(media) > domain.MaxPostMedia {
		media = media[:domain.MaxPostMedia]
	}

	var out CreatedPost
	_, err = s.repo.Update(ctx, func(doc *domain.Document) error {
		author, err := requireUser(doc, actor)
		if err != nil {
			return err
		}
		partyIdx := doc.PartyIndex(partyID)
		if partyIdx < 0 {
			return domain.NewNotFoundError("party", partyID, "Soiree introuvable.")
		}

		score := domain.ScorePost(description, media, s.env.Rand)
		post := domain.Post{
			ID:            s.env.NewID("post"),
			UserID:        author.ID,
			PartyID:       partyID,
			ImageURL:      firstImage(media),
			Media:         append([]domain.Media{}, media...),
			Description:   description,
			PointsAwarded: score.Points,
			GMComment:     score.Comment,
			Timestamp:     s.env.Now().Unix(),
			Likes:         []string{},
		}
		doc.Posts = append([]domain.Post{post}, doc.Posts...)
		author.AddPoints(post.PointsAwarded)

		party := doc.Parties[partyIdx]
		for _, m := range doc.Members() {
			if m.ID == author.ID {
				continue
			}
			push(doc, s.env, m.ID, domain.NotificationPost, "Nouveau post", author.Name+" a poste dans "+party.Name)
		}

		out = CreatedPost{
			Post:        post,
			Owner:       PostOwner{ID: author.ID, Name: author.Name, AvatarURL: author.AvatarURL},
			Party:       party,
			OwnerPoints: author.Points,
		}

		return nil
	})
	if err != nil {
		return CreatedPost{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return out, nil
}

func firstImage(media []domain.Media) string {
	for _, m := range media {
		if m.Type == domain.MediaImage {
			return m.URL
		}
	}

	return ""
}

type LikeResult struct {
	LikesCount  int    `json:"likesCount"`
	Liked       bool   `json:"liked"`
	PostID      string `json:"postId"`
	OwnerID     string `json:"ownerId"`
	OwnerPoints int    `json:"ownerPoints"`
}

// ToggleLike flips the actor's like on a post and moves the owner's points by LikePoints.
func (s *PostService) ToggleLike(ctx context.Context, actor domain.Actor, postID string) (LikeResult, error) {
	postID = strings.TrimSpace(postID)

	var out LikeResult
	_, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		if _, err := requireUser(doc, actor); err != nil {
			return err
		}

		idx := doc.PostIndex(postID)
		if idx < 0 {
			return domain.NewNotFoundError("post", postID, "Post introuvable.")
		}
		post := &doc.Posts[idx]
		if post.UserID == actor.UserID {
			return fmt.Errorf("%w: %w", ErrSelfLike, domain.NewPermissionError("Tu ne peux pas liker ton propre post."))
		}

		liked := post.LikedBy(actor.UserID)
		delta := domain.LikePoints
		if liked {
			likes := make([]string, 0, len(post.Likes))
			for _, id := range post.Likes {
				if id != actor.UserID {
					likes = append(likes, id)
				}
			}
			post.Likes = likes
			delta = -domain.LikePoints
		} else {
			post.Likes = append(post.Likes, actor.UserID)
		}

		out = LikeResult{
			LikesCount: len(post.Likes),
			Liked:      !liked,
			PostID:     postID,
			OwnerID:    post.UserID,
		}
		if owner, ok := doc.FindUser(post.UserID); ok {
			out.OwnerPoints = owner.AddPoints(delta)
		}

		return nil
	})
	if err != nil {
		return LikeResult{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return out, nil
}

type DeletedPost struct {
	PostID      string `json:"postId"`
	OwnerID     string `json:"ownerId"`
	OwnerPoints int    `json:"ownerPoints"`
}

// DeletePost removes a post and takes back everything it earned its owner.
func (s *PostService) DeletePost(ctx context.Context, actor domain.Actor, postID string) (DeletedPost, error) {
	postID = strings.TrimSpace(postID)

	var out DeletedPost
	_, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		user, err := requireUser(doc, actor)
		if err != nil {
			return err
		}

		idx := doc.PostIndex(postID)
		if idx < 0 {
			return domain.NewNotFoundError("post", postID, "Post introuvable.")
		}
		post := doc.Posts[idx]
		if post.UserID != user.ID && !actor.CanAccessAdmin(*user) {
			return domain.NewPermissionError("Suppression non autorisee.")
		}

		out = DeletedPost{PostID: postID, OwnerID: post.UserID}
		out.OwnerPoints = revokePost(doc, post)
		doc.Posts = append(doc.Posts[:idx], doc.Posts[idx+1:]...)

		return nil
	})
	if err != nil {
		return DeletedPost{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return out, nil
}

// revokePost deducts the value of post from its owner and returns the owner's new points.
func revokePost(doc *domain.Document, post domain.Post) int {
	owner, ok := doc.FindUser(post.UserID)
	if !ok {
		return 0
	}

	return owner.AddPoints(-domain.PostValue(post))
}
