package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/laconfrerie/confrerie-api/internal/domain"
	"github.com/laconfrerie/confrerie-api/internal/pkg/guard"
)

const DefaultPartyCover = "logo.png"

type PartyService struct {
	repo  DocumentRepository
	env   Env
	guard Guard
}

func NewPartyService(repo DocumentRepository, env Env, guard Guard) *PartyService {
	return &PartyService{
		repo:  repo,
		env:   env,
		guard: guard,
	}
}

type NewParty struct {
	Name         string
	LocationName string
	Date         string
	Lat          string
	Lng          string
	Cover        ImageSource
}

func (s *PartyService) CreateParty(ctx context.Context, actor domain.Actor, in NewParty) (domain.Party, error) {
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.LocationName)
	if name == "" || location == "" {
		return domain.Party{}, domain.NewValidationError("name", "Nom et lieu obligatoires.")
	}
	if actor.IsAnonymous() {
		return domain.Party{}, domain.NewPermissionError("Connexion requise.")
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.env.Now().Format("2006-01-02")
	}

	key := guard.Key(actor.SessionID, "party", actor.UserID, name, location, date)
	if !s.guard.Allow(key) {
		return domain.Party{}, domain.NewRateLimitedError(key, "Soiree deja envoyee. Attends 2 secondes.")
	}

	cover := ""
	if in.Cover != nil {
		stored, err := in.Cover()
		if err != nil {
			return domain.Party{}, err
		}
		cover = stored
	}
	if cover == "" {
		cover = DefaultPartyCover
	}

	party := domain.Party{
		ID:           s.env.NewID("party"),
		Name:         name,
		Date:         date,
		LocationName: location,
		CoverURL:     cover,
		CreatedBy:    actor.UserID,
	}
	lat, latOK := parseCoordinate(in.Lat)
	lng, lngOK := parseCoordinate(in.Lng)
	if latOK && lngOK {
		party.Lat, party.Lng = &lat, &lng
	}

	_, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		if _, err := requireUser(doc, actor); err != nil {
			return err
		}

		doc.Parties = append([]domain.Party{party}, doc.Parties...)

		return nil
	})
	if err != nil {
		return domain.Party{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return party, nil
}

func parseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

type CoverUpdate struct {
	PartyID  string `json:"partyId"`
	CoverURL string `json:"coverUrl"`
}

// UpdateCover replaces a party cover with an uploaded image or, failing that, a submitted URL.
func (s *PartyService) UpdateCover(ctx context.Context, actor domain.Actor, partyID string, upload ImageSource, coverURL string) (CoverUpdate, error) {
	partyID = strings.TrimSpace(partyID)

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return CoverUpdate{}, fmt.Errorf("s.repo.Load -> %w", err)
	}
	if _, err = requireAdmin(&doc, actor); err != nil {
		return CoverUpdate{}, err
	}
	if doc.PartyIndex(partyID) < 0 {
		return CoverUpdate{}, domain.NewNotFoundError("party", partyID, "Soiree introuvable.")
	}

	cover := ""
	if upload != nil {
		if cover, err = upload(); err != nil {
			return CoverUpdate{}, err
		}
	}
	if input := strings.TrimSpace(coverURL); cover == "" && validURL(input) {
		cover = input
	}
	if cover == "" {
		return CoverUpdate{}, domain.NewValidationError("party_cover_file", "Image de couverture requise.")
	}

	_, err = s.repo.Update(ctx, func(doc *domain.Document) error {
		if _, err := requireAdmin(doc, actor); err != nil {
			return err
		}

		idx := doc.PartyIndex(partyID)
		if idx < 0 {
			return domain.NewNotFoundError("party", partyID, "Soiree introuvable.")
		}
		doc.Parties[idx].CoverURL = cover

		return nil
	})
	if err != nil {
		return CoverUpdate{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return CoverUpdate{PartyID: partyID, CoverURL: cover}, nil
}

// DeleteParty removes a party with all its posts, revoking the points each post earned.
func (s *PartyService) DeleteParty(ctx context.Context, actor domain.Actor, partyID string) error {
	partyID = strings.TrimSpace(partyID)

	_, err := s.repo.Update(ctx, func(doc *domain.Document) error {
		if _, err := requireAdmin(doc, actor); err != nil {
			return err
		}

		idx := doc.PartyIndex(partyID)
		if idx < 0 {
			return domain.NewNotFoundError("party", partyID, "Soiree introuvable.")
		}

		remaining := make([]domain.Post, 0, len(doc.Posts))
		for _, post := range doc.Posts {
			if post.PartyID != partyID {
				remaining = append(remaining, post)
				continue
			}
			revokePost(doc, post)
		}
		doc.Posts = remaining
		doc.Parties = append(doc.Parties[:idx], doc.Parties[idx+1:]...)

		return nil
	})
	if err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}
