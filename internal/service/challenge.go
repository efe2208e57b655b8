package service

import (
	"context"
	"fmt"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

const NoChallenge = "Aucun defi disponible."

// Shuffler is the subset of *math/rand.Rand used to deal challenges.
type Shuffler interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

type ChallengeService struct {
	repo DocumentRepository
	rnd  Shuffler
}

func NewChallengeService(repo DocumentRepository, rnd Shuffler) *ChallengeService {
	return &ChallengeService{
		repo: repo,
		rnd:  rnd,
	}
}

// Random draws the next challenge from bag, a shuffled deck of challenge indices
// kept per session. An empty bag is refilled, so every challenge comes up once per round.
func (s *ChallengeService) Random(ctx context.Context, bag []int) (string, []int, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return "", bag, fmt.Errorf("s.repo.Load -> %w", err)
	}

	text, rest := s.draw(doc.Challenges, bag)

	return text, rest, nil
}

func (s *ChallengeService) draw(challenges []domain.Challenge, bag []int) (string, []int) {
	if len(challenges) == 0 {
		return NoChallenge, bag
	}

	if len(bag) == 0 {
		bag = make([]int, len(challenges))
		for i := range bag {
			bag[i] = i
		}
		s.rnd.Shuffle(len(bag), func(i, j int) { bag[i], bag[j] = bag[j], bag[i] })
	}

	idx := bag[len(bag)-1]
	rest := bag[:len(bag)-1]
	if idx < 0 || idx >= len(challenges) {
		idx = s.rnd.Intn(len(challenges))
	}

	return challenges[idx].Text, rest
}
