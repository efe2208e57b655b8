package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

func TestChallengeService_DrawCyclesThroughDeck(t *testing.T) {
	t.Parallel()

	svc := NewChallengeService(nil, NewLockedRand(7))
	challenges := []domain.Challenge{{ID: "c1", Text: "un"}, {ID: "c2", Text: "deux"}, {ID: "c3", Text: "trois"}}

	var bag []int
	seen := make(map[string]int)
	for i := 0; i < 3; i++ {
		var text string
		text, bag = svc.draw(challenges, bag)
		seen[text]++
	}
	assert.Empty(t, bag)
	assert.Equal(t, map[string]int{"un": 1, "deux": 1, "trois": 1}, seen)

	_, bag = svc.draw(challenges, bag)
	assert.Len(t, bag, 2)
}

func TestChallengeService_DrawEdgeCases(t *testing.T) {
	t.Parallel()

	svc := NewChallengeService(nil, fixedRand{n: 1})

	text, bag := svc.draw(nil, []int{4})
	assert.Equal(t, NoChallenge, text)
	assert.Equal(t, []int{4}, bag)

	challenges := []domain.Challenge{{Text: "a"}, {Text: "b"}}
	text, bag = svc.draw(challenges, []int{0, 99})
	assert.Equal(t, "b", text)
	assert.Equal(t, []int{0}, bag)
}

func TestChallengeService_Random(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewChallengeService(f.repo, fixedRand{})

	text, bag, err := svc.Random(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.NotEqual(t, NoChallenge, text)
	assert.Len(t, bag, len(domain.SeedChallenges())-1)
}
