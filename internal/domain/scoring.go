package domain

import "unicode/utf8"

const (
	LikePoints    = 5
	MaxPostMedia  = 8
	minPostPoints = 2
	maxPostPoints = 45
	basePoints    = 4
	maxDescBonus  = 10
	maxMediaBonus = 22
	maxRandBonus  = 6
)

var GMComments = []string{
	"Style valide, bon dossier.",
	"Grosse energie, continue comme ca.",
	"Post solide, points accordes.",
	"Belle contribution a la soiree.",
	"Bon niveau, ca monte.",
}

// Rand is the subset of *math/rand.Rand used by scoring.
type Rand interface {
	Intn(n int) int
}

type Score struct {
	Points  int
	Comment string
}

func DescriptionBonus(description string) int {
	length := utf8.RuneCountInString(description)
	bonus := (length / 40) * 2
	if length > 0 {
		bonus += 2
	}

	return clamp(bonus, 0, maxDescBonus)
}

func MediaBonus(media []Media) int {
	var bonus int
	for _, m := range media {
		if m.Type == MediaVideo {
			bonus += 5
		} else {
			bonus += 3
		}
	}

	return clamp(bonus, 0, maxMediaBonus)
}

// ScorePost computes the points awarded to a new post and picks a flavor comment.
func ScorePost(description string, media []Media, rnd Rand) Score {
	points := basePoints + DescriptionBonus(description) + MediaBonus(media) + rnd.Intn(maxRandBonus+1)

	return Score{
		Points:  clamp(points, minPostPoints, maxPostPoints),
		Comment: GMComments[rnd.Intn(len(GMComments))],
	}
}

// PostValue is what a post contributed to its owner: award plus like bonuses.
func PostValue(p Post) int {
	return p.PointsAwarded + len(p.Likes)*LikePoints
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
