package domain

type Rank struct {
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
}

// Ranks is ordered by ascending MinPoints.
var Ranks = []Rank{
	{Name: "Petit Joueur", MinPoints: 0, Icon: "🧃", Color: "text-gray-400"},
	{Name: "Apprenti Soiffard", MinPoints: 100, Icon: "🍺", Color: "text-yellow-200"},
	{Name: "Barathonien", MinPoints: 300, Icon: "🍻", Color: "text-orange-400"},
	{Name: "Mixologue Fou", MinPoints: 600, Icon: "🍹", Color: "text-green-400"},
	{Name: "Roi de la Nuit", MinPoints: 1000, Icon: "🍸", Color: "text-blue-400"},
	{Name: "Légende du Bar", MinPoints: 2000, Icon: "🍾", Color: "text-purple-500"},
	{Name: "Sommelier du Chaos", MinPoints: 5000, Icon: "🍷", Color: "text-red-500"},
	{Name: "Dieu de la Pinte", MinPoints: 10000, Icon: "⚡", Color: "text-cyan-400"},
	{Name: "L'Imbibe Supreme", MinPoints: 20000, Icon: "🧊", Color: "text-pink-400"},
	{Name: "L'Absolu Ethylique", MinPoints: 50000, Icon: "🌌", Color: "text-violet-400"},
}

// RankFor returns the highest tier whose threshold is <= points.
func RankFor(points int) Rank {
	current := Ranks[0]
	for _, r := range Ranks {
		if points >= r.MinPoints {
			current = r
		}
	}

	return current
}

// NextRank returns the lowest tier above points, or false at the top tier.
func NextRank(points int) (Rank, bool) {
	for _, r := range Ranks {
		if r.MinPoints > points {
			return r, true
		}
	}

	return Rank{}, false
}

// RankProgress interpolates between the current and next thresholds, in [0,100].
func RankProgress(points int) float64 {
	next, ok := NextRank(points)
	if !ok {
		return 100
	}

	current := RankFor(points)
	span := next.MinPoints - current.MinPoints
	if span <= 0 {
		return 100
	}

	progress := float64(points-current.MinPoints) / float64(span) * 100
	switch {
	case progress < 0:
		return 0
	case progress > 100:
		return 100
	default:
		return progress
	}
}
