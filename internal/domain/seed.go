package domain

import "net/url"

const (
	DefaultAdminID       = "admin"
	DefaultAdminPassword = "admin"
	DefaultClassName     = "Fetard"
)

// SeedAvatar returns the generated avatar used when a member has none.
func SeedAvatar(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.PathEscape(seed)
}

func newDefaultMember(id, name string) User {
	return User{
		ID:              id,
		Name:            name,
		Role:            RoleMember,
		ClassName:       DefaultClassName,
		AvatarURL:       SeedAvatar(name),
		Inventory:       []Item{},
		Achievements:    []Achievement{},
		MustSetPassword: true,
		Theme:           ThemeNeon,
		ProfileTheme:    ProfileThemes[0],
		NameStyle:       NameStyles[0],
	}
}

// DefaultAdmin is the canonical admin account, with adminHash as its password hash.
func DefaultAdmin(adminHash string) User {
	return User{
		ID:           DefaultAdminID,
		Name:         "Le Taulier (Admin)",
		Role:         RoleAdmin,
		ClassName:    "Admin",
		Bio:          "Gestionnaire de la confrerie",
		AvatarURL:    "https://api.dicebear.com/7.x/bottts/svg?seed=Admin",
		Inventory:    []Item{},
		Achievements: []Achievement{},
		PasswordHash: &adminHash,
		Theme:        ThemeNeon,
		ProfileTheme: ProfileThemes[0],
		NameStyle:    NameStyles[0],
	}
}

// DefaultUsers is the roster restored when no user survives normalization.
func DefaultUsers(adminHash string) []User {
	return []User{
		newDefaultMember("u1", "Justin"),
		newDefaultMember("u2", "Robin"),
		newDefaultMember("u3", "Benjy"),
		newDefaultMember("u4", "Ruru"),
		newDefaultMember("u5", "Guilhem"),
		DefaultAdmin(adminHash),
	}
}

// SeedChallenges are merged into every stored challenge list.
func SeedChallenges() []Challenge {
	out := make([]Challenge, len(seedChallenges))
	copy(out, seedChallenges)

	return out
}

var seedChallenges = []Challenge{
	{ID: "c1", Text: "Bois 3 gorgees sans les mains.", Difficulty: DifficultyEasy},
	{ID: "c2", Text: "Fais trinquer 3 personnes inconnues.", Difficulty: DifficultyEasy},
	{ID: "c3", Text: "Fais un toast dramatique de 20 secondes.", Difficulty: DifficultyEasy},
	{ID: "c4", Text: "Imite une pub de boisson pendant 15 secondes.", Difficulty: DifficultyEasy},
	{ID: "c5", Text: "Demande a quelqu’un son meilleur surnom de soiree.", Difficulty: DifficultyEasy},
	{ID: "c6", Text: "Fais un cul sec (petit verre).", Difficulty: DifficultyMedium},
	{ID: "c7", Text: "Danse sans musique pendant 30 secondes.", Difficulty: DifficultyMedium},
	{ID: "c8", Text: "Raconte une anecdote cringe de 45 secondes.", Difficulty: DifficultyMedium},
	{ID: "c9", Text: "Parle avec une voix robot pendant 2 minutes.", Difficulty: DifficultyMedium},
	{ID: "c10", Text: "Fais un karaoke solo sur le refrain de ton choix.", Difficulty: DifficultyMedium},
	{ID: "c11", Text: "Laisse quelqu’un choisir ta boisson du prochain tour.", Difficulty: DifficultyMedium},
	{ID: "c12", Text: "Fais 15 squats avant de boire.", Difficulty: DifficultyMedium},
	{ID: "c13", Text: "Trouve un objet rouge et fais une story avec.", Difficulty: DifficultyMedium},
	{ID: "c14", Text: "Fais rire 3 personnes en moins de 2 minutes.", Difficulty: DifficultyMedium},
	{ID: "c15", Text: "Echange ton pseudo avec quelqu’un pour 10 minutes.", Difficulty: DifficultyMedium},
	{ID: "c16", Text: "Shot mystere choisi par la table.", Difficulty: DifficultyHardcore},
	{ID: "c17", Text: "Parle en rimant pendant 3 minutes.", Difficulty: DifficultyHardcore},
	{ID: "c18", Text: "Fais un mini stand-up de 1 minute.", Difficulty: DifficultyHardcore},
	{ID: "c19", Text: "Cul sec + 10 pompes.", Difficulty: DifficultyHardcore},
	{ID: "c20", Text: "Laisse le groupe choisir ton prochain defi.", Difficulty: DifficultyHardcore},
	{ID: "c21", Text: "Fais la meilleure imitation d’un prof.", Difficulty: DifficultyMedium},
	{ID: "c22", Text: "Bois en gardant les yeux fermes.", Difficulty: DifficultyEasy},
	{ID: "c23", Text: "Reconstitue une scene de film au hasard.", Difficulty: DifficultyMedium},
	{ID: "c24", Text: "Invente un cocktail imaginaire et vend-le.", Difficulty: DifficultyMedium},
	{ID: "c25", Text: "Fais un compliment sincere a 4 personnes.", Difficulty: DifficultyEasy},
	{ID: "c26", Text: "Mime un animal jusqu’a ce qu’on devine.", Difficulty: DifficultyEasy},
	{ID: "c27", Text: "Laisse ton voisin ecrire ta bio pour 10 min.", Difficulty: DifficultyMedium},
	{ID: "c28", Text: "Parie un shot sur un pierre-feuille-ciseaux.", Difficulty: DifficultyHardcore},
	{ID: "c29", Text: "Bois une gorgee a chaque fois que tu ris (5 min).", Difficulty: DifficultyHardcore},
	{ID: "c30", Text: "Tu dois finir ta phrase en chantant (10 min).", Difficulty: DifficultyMedium},
	{ID: "c31", Text: "Fais un tour de table en mode presentateur TV.", Difficulty: DifficultyMedium},
	{ID: "c32", Text: "Crie “sante” dans 3 langues.", Difficulty: DifficultyEasy},
	{ID: "c33", Text: "Raconte ton reve le plus bizarre.", Difficulty: DifficultyEasy},
	{ID: "c34", Text: "Defi mime cocktail: les autres devinent.", Difficulty: DifficultyMedium},
	{ID: "c35", Text: "Change de place toutes les 2 minutes (10 min).", Difficulty: DifficultyHardcore},
	{ID: "c36", Text: "Fais un selfie de groupe le plus chaotique possible.", Difficulty: DifficultyEasy},
	{ID: "c37", Text: "Donne un surnom a chacun de la table.", Difficulty: DifficultyMedium},
	{ID: "c38", Text: "Fais un plan de soiree absurde en 30 secondes.", Difficulty: DifficultyMedium},
	{ID: "c39", Text: "Prends la pose statue pendant 45 secondes.", Difficulty: DifficultyEasy},
	{ID: "c40", Text: "Tu perds: shot. Tu gagnes: shot offert (mini-jeu).", Difficulty: DifficultyHardcore},
	{ID: "c41", Text: "Fais 20 secondes de moonwalk improvise.", Difficulty: DifficultyMedium},
	{ID: "c42", Text: "Discours de remerciement pour une “victoire” imaginaire.", Difficulty: DifficultyMedium},
	{ID: "c43", Text: "Raconte 2 verites + 1 mensonge sur ta semaine.", Difficulty: DifficultyEasy},
	{ID: "c44", Text: "Prends un accent aleatoire pendant 5 minutes.", Difficulty: DifficultyHardcore},
	{ID: "c45", Text: "Defi “aucun mot anglais” pendant 10 minutes.", Difficulty: DifficultyHardcore},
	{ID: "c46", Text: "Fais une pub pour l’eau en mode epique.", Difficulty: DifficultyEasy},
	{ID: "c47", Text: "Danse synchronisee avec un binome 20 secondes.", Difficulty: DifficultyMedium},
	{ID: "c48", Text: "Fais un check original avec 5 personnes.", Difficulty: DifficultyEasy},
	{ID: "c49", Text: "Shot si tu rates une devinette du groupe.", Difficulty: DifficultyHardcore},
	{ID: "c50", Text: "Tu dois parler en chuchotant pendant 3 minutes.", Difficulty: DifficultyMedium},
	{ID: "c51", Text: "Imite un DJ pendant 30 secondes.", Difficulty: DifficultyEasy},
	{ID: "c52", Text: "Fais une mini interview de 2 personnes.", Difficulty: DifficultyEasy},
	{ID: "c53", Text: "Fais deviner un film juste avec des gestes.", Difficulty: DifficultyMedium},
	{ID: "c54", Text: "Bois uniquement a la paille au prochain verre.", Difficulty: DifficultyMedium},
	{ID: "c55", Text: "Defi vitesse: finis ton histoire en 20 secondes.", Difficulty: DifficultyMedium},
	{ID: "c56", Text: "Tu choisis un “mot interdit” pour 10 min.", Difficulty: DifficultyHardcore},
	{ID: "c57", Text: "Rime avec chaque prenom de la table.", Difficulty: DifficultyHardcore},
	{ID: "c58", Text: "Fais un compliment absurde mais stylé.", Difficulty: DifficultyEasy},
	{ID: "c59", Text: "Cache un “easter egg” dans une photo de groupe.", Difficulty: DifficultyMedium},
	{ID: "c60", Text: "Shot final si personne ne rigole a ta blague.", Difficulty: DifficultyHardcore},
}
