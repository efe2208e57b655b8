package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

type AddPointsRequest struct {
	TargetUserID string `form:"target_user_id"`
	DeltaPoints  string `form:"delta_points"`
	Reason       string `form:"reason"`
}

func (req *AddPointsRequest) Validate() error {
	trim(&req.TargetUserID, &req.Reason)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.TargetUserID, validation.Required.Error("Joueur invalide.")),
	))
}

func (req *AddPointsRequest) Delta() int {
	return atoi(req.DeltaPoints)
}

type CreateUserRequest struct {
	Name      string `form:"name"`
	ClassName string `form:"class_name"`
	Role      string `form:"role"`
	Password  string `form:"password"`
	AvatarURL string `form:"avatar_url"`
}

func (req *CreateUserRequest) Validate() error {
	trim(&req.Name, &req.ClassName, &req.Role, &req.AvatarURL)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required.Error("Nom obligatoire.")),
	))
}

type DeleteUserRequest struct {
	TargetUserID string `form:"target_user_id"`
}

func (req *DeleteUserRequest) Validate() error {
	trim(&req.TargetUserID)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.TargetUserID, validation.Required.Error("Utilisateur introuvable.")),
	))
}

// ToggleMapRequest treats a missing flag as "enabled".
type ToggleMapRequest struct {
	IsMapEnabled *string `form:"is_map_enabled"`
}

func (req *ToggleMapRequest) Enabled() bool {
	return req.IsMapEnabled == nil || *req.IsMapEnabled == "1"
}

type CreateChallengeRequest struct {
	Text       string `form:"challenge_text"`
	Difficulty string `form:"challenge_difficulty"`
}

func (req *CreateChallengeRequest) Validate() error {
	trim(&req.Text, &req.Difficulty)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.Text, validation.Required.Error("Texte du defi obligatoire.")),
	))
}

type DeleteChallengeRequest struct {
	ChallengeID string `form:"challenge_id"`
}

type CreateItemRequest struct {
	Name        string `form:"item_name"`
	Description string `form:"item_desc"`
	Rarity      string `form:"item_rarity"`
	Target      string `form:"item_target"`
}

func (req *CreateItemRequest) Validate() error {
	trim(&req.Name, &req.Description, &req.Rarity, &req.Target)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required.Error("Nom objet + destinataire requis.")),
		validation.Field(&req.Target, validation.Required.Error("Nom objet + destinataire requis.")),
	))
}

func (req *CreateItemRequest) ParsedTarget() domain.Target {
	return domain.ParseTarget(req.Target)
}

type CreateAchievementRequest struct {
	Name        string `form:"ach_name"`
	Description string `form:"ach_desc"`
	Icon        string `form:"ach_icon"`
}

func (req *CreateAchievementRequest) Validate() error {
	trim(&req.Name, &req.Description, &req.Icon)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required.Error("Nom succes requis.")),
	))
}

type AssignAchievementRequest struct {
	AchievementID string `form:"achievement_id"`
	Target        string `form:"ach_target"`
}

func (req *AssignAchievementRequest) Validate() error {
	trim(&req.AchievementID, &req.Target)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.AchievementID, validation.Required.Error("Succes et destinataire requis.")),
		validation.Field(&req.Target, validation.Required.Error("Succes et destinataire requis.")),
	))
}

func (req *AssignAchievementRequest) ParsedTarget() domain.Target {
	return domain.ParseTarget(req.Target)
}
