package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

const msgPostRequired = "Description et soiree obligatoires."

type CreatePostRequest struct {
	PartyID     string `form:"party_id"`
	Description string `form:"description"`
}

func (req *CreatePostRequest) Validate() error {
	trim(&req.PartyID, &req.Description)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.Description, validation.Required.Error(msgPostRequired)),
		validation.Field(&req.PartyID, validation.Required.Error(msgPostRequired)),
	))
}

type PostRequest struct {
	RedirectTarget
	PostID string `form:"post_id"`
}

func (req *PostRequest) Validate() error {
	trim(&req.PostID)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.PostID, validation.Required.Error("Post introuvable.")),
	))
}
