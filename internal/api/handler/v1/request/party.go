package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

const msgPartyRequired = "Nom et lieu obligatoires."

type CreatePartyRequest struct {
	RedirectTarget
	Name         string `form:"name"`
	LocationName string `form:"location_name"`
	Date         string `form:"date"`
	Lat          string `form:"lat"`
	Lng          string `form:"lng"`
}

func (req *CreatePartyRequest) Validate() error {
	trim(&req.Name, &req.LocationName, &req.Date)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required.Error(msgPartyRequired)),
		validation.Field(&req.LocationName, validation.Required.Error(msgPartyRequired)),
	))
}

type PartyRequest struct {
	PartyID  string `form:"party_id"`
	CoverURL string `form:"party_cover_url"`
}

func (req *PartyRequest) Validate() error {
	trim(&req.PartyID, &req.CoverURL)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.PartyID, validation.Required.Error("Soiree introuvable.")),
	))
}
