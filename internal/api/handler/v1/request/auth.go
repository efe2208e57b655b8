package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type LoginRequest struct {
	UserID   string `form:"user_id"`
	Password string `form:"password"`
}

func (req *LoginRequest) Validate() error {
	trim(&req.UserID)

	return asValidationError(validation.ValidateStruct(
		req,
		validation.Field(&req.UserID, validation.Required.Error("Compte introuvable.")),
	))
}

type SetPasswordRequest struct {
	NewPassword string `form:"new_password"`
}

type ToggleAdminModeRequest struct {
	AdminMode string `form:"admin_mode"`
}

func (req *ToggleAdminModeRequest) Enabled() bool {
	return req.AdminMode == "1"
}

// UpdateProfileRequest leaves absent fields nil so they keep their stored value.
type UpdateProfileRequest struct {
	Name          *string `form:"name"`
	ClassName     *string `form:"class_name"`
	Bio           *string `form:"bio"`
	Theme         *string `form:"theme"`
	ProfileTheme  *string `form:"profile_theme"`
	NameStyle     *string `form:"name_style"`
	ProfileTitle  *string `form:"profile_title"`
	ProfileMotto  *string `form:"profile_motto"`
	FavoriteDrink *string `form:"favorite_drink"`
	BannerURL     *string `form:"banner_url"`
	NewPassword   string  `form:"new_password"`
	AvatarURL     string  `form:"avatar_url"`
}
