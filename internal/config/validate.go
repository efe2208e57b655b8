package config

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Gin, validation.Required),
		validation.Field(&c.Storage, validation.Required),
		validation.Field(&c.Auth, validation.Required),
		validation.Field(&c.Guard, validation.Required),
		validation.Field(&c.Session, validation.Required),
		validation.Field(&c.Notification, validation.Required),
	)
}

func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.SecretKey, validation.Required),
	)
}

func (c *GinConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Mode, validation.In("debug", "release", "test")),
	)
}

var errDriverPath = errors.New("storage path required for the selected driver")

func (c *StorageConfig) Validate() error {
	err := validation.ValidateStruct(
		c,
		validation.Field(&c.Driver, validation.Required, validation.In(StorageFile, StoragePostgres, StorageSQLite)),
		validation.Field(&c.DocumentKey, validation.Required),
		validation.Field(&c.UploadDir, validation.Required),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
	)
	if err != nil {
		return err
	}

	if (c.Driver == StorageFile && c.DataFile == "") || (c.Driver == StorageSQLite && c.SQLitePath == "") {
		return errDriverPath
	}

	return nil
}

func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.RememberTTL, validation.Required),
		validation.Field(&c.MinPasswordLength, validation.Required, validation.Min(1)),
	)
}

func (c *GuardConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.Window, validation.Required),
		validation.Field(&c.CleanupInterval, validation.Required),
	)
}

func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.IdleTTL, validation.Required),
		validation.Field(&c.CleanupInterval, validation.Required),
	)
}

func (c *NotificationConfig) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.PollLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.PageLimit, validation.Required, validation.Min(1)),
	)
}
