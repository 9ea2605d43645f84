package email

import "errors"

var (
	// ErrFailedToSendEmail is returned when the provider rejects a send.
	ErrFailedToSendEmail = errors.New("email: failed to send email")

	// ErrInvalidConfig is returned when required configuration is missing.
	ErrInvalidConfig = errors.New("email: invalid config")

	// ErrInvalidParams is returned when send parameters fail validation.
	ErrInvalidParams = errors.New("email: invalid send parameters")

	// ErrNoRecipient is returned when a user cannot be resolved to an address.
	ErrNoRecipient = errors.New("email: no recipient address for user")
)
