package mailer

import "errors"

var (
	// ErrNoRecipient indicates the message has no primary recipient.
	ErrNoRecipient = errors.New("email must have a recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("email must have HTML content")

	// ErrSendFailed indicates the transport could not deliver the message.
	ErrSendFailed = errors.New("failed to send email")

	// ErrInvalidConfig indicates a transport was constructed with missing
	// or malformed settings.
	ErrInvalidConfig = errors.New("invalid mailer configuration")
)
