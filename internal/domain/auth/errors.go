package auth

import "errors"

// Error codes returned by the service.
const (
	CodeInvalidInput       = "invalid_input"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeEmailExists        = "email_exists"
	CodeAthleteNotFound    = "user_not_found"
	codeInternal           = "auth_error"
)

// ErrEmailExists is returned by repositories when the email is taken.
var ErrEmailExists = errors.New("email already exists")
