package handler

const (
	msgLoginFailed      = "Login failed. Please check your credentials."
	msgLoginUnavailable = "Error: sign-in is temporarily unavailable. Please try again later."
	msgLoginInvalidForm = "Please provide an email address and a password."
	msgLoginSucceeded   = "Login successful!"
	msgMagicInvalidForm = "Please provide a valid email address."

	errInvalidSignature = "invalid_signature"
	errInvalidRequest   = "invalid_request"
)

// Webhook response statuses.
const (
	statusActivated = "subscription activated"
	statusIgnored   = "ignored"
	statusError     = "error"
)
