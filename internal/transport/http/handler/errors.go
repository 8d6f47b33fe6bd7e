package handler

const (
	errInternalServer     = "Internal server error"
	errDuplicateUser      = "A user with this email exists"
	errInvalidCredentials = "Incorrect email or password"
	errTooManyAttempts    = "Too many login attempts."
	errUserNotFound       = "User not found"
	errUnauthorized       = "Unauthorized"
	errPasswordTooLong    = "Password must be at most 72 bytes"
)
