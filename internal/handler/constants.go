package handler

const (
	APIPrefix = "/api"

	MsgInvalidRequestBody  = "Invalid request body"
	MsgInvalidCredentials  = "Invalid Email or password"
	MsgEmailRegistered     = "Email already registered"
	MsgValidationError     = "Validation error"
	MsgNoToken             = "No token provided"
	MsgInvalidSession      = "Invalid session"
	MsgLoggedOut           = "Logged out successfully"
	MsgSessionValid        = "Session still valid"
	MsgSessionRefreshed    = "Session refreshed"
	MsgNotAuthenticated    = "Not authenticated"
	MsgAdminRequired       = "Admin access required"
	MsgResourceNotFound    = "Resource not found"
	MsgFailedToFetchAudits = "Failed to fetch audit logs"
	MsgInvalidUserIDFormat = "Invalid userId %q"
)
