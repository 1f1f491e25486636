package constants

// SessionCookieName is the cookie carrying the session id
const SessionCookieName = "task_session"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	ContextKeyTask      = "task"
)

// Validation limits
const (
	MinPasswordLength    = 8
	MaxNameLength        = 50
	MaxDescriptionLength = 500
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
