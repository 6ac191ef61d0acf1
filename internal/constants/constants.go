package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Sessions
const (
	SessionCookieName = "coursehub_session"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
