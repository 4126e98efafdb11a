package constants

// Session and context keys
const (
	SessionCookieName     = "warbler_session"
	SessionKeyUserID      = "curr_user"
	ContextKeyUserID      = "user_id"
	ContextKeyCurrentUser = "current_user"
	ContextKeyMessage     = "message"
	ContextKeyRequestID   = "request_id"
)

// Flash categories understood by the layout template
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// User facing notices
const (
	MsgAccessUnauthorized = "Access unauthorized."
	MsgUsernameTaken      = "Username already taken"
	MsgInvalidCredentials = "Invalid credentials."
	MsgLoggedOut          = "You have successfully logged out."
	MsgWrongPassword      = "Wrong password, please try again."
	MsgRateLimited        = "Too many requests. Please try again later."
)

// Message limits
const (
	MaxMessageLength  = 140
	MaxUsernameLength = 50
	TimelineLimit     = 100
	ProfileLimit      = 100
)

// Default profile images
const (
	DefaultImageURL       = "/static/images/default-pic.svg"
	DefaultHeaderImageURL = "/static/images/warbler-hero.svg"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)
