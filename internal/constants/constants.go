package constants

const (
	// Session and context keys
	SessionCookieName     = "deliverables_session"
	ContextKeyProfileID   = "profile_id"
	ContextKeyProfile     = "profile"
	ContextKeyDeliverable = "deliverable"

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	MinPasswordLength = 8

	// AI
	MaxAIGeneratedDeliverables = 30

	// DateLayout is the wire format of calendar dates (due dates, event dates).
	DateLayout = "2006-01-02"
)
