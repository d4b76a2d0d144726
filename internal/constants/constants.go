package constants

// Session and context keys
const (
	SessionCookieName  = "ndt_session"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
	ContextKeyEntry    = "work_hour_entry"
	ContextKeyLogger   = "logger"
)

// Validation limits
const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Hours
const (
	DefaultTimezone      = "Europe/Rome"
	DefaultStandardHours = "8"
	MaxHoursPerEntry     = 24
	ExpiryWarningDays    = 30
)

// Uploads
const (
	MaxUploadSize = 10 << 20
)

// ExportDateLayout is the it-IT day/month/year layout used in CSV exports.
const ExportDateLayout = "02/01/2006"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
