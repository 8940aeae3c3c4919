package ws

// Session lifecycle events pushed to connected devices.
const (
	EventSessionEstablished = "session_established"
	EventLogout             = "logout"
	EventPasswordReset      = "password_reset"
	EventAccountDeleted     = "account_deleted"
)
