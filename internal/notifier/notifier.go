package notifier

import "context"

// Sender delivers a one-time code out of band. Implementations must not block
// the authentication path; callers dispatch in the background and a delivery
// failure never leaks into the caller's response.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
