// Package eventhandler contains domain event handlers: the reactions that run
// after a command commits, such as milestone notifications and audit logging.
package eventhandler

import "context"

// NotificationSender delivers user-facing notifications. The delivery channel
// is infrastructure's concern; handlers only decide when to notify.
type NotificationSender interface {
	Send(ctx context.Context, userID, title, body string) error
}
