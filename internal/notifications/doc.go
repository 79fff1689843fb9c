// Package notifications sends optional ntfy push notifications for workflow
// milestones. Without a configured topic every call is a no-op.
package notifications
