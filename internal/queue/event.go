// Package queue carries admin activity events over RabbitMQ.
package queue

import "time"

// ActivityEvent is published whenever an administrator changes state on
// behalf of another user.  The consumer persists it as an ActivityLog.
type ActivityEvent struct {
	AdminID      uint64    `json:"admin_id"`
	AdminEmail   string    `json:"admin_email"`
	Action       string    `json:"action"`
	TargetUserID *uint64   `json:"target_user_id,omitempty"`
	TargetName   string    `json:"target_name"`
	Details      string    `json:"details"`
	OccurredAt   time.Time `json:"occurred_at"`
}
