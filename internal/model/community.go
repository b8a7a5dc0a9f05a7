package model

import "time"

// GalleryImage is a curated image shown on the public gallery.
type GalleryImage struct {
	ID        uint64    `json:"id"`
	ImageURL  string    `json:"image_url"`
	Title     string    `json:"title"`
	Style     string    `json:"style"`
	AddedBy   *uint64   `json:"added_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a user's rating of the service.  One per user.
type Review struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar *string   `json:"user_avatar,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// IssueTypes lists the accepted support ticket categories.
var IssueTypes = []string{
	"Billing & Payments", "Technical Issue", "Account Access", "General Inquiry", "Feedback & Suggestions",
}

// ValidIssueType reports whether t is a known ticket category.
func ValidIssueType(t string) bool { return contains(IssueTypes, t) }

const (
	SupportPending  = "Pending"
	SupportResolved = "Resolved"
)

// SupportMessage is a ticket submitted through the contact form.
type SupportMessage struct {
	ID        uint64    `json:"id"`
	UserID    *uint64   `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IssueType string    `json:"issue_type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Admin activity actions.
const (
	ActionAddCredits      = "add_credits"
	ActionRemoveCredits   = "remove_credits"
	ActionDeleteUser      = "delete_user"
	ActionApproveRequest  = "approve_credit_request"
	ActionRejectRequest   = "reject_credit_request"
	ActionAddGalleryImage = "add_gallery_image"
	ActionResolveSupport  = "resolve_support_ticket"
)

// ActivityLog is one entry of the admin audit trail.
type ActivityLog struct {
	ID           uint64    `json:"id"`
	AdminID      uint64    `json:"admin_id"`
	AdminEmail   string    `json:"admin_email"`
	Action       string    `json:"action"`
	TargetUserID *uint64   `json:"target_user_id,omitempty"`
	TargetName   string    `json:"target_name"`
	Details      string    `json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}
