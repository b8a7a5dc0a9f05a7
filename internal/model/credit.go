package model

import "time"

// Credit request statuses.  Pending is the only non-terminal state.
const (
	RequestPending  = "Pending"
	RequestApproved = "Approved"
	RequestRejected = "Rejected"
)

// TransactionCompleted is the only status a Transaction ever carries.
const TransactionCompleted = "Completed"

// CreditPackage is a value object copied into each credit request.
type CreditPackage struct {
	Credits     int64   `json:"credits"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// DefaultCreditPackages is the purchasable catalogue.
var DefaultCreditPackages = []CreditPackage{
	{Credits: 75, Price: 5, Description: "Best for starters"},
	{Credits: 150, Price: 9, Description: "Most popular"},
	{Credits: 300, Price: 17, Description: "Best value"},
}

// CreditRequest is a user's claim that they paid for a package.  Name and
// Email are snapshots taken at submission time.
type CreditRequest struct {
	ID             uint64        `json:"id"`
	UserID         uint64        `json:"user_id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	TransactionRef string        `json:"transaction_id"`
	AmountPaid     float64       `json:"amount_paid"`
	Package        CreditPackage `json:"credit_package"`
	PaymentDate    time.Time     `json:"payment_date"`
	Status         string        `json:"status"`
	AdminNote      *string       `json:"admin_note,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
}

// Transaction is an append-only purchase record written on approval.
type Transaction struct {
	ID               uint64    `json:"id"`
	UserID           uint64    `json:"user_id"`
	Name             string    `json:"name"`
	CreditsPurchased int64     `json:"credits_purchased"`
	AmountPaid       float64   `json:"amount_paid"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"date"`
}
