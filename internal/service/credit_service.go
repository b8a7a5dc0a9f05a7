package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/imagen-studio/internal/metrics"
	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/repository"
)

// CreditService owns the credit request ledger and its approval workflow.
type CreditService struct {
	db       *sql.DB
	users    *repository.UserRepo
	requests *repository.CreditRequestRepo
	txns     *repository.TransactionRepo
	logger   *slog.Logger
	now      func() time.Time
}

func NewCreditService(db *sql.DB, users *repository.UserRepo, requests *repository.CreditRequestRepo,
	txns *repository.TransactionRepo, logger *slog.Logger) *CreditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditService{
		db:       db,
		users:    users,
		requests: requests,
		txns:     txns,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitInput is a user's payment claim.
type SubmitInput struct {
	TransactionRef string
	AmountPaid     float64
	Package        model.CreditPackage
	PaymentDate    time.Time
}

// ParsePaymentDate accepts a calendar date (2006-01-02), as sent by date
// pickers, or a full RFC 3339 timestamp.
func ParsePaymentDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, validation("payment date is required")
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, validation("payment date must be YYYY-MM-DD or an RFC 3339 timestamp")
}

func (in SubmitInput) validate() error {
	switch {
	case strings.TrimSpace(in.TransactionRef) == "":
		return validation("transaction id is required")
	case in.AmountPaid <= 0:
		return validation("amount paid must be positive")
	case in.Package.Credits <= 0:
		return validation("package credits must be positive")
	case in.Package.Price <= 0:
		return validation("package price must be positive")
	case in.PaymentDate.IsZero():
		return validation("payment date is required")
	}
	return nil
}

// Submit records a Pending request with the user's current name and email
// copied in.  A user may hold several pending requests at once.
func (s *CreditService) Submit(ctx context.Context, userID uint64, in SubmitInput) (model.CreditRequest, error) {
	if err := in.validate(); err != nil {
		return model.CreditRequest{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CreditRequest{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return model.CreditRequest{}, persistence("load user", err)
	}

	cr := model.CreditRequest{
		UserID:         u.ID,
		Name:           u.Name,
		Email:          u.Email,
		TransactionRef: strings.TrimSpace(in.TransactionRef),
		AmountPaid:     in.AmountPaid,
		Package:        in.Package,
		PaymentDate:    in.PaymentDate.UTC(),
		Status:         model.RequestPending,
		CreatedAt:      s.now(),
	}
	if err := s.requests.Create(ctx, &cr); err != nil {
		return model.CreditRequest{}, persistence("insert credit request", err)
	}
	return cr, nil
}

// ListMine returns the caller's requests, newest first.
func (s *CreditService) ListMine(ctx context.Context, userID uint64) ([]model.CreditRequest, error) {
	out, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistence("list credit requests", err)
	}
	return out, nil
}

// ListAll returns every request, newest first.
func (s *CreditService) ListAll(ctx context.Context) ([]model.CreditRequest, error) {
	out, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, persistence("list credit requests", err)
	}
	return out, nil
}

// ListTransactions returns a user's purchases, or every purchase when
// userID is zero.
func (s *CreditService) ListTransactions(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	var (
		out []model.Transaction
		err error
	)
	if userID == 0 {
		out, err = s.txns.ListAll(ctx)
	} else {
		out, err = s.txns.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, persistence("list transactions", err)
	}
	return out, nil
}

// Approve grants the package credits to the request owner and appends a
// Completed transaction.  The status change, the balance change and the
// transaction row commit together or not at all.
func (s *CreditService) Approve(ctx context.Context, requestID uint64) (model.CreditRequest, error) {
	return s.resolve(ctx, requestID, model.RequestApproved, nil, func(tx *sql.Tx, cr model.CreditRequest, at time.Time) error {
		n, err := s.users.AddCreditsTx(ctx, tx, cr.UserID, cr.Package.Credits)
		if err != nil {
			return persistence("grant credits", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: owner %d of credit request %d", ErrNotFound, cr.UserID, cr.ID)
		}
		t := model.Transaction{
			UserID:           cr.UserID,
			Name:             cr.Name,
			CreditsPurchased: cr.Package.Credits,
			AmountPaid:       cr.AmountPaid,
			Status:           model.TransactionCompleted,
			CreatedAt:        at,
		}
		if err := s.txns.CreateTx(ctx, tx, &t); err != nil {
			return persistence("insert transaction", err)
		}
		return nil
	})
}

// Reject closes the request with an optional note.  Balances and the
// transaction log are untouched.
func (s *CreditService) Reject(ctx context.Context, requestID uint64, note *string) (model.CreditRequest, error) {
	if note != nil {
		trimmed := strings.TrimSpace(*note)
		if trimmed == "" {
			note = nil
		} else {
			note = &trimmed
		}
	}
	return s.resolve(ctx, requestID, model.RequestRejected, note, nil)
}

// resolve locks the request row, checks it is still Pending, flips its
// status and runs apply inside the same transaction.
func (s *CreditService) resolve(ctx context.Context, requestID uint64, status string, note *string,
	apply func(tx *sql.Tx, cr model.CreditRequest, at time.Time) error) (model.CreditRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.CreditRequest{}, persistence("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cr, err := s.requests.GetForUpdateTx(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CreditRequest{}, fmt.Errorf("%w: credit request %d", ErrNotFound, requestID)
		}
		return model.CreditRequest{}, persistence("lock credit request", err)
	}
	if cr.Status != model.RequestPending {
		return model.CreditRequest{}, fmt.Errorf("%w: request %d is %s", ErrAlreadyResolved, requestID, cr.Status)
	}

	at := s.now()
	n, err := s.requests.ResolveTx(ctx, tx, requestID, status, note, at)
	if err != nil {
		return model.CreditRequest{}, persistence("update credit request", err)
	}
	if n == 0 {
		return model.CreditRequest{}, fmt.Errorf("%w: request %d", ErrAlreadyResolved, requestID)
	}
	if apply != nil {
		if err := apply(tx, cr, at); err != nil {
			return model.CreditRequest{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.CreditRequest{}, persistence("commit", err)
	}
	committed = true

	cr.Status = status
	cr.AdminNote = note
	cr.ResolvedAt = &at
	metrics.RecordResolution(status)
	s.logger.Info("credit request resolved",
		"request_id", cr.ID, "user_id", cr.UserID, "status", status, "credits", cr.Package.Credits)
	return cr, nil
}
