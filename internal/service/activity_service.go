package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/queue"
	"github.com/iliyamo/imagen-studio/internal/repository"
)

// ActivityPublisher hands events to the broker.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, ev queue.ActivityEvent) error
}

// ActivityService records the admin audit trail.  Events go through the
// broker when a publisher is configured and are written directly otherwise.
type ActivityService struct {
	repo      *repository.ActivityRepo
	publisher ActivityPublisher
	logger    *slog.Logger
}

func NewActivityService(repo *repository.ActivityRepo, publisher ActivityPublisher, logger *slog.Logger) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityService{repo: repo, publisher: publisher, logger: logger}
}

// Record is best effort: failures are logged, never returned.
func (s *ActivityService) Record(ctx context.Context, ev queue.ActivityEvent) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if s.publisher != nil {
		err := s.publisher.PublishActivity(ctx, ev)
		if err == nil {
			return
		}
		s.logger.Warn("activity publish failed, writing directly", "action", ev.Action, "error", err)
	}
	entry := &model.ActivityLog{
		AdminID:      ev.AdminID,
		AdminEmail:   ev.AdminEmail,
		Action:       ev.Action,
		TargetUserID: ev.TargetUserID,
		TargetName:   ev.TargetName,
		Details:      ev.Details,
		CreatedAt:    ev.OccurredAt,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("activity write failed", "action", ev.Action, "error", err)
	}
}

// List returns the most recent entries, newest first.
func (s *ActivityService) List(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	out, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, persistence("list activity", err)
	}
	return out, nil
}
