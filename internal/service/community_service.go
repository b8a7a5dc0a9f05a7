package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/repository"
)

// defaultGallery is shown, and stored, when the gallery is still empty.
var defaultGallery = []model.GalleryImage{
	{ImageURL: "https://storage.googleapis.com/pinto-pachyderm-899147.appspot.com/a9c2db7b-05ba-4654-a63e-63f68d27776d.png", Title: "Cyberpunk City", Style: "Aesthetic"},
	{ImageURL: "https://storage.googleapis.com/pinto-pachyderm-899147.appspot.com/66904673-a8e5-423a-85cf-25d2a9d8050e.png", Title: "Enchanted Forest", Style: "Realistic"},
	{ImageURL: "https://storage.googleapis.com/pinto-pachyderm-899147.appspot.com/001a1e35-3759-4256-a09c-366551b99763.png", Title: "Space Explorer", Style: "3D Render"},
	{ImageURL: "https://storage.googleapis.com/pinto-pachyderm-899147.appspot.com/a42b9347-f7a3-4a11-a53c-2358e178b549.png", Title: "Anime Hero", Style: "Animated"},
}

type GalleryService struct {
	repo   *repository.GalleryRepo
	logger *slog.Logger
	now    func() time.Time
}

func NewGalleryService(repo *repository.GalleryRepo, logger *slog.Logger) *GalleryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryService{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the gallery.  An empty gallery is seeded with the default
// set.  Every default has a fixed seed key, so concurrent first reads store
// it once.  A failed seed is logged and the defaults are still returned.
func (s *GalleryService) List(ctx context.Context) ([]model.GalleryImage, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistence("list gallery", err)
	}
	if len(out) > 0 {
		return out, nil
	}

	now := s.now()
	seeded := make([]model.GalleryImage, 0, len(defaultGallery))
	for i, g := range defaultGallery {
		g.CreatedAt = now
		err := s.repo.CreateSeed(ctx, fmt.Sprintf("default-%d", i+1), &g)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			s.logger.Warn("gallery seed failed", "title", g.Title, "error", err)
		}
		seeded = append(seeded, g)
	}

	stored, err := s.repo.List(ctx)
	if err != nil || len(stored) == 0 {
		return seeded, nil
	}
	return stored, nil
}

// Add publishes an image to the gallery on behalf of adminID.
func (s *GalleryService) Add(ctx context.Context, adminID uint64, imageURL, title, style string) (model.GalleryImage, error) {
	g := model.GalleryImage{
		ImageURL:  strings.TrimSpace(imageURL),
		Title:     strings.TrimSpace(title),
		Style:     strings.TrimSpace(style),
		AddedBy:   &adminID,
		CreatedAt: s.now(),
	}
	if g.ImageURL == "" || g.Title == "" || g.Style == "" {
		return model.GalleryImage{}, validation("image url, title and style are required")
	}
	if !model.ValidStyle(g.Style) {
		return model.GalleryImage{}, validation("unsupported style")
	}
	if err := s.repo.Create(ctx, &g); err != nil {
		return model.GalleryImage{}, persistence("insert gallery image", err)
	}
	return g, nil
}

type ReviewService struct {
	repo *repository.ReviewRepo
	now  func() time.Time
}

func NewReviewService(repo *repository.ReviewRepo) *ReviewService {
	return &ReviewService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// List returns every review with its author, newest first.
func (s *ReviewService) List(ctx context.Context) ([]model.Review, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistence("list reviews", err)
	}
	return out, nil
}

// Create stores the caller's single review.
func (s *ReviewService) Create(ctx context.Context, userID uint64, rating int, comment string) (model.Review, error) {
	comment = strings.TrimSpace(comment)
	if rating < 1 || rating > 5 {
		return model.Review{}, validation("rating must be between 1 and 5")
	}
	if comment == "" {
		return model.Review{}, validation("comment is required")
	}
	rv := model.Review{UserID: userID, Rating: rating, Comment: comment, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, &rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Review{}, ErrReviewExists
		}
		return model.Review{}, persistence("insert review", err)
	}
	return rv, nil
}

type SupportService struct {
	repo *repository.SupportRepo
	now  func() time.Time
}

func NewSupportService(repo *repository.SupportRepo) *SupportService {
	return &SupportService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// SupportInput is a contact-form submission.  UserID is set when the
// sender is signed in.
type SupportInput struct {
	UserID    *uint64
	Name      string
	Email     string
	Subject   string
	Message   string
	IssueType string
}

// Submit opens a Pending ticket.
func (s *SupportService) Submit(ctx context.Context, in SupportInput) (model.SupportMessage, error) {
	m := model.SupportMessage{
		UserID:    in.UserID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		IssueType: strings.TrimSpace(in.IssueType),
		Status:    model.SupportPending,
		CreatedAt: s.now(),
	}
	if m.Name == "" || m.Message == "" {
		return model.SupportMessage{}, validation("name and message are required")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return model.SupportMessage{}, validation("a valid email is required")
	}
	if !model.ValidIssueType(m.IssueType) {
		return model.SupportMessage{}, validation("unsupported issue type")
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return model.SupportMessage{}, persistence("insert support message", err)
	}
	return m, nil
}

// List returns every ticket, newest first.
func (s *SupportService) List(ctx context.Context) ([]model.SupportMessage, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, persistence("list support messages", err)
	}
	return out, nil
}

// Resolve closes a ticket.
func (s *SupportService) Resolve(ctx context.Context, id uint64) error {
	ok, err := s.repo.Resolve(ctx, id)
	if err != nil {
		return persistence("resolve support message", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
