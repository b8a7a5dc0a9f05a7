package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/imagen-studio/internal/imagegen"
	"github.com/iliyamo/imagen-studio/internal/metrics"
	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/repository"
	"github.com/iliyamo/imagen-studio/internal/storage"
	"github.com/iliyamo/imagen-studio/internal/utils"
)

// ImageGenerator produces one image for a derived prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) (*imagegen.Image, error)
}

// ImageStore persists image bytes and returns a URL for them.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Favorite toggle outcomes.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// GenerationService charges credits for provider calls and keeps each
// user's history and favorites.
type GenerationService struct {
	db        *sql.DB
	users     *repository.UserRepo
	history   *repository.HistoryRepo
	favorites *repository.FavoriteRepo
	generator ImageGenerator
	store     ImageStore
	cost      int64
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// GenerationOptions configures a GenerationService.  A nil Store inlines
// images as data URLs.
type GenerationOptions struct {
	Generator ImageGenerator
	Store     ImageStore
	Cost      int64
	Timeout   time.Duration
	Logger    *slog.Logger
}

func NewGenerationService(db *sql.DB, users *repository.UserRepo, history *repository.HistoryRepo,
	favorites *repository.FavoriteRepo, opts GenerationOptions) *GenerationService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cost <= 0 {
		opts.Cost = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	return &GenerationService{
		db:        db,
		users:     users,
		history:   history,
		favorites: favorites,
		generator: opts.Generator,
		store:     opts.Store,
		cost:      opts.Cost,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Cost is the price of one generation in credits.
func (s *GenerationService) Cost() int64 { return s.cost }

// GenerateInput is a generation request.  Empty options take defaults.
type GenerateInput struct {
	Prompt      string
	AspectRatio string
	Style       string
	Quality     string
}

func (in *GenerateInput) normalize() error {
	in.Prompt = strings.TrimSpace(in.Prompt)
	if in.Prompt == "" {
		return validation("prompt is required")
	}
	if in.AspectRatio == "" {
		in.AspectRatio = model.AspectSquare
	}
	if !model.ValidAspectRatio(in.AspectRatio) {
		return validation("unsupported aspect ratio")
	}
	if in.Style == "" {
		in.Style = model.DefaultStyle
	}
	if !model.ValidStyle(in.Style) {
		return validation("unsupported style")
	}
	if in.Quality == "" {
		in.Quality = model.DefaultQuality
	}
	if !model.ValidQuality(in.Quality) {
		return validation("unsupported quality")
	}
	return nil
}

// Generate checks the balance, calls the provider and, only when an image
// came back, debits non-admin users and records the history entry in one
// transaction.  The image is stored after that transaction commits.
func (s *GenerationService) Generate(ctx context.Context, userID uint64, in GenerateInput) (model.GeneratedImage, error) {
	if err := in.normalize(); err != nil {
		return model.GeneratedImage{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GeneratedImage{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return model.GeneratedImage{}, persistence("load user", err)
	}
	admin := u.IsAdmin()
	if !admin && u.Credits < s.cost {
		metrics.RecordGeneration("insufficient_credits", 0)
		return model.GeneratedImage{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientCredits, u.Credits, s.cost)
	}

	img, elapsed, err := s.callProvider(ctx, in)
	if err != nil {
		metrics.RecordGeneration("provider_failure", elapsed)
		s.logger.Warn("image generation failed", "user_id", userID, "error", err)
		return model.GeneratedImage{}, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.GeneratedImage{}, persistence("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if !admin {
		ok, err := s.users.DebitTx(ctx, tx, userID, s.cost)
		if err != nil {
			return model.GeneratedImage{}, persistence("debit credits", err)
		}
		if !ok {
			// balance was spent by a concurrent request after the check above
			metrics.RecordGeneration("insufficient_credits", elapsed)
			return model.GeneratedImage{}, fmt.Errorf("%w: need %d", ErrInsufficientCredits, s.cost)
		}
	}
	item := model.GenerationHistoryItem{
		UserID:      userID,
		UserName:    u.Name,
		Prompt:      in.Prompt,
		Style:       in.Style,
		Quality:     in.Quality,
		AspectRatio: in.AspectRatio,
		CreatedAt:   s.now(),
	}
	if err := s.history.CreateTx(ctx, tx, &item); err != nil {
		return model.GeneratedImage{}, persistence("insert history", err)
	}
	after, err := s.users.GetByIDTx(ctx, tx, userID)
	if err != nil {
		return model.GeneratedImage{}, persistence("reload user", err)
	}
	if err := tx.Commit(); err != nil {
		return model.GeneratedImage{}, persistence("commit", err)
	}
	committed = true

	// stored only after the charge commits
	url := s.storeImage(ctx, userID, img)
	metrics.RecordGeneration("success", elapsed)
	if !admin {
		metrics.RecordDebit(s.cost)
	}
	return model.GeneratedImage{
		ImageURL:         url,
		Prompt:           in.Prompt,
		History:          item,
		RemainingCredits: after.Credits,
		UnlimitedCredits: admin,
	}, nil
}

func (s *GenerationService) callProvider(ctx context.Context, in GenerateInput) (*imagegen.Image, time.Duration, error) {
	if s.generator == nil {
		return nil, 0, errors.New("no image generator configured")
	}
	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	img, err := s.generator.Generate(pctx, imagegen.Request{
		Prompt:      model.DerivePrompt(in.Prompt, in.Style, in.Quality),
		AspectRatio: in.AspectRatio,
	})
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, elapsed, imagegen.ErrNoImage
	}
	return img, elapsed, nil
}

// storeImage uploads to object storage when available and falls back to an
// inline data URL.
func (s *GenerationService) storeImage(ctx context.Context, userID uint64, img *imagegen.Image) string {
	if s.store != nil {
		url, err := s.store.Upload(ctx, img.Data, img.MIMEType)
		if err == nil {
			return url
		}
		s.logger.Warn("image upload failed, inlining", "user_id", userID, "error", err)
	}
	return storage.DataURL(img.Data, img.MIMEType)
}

// ToggleFavorite adds the image to the user's favorites or removes it when
// already present.  Applying it twice restores the original set.
func (s *GenerationService) ToggleFavorite(ctx context.Context, userID uint64, imageURL, prompt string) (string, error) {
	imageURL = strings.TrimSpace(imageURL)
	prompt = strings.TrimSpace(prompt)
	if imageURL == "" || prompt == "" {
		return "", validation("image url and prompt are required")
	}
	hash := utils.SHA256Hex(imageURL)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", persistence("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result := FavoriteAdded
	id, err := s.favorites.FindForUpdateTx(ctx, tx, userID, hash)
	switch {
	case err == nil:
		if err := s.favorites.DeleteTx(ctx, tx, id); err != nil {
			return "", persistence("delete favorite", err)
		}
		result = FavoriteRemoved
	case errors.Is(err, sql.ErrNoRows):
		f := model.Favorite{UserID: userID, ImageURL: imageURL, Prompt: prompt, CreatedAt: s.now()}
		// a concurrent toggle already inserted it; the image is a favorite either way
		if err := s.favorites.CreateTx(ctx, tx, &f, hash); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return "", persistence("insert favorite", err)
		}
	default:
		return "", persistence("lookup favorite", err)
	}

	if err := tx.Commit(); err != nil {
		return "", persistence("commit", err)
	}
	committed = true
	return result, nil
}

// ListFavorites returns the user's favorites, newest first.
func (s *GenerationService) ListFavorites(ctx context.Context, userID uint64) ([]model.Favorite, error) {
	out, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistence("list favorites", err)
	}
	return out, nil
}

// ListHistory returns a user's generations, or everyone's when userID is zero.
func (s *GenerationService) ListHistory(ctx context.Context, userID uint64) ([]model.GenerationHistoryItem, error) {
	var (
		out []model.GenerationHistoryItem
		err error
	)
	if userID == 0 {
		out, err = s.history.ListAll(ctx)
	} else {
		out, err = s.history.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, persistence("list history", err)
	}
	return out, nil
}
