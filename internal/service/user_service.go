package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/iliyamo/imagen-studio/internal/model"
	"github.com/iliyamo/imagen-studio/internal/repository"
	"github.com/iliyamo/imagen-studio/internal/utils"
)

// UserService manages accounts, profiles and administrator credit grants.
type UserService struct {
	users          *repository.UserRepo
	favorites      *repository.FavoriteRepo
	initialCredits int64
	bcryptCost     int
	isAdminEmail   func(string) bool
	logger         *slog.Logger
}

// UserOptions configures a UserService.
type UserOptions struct {
	InitialCredits int64
	BcryptCost     int
	// IsAdminEmail reports accounts promoted to admin on login.
	IsAdminEmail func(string) bool
	Logger       *slog.Logger
}

func NewUserService(users *repository.UserRepo, favorites *repository.FavoriteRepo, opts UserOptions) *UserService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IsAdminEmail == nil {
		opts.IsAdminEmail = func(string) bool { return false }
	}
	return &UserService{
		users:          users,
		favorites:      favorites,
		initialCredits: opts.InitialCredits,
		bcryptCost:     opts.BcryptCost,
		isAdminEmail:   opts.IsAdminEmail,
		logger:         opts.Logger,
	}
}

// Register creates an account with the starting credit grant.
func (s *UserService) Register(ctx context.Context, name, email, password string) (model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return model.User{}, validation("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, validation("a valid email is required")
	}
	if len(password) < utils.MinPasswordLen {
		return model.User{}, validation(fmt.Sprintf("password must be at least %d characters", utils.MinPasswordLen))
	}

	id, err := s.users.Create(ctx, name, email, password, s.initialCredits, s.bcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, persistence("create user", err)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, persistence("load user", err)
	}
	return s.promoteIfListed(ctx, u)
}

// Login verifies the password and returns the account.
func (s *UserService) Login(ctx context.Context, email, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.User{}, validation("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, persistence("load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return s.promoteIfListed(ctx, u)
}

func (s *UserService) promoteIfListed(ctx context.Context, u model.User) (model.User, error) {
	if u.IsAdmin() || !s.isAdminEmail(u.Email) {
		return u, nil
	}
	if err := s.users.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
		return model.User{}, persistence("promote admin", err)
	}
	s.logger.Info("account promoted to admin", "user_id", u.ID)
	u.Role = model.RoleAdmin
	u.UnlimitedCredits = true
	return u, nil
}

// Get returns the account without favorites.
func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return model.User{}, persistence("load user", err)
	}
	return u, nil
}

// Profile returns the account with its favorites, newest first.
func (s *UserService) Profile(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	favs, err := s.favorites.ListByUser(ctx, id)
	if err != nil {
		return model.User{}, persistence("list favorites", err)
	}
	u.Favorites = favs
	return u, nil
}

// ProfileInput holds the editable profile fields.  Nil leaves a field as is.
type ProfileInput struct {
	Name     *string
	Avatar   *string
	Password *string
}

// UpdateProfile edits name, avatar or password.  A new password is hashed
// before it is stored.
func (s *UserService) UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (model.User, error) {
	var upd repository.ProfileUpdate
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return model.User{}, validation("name cannot be empty")
		}
		upd.Name = &name
	}
	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		upd.Avatar = &avatar
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			if errors.Is(err, utils.ErrWeakPassword) {
				return model.User{}, validation(fmt.Sprintf("password must be at least %d characters", utils.MinPasswordLen))
			}
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}
	if _, err := s.Get(ctx, id); err != nil {
		return model.User{}, err
	}
	if err := s.users.UpdateProfile(ctx, id, upd); err != nil {
		return model.User{}, persistence("update profile", err)
	}
	return s.Profile(ctx, id)
}

// Delete removes the account together with everything it owns.
func (s *UserService) Delete(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return model.User{}, persistence("delete user", err)
	}
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, nil
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	out, err := s.users.List(ctx)
	if err != nil {
		return nil, persistence("list users", err)
	}
	if out == nil {
		out = []model.User{}
	}
	return out, nil
}

// AddCredits adjusts a balance by a non-zero amount.  Negative amounts
// remove credits; the balance is clamped at zero.
func (s *UserService) AddCredits(ctx context.Context, id uint64, amount int64) (model.User, error) {
	if amount == 0 {
		return model.User{}, validation("amount must be non-zero")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return model.User{}, err
	}
	if err := s.users.AddCredits(ctx, id, amount); err != nil {
		return model.User{}, persistence("adjust credits", err)
	}
	return s.Get(ctx, id)
}
