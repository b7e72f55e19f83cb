package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/events"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/hash"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/repo"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/tokens"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/transport"
)

type UserService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	Events    events.Publisher
	Clock     func() time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) issue(u *models.User) (*transport.UserResponse, error) {
	token, err := tokens.Issue(u.ID.String(), s.JWTSecret, now(s.Clock))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return transport.NewUserResponse(u, token), nil
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.UserResponse, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Name: name, Email: email, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, "user_registered", user.ID.String(), map[string]any{"email": user.Email})
	return s.issue(user)
}

func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*transport.UserResponse, error) {
	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	return s.issue(user)
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) setEmail(ctx context.Context, u *models.User, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrValidation)
	}
	if email == u.Email {
		return nil
	}
	taken, err := s.Repo.EmailTaken(ctx, email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: user already exists", ErrConflict)
	}
	u.Email = email
	return nil
}

func (s *UserService) save(ctx context.Context, u *models.User) error {
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return err
	}
	publish(ctx, s.Events, events.TopicUsers, "user_updated", u.ID.String(), nil)
	return nil
}

// UpdateProfile patches the caller's own record and reissues a token.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.UpdateProfileRequest) (*transport.UserResponse, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if err := s.setEmail(ctx, user, *req.Email); err != nil {
			return nil, err
		}
	}
	if req.Password != nil && *req.Password != "" {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req transport.UpdateUserRequest) (*transport.UserResponse, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if err := s.setEmail(ctx, user, *req.Email); err != nil {
			return nil, err
		}
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return transport.NewUserResponse(user, ""), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return err
	}
	publish(ctx, s.Events, events.TopicUsers, "user_deleted", id.String(), nil)
	return nil
}
