// Package account implements signup, login and profile management for a
// storefront session.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anishff444/nepwears/internal/api"
	"github.com/anishff444/nepwears/internal/domain"
	"github.com/anishff444/nepwears/internal/session"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
	"github.com/anishff444/nepwears/pkg/validator"
)

// ErrPasswordMismatch is returned when a confirmation field differs from the
// password it confirms.
var ErrPasswordMismatch = apperrors.InvalidInput("Passwords do not match")

// SignupInput holds the signup form.
type SignupInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginInput holds the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput holds profile changes. Empty fields are left unchanged.
type UpdateProfileInput struct {
	Name  string `json:"name" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordInput holds a password change.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// API is the subset of the backend client used for accounts.
type API interface {
	Signup(ctx context.Context, in api.SignupRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, in api.LoginRequest) (*domain.AuthResult, error)
	Me(ctx context.Context) (*domain.User, error)
	UpdateMe(ctx context.Context, in api.UpdateMeRequest) (*domain.User, error)
	UpdatePassword(ctx context.Context, in api.UpdatePasswordRequest) (*domain.AuthResult, error)
	DeleteMe(ctx context.Context) error
}

// Sessions stores the auth part of a session. *session.Manager implements it.
type Sessions interface {
	Authenticate(ctx context.Context, st *session.State, token string, user *domain.User) error
	SetUser(ctx context.Context, st *session.State, user *domain.User) error
	Logout(ctx context.Context, st *session.State) error
}

// Service implements account operations on behalf of a session.
type Service struct {
	api      API
	sessions Sessions
	logger   *slog.Logger
}

// NewService creates an account service.
func NewService(client API, sessions Sessions, logger *slog.Logger) *Service {
	return &Service{api: client, sessions: sessions, logger: logger}
}

// Signup registers an account and logs the session in.
func (s *Service) Signup(ctx context.Context, st *session.State, in SignupInput) (*domain.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	res, err := s.api.Signup(ctx, api.SignupRequest{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		return nil, err
	}
	if err := s.login(ctx, st, res); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account created", slog.String("user_id", res.User.ID))
	return res.User, nil
}

// Login authenticates the session.
func (s *Service) Login(ctx context.Context, st *session.State, in LoginInput) (*domain.User, error) {
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	res, err := s.api.Login(ctx, api.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		return nil, err
	}
	if err := s.login(ctx, st, res); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", res.User.ID))
	return res.User, nil
}

// login stores the token and loads the account's server cart. A failed cart
// load leaves the cart empty.
func (s *Service) login(ctx context.Context, st *session.State, res *domain.AuthResult) error {
	if err := s.sessions.Authenticate(ctx, st, res.Token, res.User); err != nil {
		return fmt.Errorf("store login: %w", err)
	}
	st.Cart.FetchCart(api.WithToken(ctx, res.Token))
	return nil
}

// Logout forgets the token and clears the local cart. The server cart is
// kept for the next login.
func (s *Service) Logout(ctx context.Context, st *session.State) error {
	if err := s.sessions.Logout(ctx, st); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Me refreshes the cached profile from the backend. A rejected token logs the
// session out.
func (s *Service) Me(ctx context.Context, st *session.State) (*domain.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, s.checkRejected(ctx, st, err)
	}
	if err := s.sessions.SetUser(ctx, st, user); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the name or email.
func (s *Service) UpdateProfile(ctx context.Context, st *session.State, in UpdateProfileInput) (*domain.User, error) {
	if in.Name == "" && in.Email == "" {
		return nil, apperrors.InvalidInput("Nothing to update")
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.api.UpdateMe(ctx, api.UpdateMeRequest{Name: in.Name, Email: in.Email})
	if err != nil {
		return nil, s.checkRejected(ctx, st, err)
	}
	if err := s.sessions.SetUser(ctx, st, user); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	return user, nil
}

// UpdatePassword changes the password. The backend issues a new token, which
// replaces the session's.
func (s *Service) UpdatePassword(ctx context.Context, st *session.State, in UpdatePasswordInput) (*domain.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	res, err := s.api.UpdatePassword(ctx, api.UpdatePasswordRequest{
		PasswordCurrent: in.CurrentPassword,
		Password:        in.Password,
		PasswordConfirm: in.ConfirmPassword,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Authenticate(ctx, st, res.Token, res.User); err != nil {
		return nil, fmt.Errorf("store login: %w", err)
	}
	return res.User, nil
}

// DeleteAccount deactivates the account and logs the session out.
func (s *Service) DeleteAccount(ctx context.Context, st *session.State) error {
	if err := s.api.DeleteMe(ctx); err != nil {
		return s.checkRejected(ctx, st, err)
	}
	s.logger.InfoContext(ctx, "account deleted", slog.String("session_id", st.ID()))
	return s.Logout(ctx, st)
}

// checkRejected logs the session out when the backend no longer accepts its
// token. err is returned unchanged.
func (s *Service) checkRejected(ctx context.Context, st *session.State, err error) error {
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		return err
	}
	s.logger.InfoContext(ctx, "token rejected by backend, logging out", slog.String("session_id", st.ID()))
	if logoutErr := s.sessions.Logout(ctx, st); logoutErr != nil {
		s.logger.WarnContext(ctx, "logout after rejected token failed", slog.String("error", logoutErr.Error()))
	}
	return err
}
