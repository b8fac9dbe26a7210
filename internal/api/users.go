package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anishff444/nepwears/internal/domain"
)

// SignupRequest is the body of POST /users/signup. The confirmation field is
// checked locally and never sent.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMeRequest is the body of PATCH /users/updateMe. Empty fields are
// left unchanged.
type UpdateMeRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UpdatePasswordRequest is the body of PATCH /users/updateMyPassword.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type userPayload struct {
	User *domain.User `json:"user"`
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*domain.AuthResult, error) {
	return c.authCall(ctx, http.MethodPost, in, "users", "signup")
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*domain.AuthResult, error) {
	return c.authCall(ctx, http.MethodPost, in, "users", "login")
}

// UpdatePassword changes the password and returns the replacement token.
func (c *Client) UpdatePassword(ctx context.Context, in UpdatePasswordRequest) (*domain.AuthResult, error) {
	return c.authCall(ctx, http.MethodPatch, in, "users", "updateMyPassword")
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	return c.userCall(ctx, request{method: http.MethodGet, path: []string{"users", "me"}})
}

// UpdateMe changes the profile fields set in in.
func (c *Client) UpdateMe(ctx context.Context, in UpdateMeRequest) (*domain.User, error) {
	return c.userCall(ctx, request{method: http.MethodPatch, path: []string{"users", "updateMe"}, body: in})
}

// DeleteMe deactivates the authenticated account.
func (c *Client) DeleteMe(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, request{method: http.MethodDelete, path: []string{"users", "deleteMe"}}, false)
	return err
}

func (c *Client) authCall(ctx context.Context, method string, body any, path ...string) (*domain.AuthResult, error) {
	res, err := call[domain.AuthResult](ctx, c, request{method: method, path: path, body: body}, true)
	if err != nil {
		return nil, err
	}
	if res.Token == "" || res.User == nil {
		return nil, malformed(fmt.Errorf("%w: %s /%s: missing user or token", ErrMalformedResponse, method, joinPath(path)))
	}
	return &res, nil
}

func (c *Client) userCall(ctx context.Context, req request) (*domain.User, error) {
	res, err := call[userPayload](ctx, c, req, true)
	if err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, malformed(fmt.Errorf("%w: %s /%s: missing user", ErrMalformedResponse, req.method, joinPath(req.path)))
	}
	return res.User, nil
}
