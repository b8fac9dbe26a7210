package http

import (
	"net/http"

	"github.com/anishff444/nepwears/internal/account"
	"github.com/anishff444/nepwears/internal/domain"
)

type userResponse struct {
	User *domain.User `json:"user"`
}

// Signup handles POST /api/v1/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in account.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, invalidBody(err), msgGeneric)
		return
	}

	user, err := h.account.Signup(r.Context(), h.state(r), in)
	if err != nil {
		h.fail(w, r, err, msgGeneric)
		return
	}
	writeData(w, http.StatusCreated, userResponse{User: user})
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in account.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, invalidBody(err), msgGeneric)
		return
	}

	user, err := h.account.Login(r.Context(), h.state(r), in)
	if err != nil {
		h.fail(w, r, err, msgGeneric)
		return
	}
	writeData(w, http.StatusOK, userResponse{User: user})
}

// Logout handles POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.account.Logout(r.Context(), h.state(r)); err != nil {
		h.fail(w, r, err, msgGeneric)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.account.Me(r.Context(), h.state(r))
	if err != nil {
		h.fail(w, r, err, msgGeneric)
		return
	}
	writeData(w, http.StatusOK, userResponse{User: user})
}

// UpdateMe handles PATCH /api/v1/auth/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in account.UpdateProfileInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, invalidBody(err), msgGeneric)
		return
	}

	user, err := h.account.UpdateProfile(r.Context(), h.state(r), in)
	if err != nil {
		h.fail(w, r, err, msgGeneric)
		return
	}
	writeData(w, http.StatusOK, userResponse{User: user})
}

// UpdatePassword handles PATCH /api/v1/auth/me/password
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in account.UpdatePasswordInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, invalidBody(err), msgGeneric)
		return
	}

	user, err := h.account.UpdatePassword(r.Context(), h.state(r), in)
	if err != nil {
		h.fail(w, r, err, msgGeneric)
		return
	}
	writeData(w, http.StatusOK, userResponse{User: user})
}

// DeleteMe handles DELETE /api/v1/auth/me
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.account.DeleteAccount(r.Context(), h.state(r)); err != nil {
		h.fail(w, r, err, msgGeneric)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
