package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/middleware"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/request"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/response"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/game"
)

// GameInspector exposes the running coordinator's state
type GameInspector interface {
	Snapshot(ctx context.Context) (game.Snapshot, error)
}

// AdminHandler handles the admin endpoints
type AdminHandler struct {
	authService *auth.Service
	games       GameInspector
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *auth.Service, games GameInspector) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		games:       games,
	}
}

func decodeAdminLogin(r *http.Request) (request.AdminLoginRequest, error) {
	var req request.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, NewInvalidRequestError("invalid request body")
	}
	if req.Password == "" {
		return req, NewInvalidRequestError("password is required")
	}
	return req, nil
}

// Login handles POST /api/v1/admin/session
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAdminLogin(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.AdminLogin(req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AdminSessionFromAuth(session))
}

// Logout handles DELETE /api/v1/admin/session
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	h.authService.InvalidateSession(session.Token)
	response.NoContent(w)
}

// ListAccounts handles GET /api/v1/admin/users
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.authService.ListAll(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountList{Accounts: response.AccountsFromModel(accounts)})
}

// GetGame handles GET /api/v1/admin/game
func (h *AdminHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	snap, err := h.games.Snapshot(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromSnapshot(snap))
}

// LegacyLogin handles POST /admin: the password is checked and the account
// list returned in the same request, with no session. The shared secret
// model is weak; the /api/v1/admin endpoints should be preferred.
func (h *AdminHandler) LegacyLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAdminLogin(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if !h.authService.CheckAdminSecret(req.Password) {
		WriteError(w, model.ErrUnauthorized)
		return
	}

	accounts, err := h.authService.ListAll(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountsFromModel(accounts))
}
