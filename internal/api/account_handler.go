package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cuddly-waffle/account-api/internal/api/shared"
	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/platform/logger"
	"github.com/cuddly-waffle/account-api/internal/service"
)

// AccountHandler serves the /api/users endpoints.
type AccountHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts service.AccountService, log *slog.Logger) *AccountHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AccountHandler{
		accounts: accounts,
		logger:   log.With("component", "account_handler"),
	}
}

// CreateAccount handles POST /api/users/accounts.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.Create(r.Context(), req.RealName, req.UserName, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "could not create user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, user.Public())
}

// ListAccounts handles GET /api/users.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.GetAll(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "could not get users")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, domain.PublicUsers(users))
}

// GetAccountByID handles GET /api/users/{id}/id.
func (h *AccountHandler) GetAccountByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "could not get user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user.Public())
}

// GetAccountByEmail handles GET /api/users/{email}/email.
func (h *AccountHandler) GetAccountByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetByEmail(r.Context(), pathParam(r, "email"))
	if err != nil {
		HandleAPIError(w, r, err, "could not get user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user.Public())
}

// UpdateAccount handles PATCH /api/users/{id}/id.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if !decodeOptionalAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), pathParam(r, "id"), req.ProfileUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "could not update user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user.Public())
}

// ChangePassword handles PATCH /api/users/password/{id}/id.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.ChangePassword(r.Context(), pathParam(r, "id"), req.OldPassword, req.NewPassword)
	if err != nil {
		HandleAPIError(w, r, err, "could not update user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user.Public())
}

// Login handles POST /api/users/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "could not authenticate user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("login succeeded", "user_id", result.User.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		User:      result.User,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Me handles GET /api/users/me. It requires the auth middleware.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.NewUnauthorizedError(), "")
		return
	}

	user, err := h.accounts.GetByID(r.Context(), userID.String())
	if err != nil {
		HandleAPIError(w, r, err, "could not get user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user.Public())
}
