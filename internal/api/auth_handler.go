package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/platform/logger"
	"github.com/taskfolio/taskfolio-api/internal/service/auth"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordHasher auth.PasswordHasher,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordHasher:   passwordHasher,
		passwordVerifier: passwordVerifier,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := domain.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := h.passwordHasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		HandleAPIError(w, r, err, "failed to create user")
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "email already registered")
			return
		}
		log.Error("failed to create user", "error", err)
		HandleAPIError(w, r, err, "failed to create user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Email)
	if err != nil {
		log.Error("failed to generate token", "error", err, "user_id", user.ID)
		HandleAPIError(w, r, err, "failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, "user registered", AuthData{
		User:  userToResponse(user),
		Token: token,
	})
}

// Login handles POST /api/auth/login.
//
// Unknown email and wrong password produce the same response so the
// endpoint cannot be used to probe which addresses are registered.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
			return
		}
		log.Error("failed to get user by email", "error", err)
		HandleAPIError(w, r, err, "failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
		return
	}

	if !user.Active {
		HandleAPIError(w, r, domain.ErrAccountDeactivated, "")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Email)
	if err != nil {
		log.Error("failed to generate token", "error", err, "user_id", user.ID)
		HandleAPIError(w, r, err, "failed to generate authentication token")
		return
	}

	// Record the login time. Not worth failing the login over.
	if err := h.userStore.TouchUpdatedAt(r.Context(), user.ID); err != nil {
		log.Warn("failed to record login time", "error", err, "user_id", user.ID)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "login successful", AuthData{
		User:  userToResponse(user),
		Token: token,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless so there is
// nothing to revoke server-side; the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, "logged out", nil)
}

// Me handles GET /api/auth/me. The user is re-fetched from the store so a
// deactivated or deleted account is rejected even while its token is still
// within its validity window.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	identity, ok := identityFromRequest(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "invalid token")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		log.Error("failed to get user", "error", err, "user_id", identity.UserID)
		HandleAPIError(w, r, err, "failed to load profile")
		return
	}

	if !user.Active {
		HandleAPIError(w, r, domain.ErrAccountDeactivated, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "profile retrieved", userToResponse(user))
}
