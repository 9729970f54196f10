package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/isabelayared/pharmastock-system/internal/auth/jwt"
	"github.com/isabelayared/pharmastock-system/pkg/config"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/httputil"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// AuthHandler serves the operator login and token validation
type AuthHandler struct {
	tokens *jwt.Manager
	auth   *config.AuthConfig
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokens *jwt.Manager, auth *config.AuthConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, auth: auth, logger: log}
}

// RegisterRoutes registers auth routes on the router
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login handles POST /auth/login against the configured operator account
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if req.Username != h.auth.Username {
		httputil.Error(w, errors.InvalidCredentials())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.auth.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn().
			Str("username", req.Username).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed login attempt")
		httputil.Error(w, errors.InvalidCredentials())
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Username)
	if err != nil {
		httputil.Error(w, errors.Internal("failed to issue token"))
		return
	}

	httputil.JSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

// RequireAuth is middleware that rejects requests without a valid bearer
// token. The authenticated username lands in the request context.
func RequireAuth(tokens *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.Error(w, errors.Unauthorized("authorization header must be a bearer token"))
				return
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				httputil.Error(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(httputil.WithUser(r.Context(), claims.Username)))
		})
	}
}
