package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ems/internal/auth"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Users  *auth.Directory
	Secret string
	TTL    time.Duration
}

func NewHandler(users *auth.Directory, secret string, ttl time.Duration) *Handler {
	return &Handler{Users: users, Secret: secret, TTL: ttl}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.Bind(w, r, &payload, reqID) {
		return
	}

	cred, err := h.Users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("login failed", "requestId", reqID, "err", err)
		}
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	issuedAt := time.Now().UTC()
	token, err := auth.GenerateToken(h.Secret, auth.Claims{Email: cred.Email, RoleName: cred.Role}, h.TTL)
	if err != nil {
		slog.Error("token issue failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	slog.Info("login", "email", cred.Email, "role", cred.Role)
	api.Success(w, loginResponse{Token: token, Role: cred.Role, ExpiresAt: issuedAt.Add(h.TTL)}, reqID)
}
