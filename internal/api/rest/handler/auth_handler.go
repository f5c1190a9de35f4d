package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/pos-order-relay/internal/api/rest/middleware"
	"github.com/CameronXie/pos-order-relay/internal/auth"
	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/upstream"
)

const invalidCredentialsMessage = "Invalid credentials or restaurant not active"

// CredentialAuthenticator resolves login credentials to an account
type CredentialAuthenticator interface {
	Authenticate(ctx context.Context, login, password string) (*domain.Account, error)
}

// SessionTokenIssuer signs session tokens
type SessionTokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
	TTL() time.Duration
}

// SessionRepository records successful logins
type SessionRepository interface {
	Insert(ctx context.Context, session *domain.Session) error
}

// GoogleAuthenticator proxies OAuth sign-in to the upstream platform
type GoogleAuthenticator interface {
	GoogleLogin(ctx context.Context, payload json.RawMessage) ([]byte, error)
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authenticator CredentialAuthenticator
	tokens        SessionTokenIssuer
	sessions      SessionRepository
	google        GoogleAuthenticator
	logger        *slog.Logger
	now           func() time.Time
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(
	authenticator CredentialAuthenticator,
	tokens SessionTokenIssuer,
	sessions SessionRepository,
	google GoogleAuthenticator,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		tokens:        tokens,
		sessions:      sessions,
		google:        google,
		logger:        logger,
		now:           time.Now,
	}
}

// LoginRequest represents the login request payload. Email may carry a username.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// LoginResponse represents the login response payload
type LoginResponse struct {
	Token        string          `json:"token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	User         *domain.Account `json:"user"`
	RestaurantID int64           `json:"restaurant_id"`
}

// SessionResponse describes the bearer token of the current request
type SessionResponse struct {
	Subject          string    `json:"sub"`
	UserID           int64     `json:"user_id"`
	RestaurantID     int64     `json:"restaurant_id"`
	AppRestaurantUID string    `json:"app_restaurant_uid,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Invalid request format", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
		return
	}

	login := req.login()
	if login == "" || req.Password == "" {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Email or username and password are required")
		return
	}

	account, err := h.authenticator.Authenticate(r.Context(), login, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) || errors.Is(err, auth.ErrPasswordMismatch) {
			h.logger.Warn("Login rejected", "login", login, "reason", err.Error())
		} else {
			h.logger.Error("Failed to authenticate user", "login", login, "error", err)
		}
		WriteErrorResponse(w, http.StatusUnauthorized, CodeAuthenticationFailed, invalidCredentialsMessage)
		return
	}

	token, err := h.tokens.Issue(auth.ClaimsFor(account))
	if err != nil {
		h.logger.Error("Failed to generate token", "error", err, "user_id", account.ID)
		writeInternalError(w)
		return
	}

	h.recordSession(r.Context(), &domain.Session{
		Username:     account.Username,
		Email:        account.Email,
		RestaurantID: strconv.FormatInt(account.RestaurantID, 10),
		AuthMethod:   domain.AuthMethodPassword,
	})

	h.logger.Info("Login successful", "user_id", account.ID, "restaurant_id", account.RestaurantID)
	WriteJSONResponse(w, http.StatusOK, LoginResponse{
		Token:        token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.tokens.TTL().Seconds()),
		User:         account,
		RestaurantID: account.RestaurantID,
	})
}

// GoogleLogin handles POST /auth/google by proxying the body to the upstream platform
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := decodeJSON(r, &payload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
		return
	}

	body, err := h.google.GoogleLogin(r.Context(), payload)
	if err != nil {
		var netErr *upstream.NetworkError
		if errors.As(err, &netErr) {
			h.logger.Error("Google login upstream unreachable", "error", err)
			WriteErrorResponse(w, http.StatusServiceUnavailable, CodeUpstreamUnavailable, "Authentication service unavailable")
			return
		}

		h.logger.Warn("Google login rejected", "error", err)
		WriteErrorResponse(w, http.StatusUnauthorized, CodeAuthenticationFailed, "Google authentication failed")
		return
	}

	var request struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(payload, &request)

	var response struct {
		RestaurantID any `json:"restaurant_id"`
	}
	_ = json.Unmarshal(body, &response)

	h.recordSession(r.Context(), &domain.Session{
		Email:        request.Email,
		RestaurantID: restaurantIDString(response.RestaurantID),
		AuthMethod:   domain.AuthMethodGoogle,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Session handles GET /auth/session, echoing the claims of a validated token
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		h.logger.Error("Claims not found in context")
		WriteErrorResponse(w, http.StatusUnauthorized, CodeAuthenticationFailed, "Authentication required")
		return
	}

	resp := SessionResponse{
		Subject:          claims.Subject,
		UserID:           claims.UserID,
		RestaurantID:     claims.RestaurantID,
		AppRestaurantUID: claims.AppRestaurantUID,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}

	WriteJSONResponse(w, http.StatusOK, resp)
}

// recordSession appends a login audit row. A failure does not fail the login.
func (h *AuthHandler) recordSession(ctx context.Context, session *domain.Session) {
	session.ID = uuid.NewString()
	session.LoggedInAt = h.now().UTC()

	if err := h.sessions.Insert(context.WithoutCancel(ctx), session); err != nil {
		h.logger.Error("Failed to record session", "error", err, "auth_method", session.AuthMethod)
	}
}

func restaurantIDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
