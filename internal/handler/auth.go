package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/trendifymart/api/internal/auth"
	"github.com/trendifymart/api/internal/database"
	"github.com/trendifymart/api/internal/enum"
	"github.com/trendifymart/api/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// Generic responses for the account-existence-hiding endpoints. The body
// must be byte-identical whether or not the account or token exists.
const (
	forgotPasswordMessage = "If an account exists for that email, a password reset link has been sent"
	resetPasswordMessage  = "If the reset token is valid, the password has been updated"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, hashedPassword string) (uuid.UUID, error)
	CreatePasswordResetToken(ctx context.Context, arg database.CreatePasswordResetTokenParams) (database.PasswordResetToken, error)
	GetPasswordResetToken(ctx context.Context, token uuid.UUID) (database.PasswordResetToken, error)
	MarkPasswordResetTokenUsed(ctx context.Context, token uuid.UUID) (uuid.UUID, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/logout", h.Logout)
	r.Post("/api/auth/forgot-password", h.ForgotPassword)
	r.Post("/api/auth/reset-password", h.ResetPassword)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(h.jwtSecret))
		r.Get("/api/auth/me", h.Me)
	})
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         userResponse `json:"user"`
	SessionToken string       `json:"sessionToken"`
	ExpiresIn    int          `json:"expiresIn"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type tokenInfoResponse struct {
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type meResponse struct {
	User      userResponse      `json:"user"`
	TokenInfo tokenInfoResponse `json:"tokenInfo"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u database.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// --- Handlers ---

// Login handles email + password authentication. On success the session
// token is returned in the body and mirrored into the session_token
// cookie so both API clients and browser navigations can authenticate.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "email is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PASSWORD", "password is required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		log.Printf("ERROR: login: %v", err)
		writeInternalError(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, user.ID, user.Role)
	if err != nil {
		log.Printf("ERROR: login: generate token: %v", err)
		writeInternalError(w)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:         toUserResponse(user),
		SessionToken: token,
		ExpiresIn:    int(auth.SessionTTL.Seconds()),
	})
}

// Register creates a new account. Role defaults to "user" when omitted.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "name is required")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "email is required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "invalid email format")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PASSWORD", "password is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "password must be at least 8 characters")
		return
	}

	role := req.Role
	if role == "" {
		role = enum.UserRoleUser
	}
	if !enum.IsValidRole(role) {
		writeError(w, http.StatusBadRequest, "INVALID_ROLE", "invalid role")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: register: hash password: %v", err)
		writeInternalError(w)
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: string(hashed),
		Role:           role,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "EMAIL_EXISTS", "email already exists")
			return
		}
		log.Printf("ERROR: register: %v", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Me returns the authenticated user and token metadata.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "not authenticated")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		log.Printf("ERROR: me: %v", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		User: toUserResponse(user),
		TokenInfo: tokenInfoResponse{
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	})
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// ForgotPassword issues a reset token for the account, if one exists.
// The response is identical whether or not the email is registered so
// the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "email is required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "invalid email format")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err == nil {
		token := uuid.New()
		_, err := h.store.CreatePasswordResetToken(r.Context(), database.CreatePasswordResetTokenParams{
			Token:     token,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
		})
		if err != nil {
			log.Printf("ERROR: forgot-password: create token: %v", err)
		} else {
			// Stand-in for email delivery; the token only appears in server logs.
			log.Printf("Password reset token for %s: %s", user.Email, token)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: forgot-password: %v", err)
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: forgotPasswordMessage})
}

// ResetPassword consumes a reset token and sets a new password. Like
// ForgotPassword, the success response never reveals whether the token
// existed, had expired, or was already used.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "token is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "password must be at least 8 characters")
		return
	}

	// A malformed token is treated the same as an unknown one.
	tokenID, err := uuid.Parse(req.Token)
	if err != nil {
		writeJSON(w, http.StatusOK, messageResponse{Message: resetPasswordMessage})
		return
	}

	token, err := h.store.GetPasswordResetToken(r.Context(), tokenID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("ERROR: reset-password: %v", err)
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: resetPasswordMessage})
		return
	}

	if token.Used || time.Now().After(token.ExpiresAt) {
		writeJSON(w, http.StatusOK, messageResponse{Message: resetPasswordMessage})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: reset-password: hash password: %v", err)
		writeJSON(w, http.StatusOK, messageResponse{Message: resetPasswordMessage})
		return
	}

	if _, err := h.store.UpdateUserPassword(r.Context(), token.UserID, string(hashed)); err != nil {
		log.Printf("ERROR: reset-password: update password: %v", err)
		writeJSON(w, http.StatusOK, messageResponse{Message: resetPasswordMessage})
		return
	}
	if _, err := h.store.MarkPasswordResetTokenUsed(r.Context(), token.Token); err != nil {
		log.Printf("ERROR: reset-password: mark used: %v", err)
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: resetPasswordMessage})
}

// --- Helpers ---

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
