package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/trendifymart/api/internal/auth"
	"github.com/trendifymart/api/internal/enum"
)

type contextKey string

const claimsKey contextKey = "claims"

// tokenFromRequest pulls the session token from the Authorization header,
// falling back to the session_token cookie. A header that is not a bearer
// credential is ignored rather than treated as a failed login, so browsers
// with a valid cookie are not bounced by stray headers.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if c, err := r.Cookie(auth.SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate rejects requests without a valid session token and stores
// the decoded claims on the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing session token", "code": "MISSING_TOKEN"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token", "code": "INVALID_TOKEN"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MaybeAuthenticate decodes the session token when one is present but
// never rejects. Public routes that behave differently for logged-in
// visitors (checkout) use this.
func MaybeAuthenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if claims, err := auth.ValidateToken(jwtSecret, token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route group on the authenticated role.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated", "code": "NOT_AUTHENTICATED"})
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions", "code": "FORBIDDEN"})
		})
	}
}

// AdminPageGate protects browser navigations to admin pages. Unlike the
// API middleware it answers with redirects: no credential sends the
// visitor to the login page (with a redirect-back parameter), an invalid
// token additionally clears the stale cookie, and a valid non-admin
// session goes back to the storefront.
func AdminPageGate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loginURL := "/login?redirect=" + url.QueryEscape(r.URL.Path)

			token := tokenFromRequest(r)
			if token == "" {
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				clearSessionCookie(w)
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}

			if claims.Role != enum.UserRoleAdmin {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
