package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"cctv-survey/internal/auth"
	"cctv-survey/internal/strapi"

	"go.uber.org/zap"
)

type AuthMiddleware struct {
	verifier *auth.Verifier
	logr     *zap.Logger
}

type contextKey string

const ContextUserIDKey contextKey = "userID"

// NewAuthMiddleware creates the bearer middleware. A nil verifier turns
// verification off; tokens are still forwarded to the backend.
func NewAuthMiddleware(verifier *auth.Verifier, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logr: logr}
}

// JWTAuth validates the caller's token and forwards it on every backend
// call made while serving the request.
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)

		if m.verifier == nil {
			if ok {
				r = r.WithContext(strapi.WithToken(r.Context(), tokenString))
			}
			next.ServeHTTP(w, r)
			return
		}

		if !ok {
			unauthorized(w, "missing authorization header")
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			m.logr.Warn("token parse error", zap.Error(err))
			unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserIDKey, claims.UserID)
		ctx = strapi.WithToken(ctx, tokenString)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id, if any.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ContextUserIDKey).(string)
	return id
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader || tokenString == "" {
		return "", false
	}
	return tokenString, true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
