package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"liftledger/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

type callerKey struct{}

// callerFromContext returns the authenticated caller stored in ctx.
func callerFromContext(ctx context.Context) (core.Caller, bool) {
	v, ok := ctx.Value(callerKey{}).(core.Caller)
	return v, ok
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	UserID int    `json:"user_id"`
	Label  string `json:"label"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAuth validates the auth_token cookie and injects the resolved
// core.Caller into the request context. Returns 401 if the token is absent
// or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		caller := core.Caller{
			UserID: claims.UserID,
			Label:  claims.Label,
			Role:   core.Role(claims.Role),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	})
}

// caller returns the request's authenticated caller. RequireAuth guarantees
// presence on protected routes; the zero value only shows up if a route is
// misregistered outside the auth group.
func caller(r *http.Request) core.Caller {
	c, _ := callerFromContext(r.Context())
	return c
}

// login handles POST /api/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	claims := &jwtClaims{
		UserID: session.OperatorID,
		Label:  session.DisplayName,
		Role:   string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, r, "token generation failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   12 * 3600,
	})
	writeJSON(w, session)
}

// logout handles POST /api/auth/logout, clearing the auth cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	c := caller(r)
	op, err := h.svc.Operator(r.Context(), c.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	type meResponse struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}
	writeJSON(w, meResponse{
		Username:    op.Username,
		DisplayName: op.DisplayName,
		Role:        string(op.Role),
	})
}
