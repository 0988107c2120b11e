package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"fertadvisor/logging"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// authMiddleware extracts and validates the Bearer token and injects userID into context.
func (a *App) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
			return
		}
		raw := strings.TrimPrefix(authz, "Bearer ")
		uid, err := parseJWT(a.cfg.Auth.JWTSecret, raw)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// mustUserID returns the userID from context or NilObjectID if missing.
func mustUserID(r *http.Request) primitive.ObjectID {
	uid, ok := r.Context().Value(userIDKey).(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID
	}
	return uid
}

// requestID propagates X-Request-ID (or a new UUID) into the logging context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
