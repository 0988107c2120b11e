package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fertadvisor/logging"
	"fertadvisor/models"
	"fertadvisor/store"

	"golang.org/x/crypto/bcrypt"
)

// handleRegister creates a new user with bcrypt-hashed password.
func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validateRequest(&req); errs != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "username, email and a password of 8+ characters are required", errs)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL", "hash error", nil)
		return
	}
	u := models.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := a.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			respondError(w, r, http.StatusConflict, "CONFLICT", "email already registered", nil)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("create user")
		respondError(w, r, http.StatusInternalServerError, "DB_ERROR", "db error", nil)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// handleLogin verifies credentials and returns a JWT token.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decodeBody(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := a.store.UserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
		return
	}

	tok, err := signJWT(a.cfg.Auth.JWTSecret, u.ID, a.cfg.Auth.TokenTTL)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL", "jwt error", nil)
		return
	}
	respondJSON(w, http.StatusOK, tokenResp{Token: tok})
}

// handleMe returns the current user's profile (without password hash).
func (a *App) handleMe(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := a.store.UserByID(ctx, uid)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "not found", nil)
		return
	}
	u.PasswordHash = ""
	respondJSON(w, http.StatusOK, u)
}
