package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/handoff-labs/handoff/internal/auth"
	"github.com/handoff-labs/handoff/internal/server"
	"github.com/handoff-labs/handoff/internal/store"
	"github.com/handoff-labs/handoff/pkg/models"
)

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// RegistrationHandler creates a new user account. The login name is the
// storage key, so an existing user is a conflict.
func RegistrationHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondFallback(srv, w)
			return
		}

		params, ok := requiredParams(srv, w, r, "login", "password")
		if !ok {
			return
		}
		login := params["login"]

		hash, err := auth.HashPassword(params["password"])
		if err != nil {
			srv.Logger.Error("error hashing password", "error", err)
			respondInternal(srv, w)
			return
		}

		user := models.User{ID: login, Password: hash}
		err = user.CreateIfAbsent(r.Context(), srv.Store)
		if errors.Is(err, models.ErrUserExists) {
			respondError(srv, w, http.StatusConflict, codeUserExists,
				"User already exists.")
			return
		}
		if err != nil {
			srv.Logger.Error("error creating user", "error", err, "login", login)
			respondInternal(srv, w)
			return
		}

		srv.Logger.Info("user registered", "login", login)
		respondMessage(srv, w, http.StatusOK, "Registered.")
	})
}

// LoginHandler verifies credentials and issues a fresh login token,
// invalidating any prior token for the user. Nothing is written on failure.
func LoginHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondFallback(srv, w)
			return
		}

		params, ok := requiredParams(srv, w, r, "login", "password")
		if !ok {
			return
		}
		login := params["login"]

		var user models.User
		err := user.Get(r.Context(), srv.Store, login)
		if errors.Is(err, store.ErrNotFound) {
			respondError(srv, w, http.StatusUnauthorized, codeUnauthorized,
				"No such user exists.")
			return
		}
		if err != nil {
			srv.Logger.Error("error reading user", "error", err, "login", login)
			respondInternal(srv, w)
			return
		}

		match, err := auth.VerifyPassword(params["password"], user.Password)
		if err != nil {
			srv.Logger.Error("error verifying password", "error", err, "login", login)
			respondInternal(srv, w)
			return
		}
		if !match {
			respondError(srv, w, http.StatusUnauthorized, codeUnauthorized,
				"Wrong password.")
			return
		}

		token, err := models.GenerateToken()
		if err != nil {
			srv.Logger.Error("error generating login token", "error", err)
			respondInternal(srv, w)
			return
		}
		if err := user.RecordLogin(r.Context(), srv.Store, token, time.Now()); err != nil {
			srv.Logger.Error("error recording login", "error", err, "login", login)
			respondInternal(srv, w)
			return
		}

		srv.Logger.Info("user logged in", "login", login)
		respondJSON(srv, w, http.StatusOK, LoginResponse{
			Message: "Logged in.",
			Token:   token,
		})
	})
}
