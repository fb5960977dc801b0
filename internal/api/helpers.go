package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/handoff-labs/handoff/internal/server"
	"github.com/handoff-labs/handoff/pkg/models"
)

// Machine-readable error codes returned alongside the free-text message.
const (
	codeMissingParameters = "missing_parameters"
	codeUnauthorized      = "unauthorized"
	codeBadToken          = "bad_token"
	codeTokenCollision    = "token_collision"
	codeExpiredToken      = "expired_token"
	codeUserExists        = "user_exists"
	codeItemNotFound      = "item_not_found"
	codeNotOwner          = "not_owner"
	codeReceiverNotFound  = "receiver_not_found"
	codeBadSendToken      = "bad_send_token"
	codeTransferExpired   = "transfer_expired"
	codeNotFound          = "not_found"
	codeInternal          = "internal"
)

// MessageResponse is the minimal success response shape.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries the human-readable message plus a stable code.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func respondJSON(srv server.Server, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		srv.Logger.Error("error encoding response", "error", err)
	}
}

func respondMessage(srv server.Server, w http.ResponseWriter, status int, message string) {
	respondJSON(srv, w, status, MessageResponse{Message: message})
}

func respondError(srv server.Server, w http.ResponseWriter, status int, code, message string) {
	respondJSON(srv, w, status, ErrorResponse{Message: message, Code: code})
}

// respondFallback writes the catch-all response used for unmatched paths and
// bad methods.
func respondFallback(srv server.Server, w http.ResponseWriter) {
	respondError(srv, w, http.StatusNotFound, codeNotFound,
		"Test project. Refer to Readme on Github.")
}

func respondInternal(srv server.Server, w http.ResponseWriter) {
	respondError(srv, w, http.StatusInternalServerError, codeInternal,
		"Something went wrong...")
}

// requiredParams extracts the named query parameters. A missing or empty
// parameter fails the whole request with a single missing_parameters error.
func requiredParams(
	srv server.Server, w http.ResponseWriter, r *http.Request, names ...string,
) (map[string]string, bool) {
	query := r.URL.Query()
	errs := validation.Errors{}
	values := make(map[string]string, len(names))

	for _, name := range names {
		value := query.Get(name)
		errs[name] = validation.Validate(value, validation.Required)
		values[name] = value
	}

	if err := errs.Filter(); err != nil {
		respondError(srv, w, http.StatusBadRequest, codeMissingParameters,
			"Failed. Missing parameters.")
		return nil, false
	}
	return values, true
}

// resolveUser resolves a login token to its user, writing the 401 response
// itself when the token doesn't resolve.
func resolveUser(
	srv server.Server, w http.ResponseWriter, r *http.Request, token string,
) (*models.User, bool) {
	user, err := models.UserFromToken(
		r.Context(), srv.Store, token, time.Now(), srv.Config.LoginTokenTTL())
	if err == nil {
		return user, true
	}

	switch {
	case errors.Is(err, models.ErrBadToken):
		respondError(srv, w, http.StatusUnauthorized, codeBadToken,
			"Failed. Bad token.")
	case errors.Is(err, models.ErrTokenCollision):
		respondError(srv, w, http.StatusUnauthorized, codeTokenCollision,
			"Problems with token unicity. Please login again.")
	case errors.Is(err, models.ErrExpiredToken):
		respondError(srv, w, http.StatusUnauthorized, codeExpiredToken,
			"Failed. Expired token.")
	default:
		srv.Logger.Error("error resolving token", "error", err)
		respondInternal(srv, w)
	}
	return nil, false
}
