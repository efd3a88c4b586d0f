package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/contacts-api/internal/domain"
)

// writeServiceError maps a service error to its HTTP status and JSON body.
// Unmapped errors are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, detail(err, domain.ErrInvalidInput, "Bad request"))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "Email in use")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, detail(err, domain.ErrNotFound, "Not found"))
	case errors.Is(err, domain.ErrMailDelivery):
		slog.Error("mail delivery", "error", err)
		writeError(w, http.StatusInternalServerError,
			"Verification email could not be sent, request a new one with POST /auth/verify")
	default:
		slog.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// detail returns the text a service attached after the sentinel, as in
// fmt.Errorf("%w: missing field favorite", domain.ErrInvalidInput), with its
// first letter upper-cased. Errors wrapped any other way get fallback.
func detail(err, sentinel error, fallback string) string {
	msg, ok := strings.CutPrefix(err.Error(), sentinel.Error()+": ")
	if !ok || msg == "" {
		return fallback
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
