package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
)

const internalErrorMessage = "internal server error"

// writeJSON writes data wrapped in the response envelope.
func writeJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, dto.Response{Data: data})
}

// writeErrors writes the given messages wrapped in the response envelope.
func writeErrors(w http.ResponseWriter, status int, messages ...string) {
	writeEnvelope(w, status, dto.Response{Errors: messages})
}

func writeEnvelope(w http.ResponseWriter, status int, body dto.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainError maps err to a status and writes it. Internal failures are
// logged and replaced by a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)

	switch status {
	case http.StatusBadRequest:
		messages := domain.ValidationMessages(err)
		if len(messages) == 0 {
			messages = []string{err.Error()}
		}
		writeErrors(w, status, messages...)
	case http.StatusInternalServerError:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeErrors(w, status, internalErrorMessage)
	default:
		writeErrors(w, status, err.Error())
	}
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidItemType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
