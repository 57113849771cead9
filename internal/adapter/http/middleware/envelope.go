package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/gowallet/internal/adapter/http/dto"
)

func writeErrorEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.Response{Errors: []string{message}})
}
