package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/match-advisor/internal/apperr"
)

const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to a status code. Validation errors carry their own
// message; everything else is reported under the route's failure title.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, title string, err error) {
	var validation *apperr.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Message})
		return
	}

	loggerFrom(r.Context(), s.logger).Error(title, zap.Error(err))

	writeJSON(w, apperr.Status(err), map[string]string{
		"error":   title,
		"message": apperr.PublicMessage(err),
	})
}

// decodeBody reads a JSON object request body into target.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return apperr.NewValidation("body", fmt.Sprintf("Invalid JSON body: %v", err))
	}
	return nil
}

// present reports whether a raw JSON field was supplied with a truthy value.
func present(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}
