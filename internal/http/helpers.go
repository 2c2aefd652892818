package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the {"error": ...} shape used by data endpoints.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeMessage emits the {"message": ...} shape used by the auth
// endpoints.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parseMoney accepts a JSON number or a numeric string and converts it
// to cents using the given parser. Clients historically send both.
func parseMoney(raw json.RawMessage, parse func(string) (int64, error)) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, core.ErrInvalidAmount
	}
	s = strings.Trim(s, `"`)
	return parse(s)
}

var errInvalidDate = errors.New("invalid date")

// parseDate accepts RFC3339 timestamps or bare dates. An empty value
// yields nil so callers can apply their own default.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errInvalidDate
}

// isValidationError reports whether err stems from bad user input
// rather than a server fault.
func isValidationError(err error) bool {
	for _, v := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidLimit,
		core.ErrEmptyText,
		core.ErrTextTooLong,
		core.ErrEmptyCategory,
		core.ErrInvalidPeriod,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// pathID parses the {id} segment of a route.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
}
