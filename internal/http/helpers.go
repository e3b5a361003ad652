package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finpulse/internal/core"
	"finpulse/internal/metrics"
)

// parseNow reads the optional now query parameter (YYYY-MM-DD), defaulting
// to the wall clock. The evaluation instant stays an explicit value through
// every internal call.
func parseNow(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("now"))
	if v == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid now %q: expected YYYY-MM-DD", v)
	}
	return t, nil
}

// parseWindow reads the optional from/to query parameters. Both must be
// present to form a window; neither yields a nil window (full ledger).
func parseWindow(r *http.Request) (*metrics.DateRange, error) {
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))

	if fromStr == "" && toStr == "" {
		return nil, nil
	}
	if fromStr == "" || toStr == "" {
		return nil, fmt.Errorf("from and to must be provided together")
	}

	from, err := parseDate(fromStr)
	if err != nil {
		return nil, fmt.Errorf("invalid from %q: expected YYYY-MM-DD", fromStr)
	}
	to, err := parseDate(toStr)
	if err != nil {
		return nil, fmt.Errorf("invalid to %q: expected YYYY-MM-DD", toStr)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("to must not precede from")
	}

	return &metrics.DateRange{From: from, To: to}, nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(parsedTime), nil
}

// decodeBody decodes a JSON request body, rejecting unknown fields and
// oversized payloads.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}
