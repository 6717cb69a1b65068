// Package http exposes the milk round book as a JSON API.
//
// This file implements parsing of request bodies and query parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"milkround/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from the body into dst. Unknown
// fields and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body must not be empty")
		}
		return fmt.Errorf("malformed request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// dateParam parses the YYYY-MM-DD query parameter key, returning def when absent.
func dateParam(r *http.Request, key string, def core.Date) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	return core.ParseDate(v)
}

// monthParam parses the YYYY-MM query parameter key, returning def when absent.
func monthParam(r *http.Request, key string, def core.Month) (core.Month, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	return core.ParseMonth(v)
}

// pathMonth parses a YYYY-MM path value.
func pathMonth(r *http.Request, name string) (core.Month, error) {
	return core.ParseMonth(r.PathValue(name))
}

// boolParam reports whether the query parameter key holds a true value.
func boolParam(r *http.Request, key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return err == nil && b
}

// parseShift accepts the shift name case-insensitively.
func parseShift(s string) core.Shift {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning":
		return core.Morning
	case "evening":
		return core.Evening
	default:
		return core.Shift(s)
	}
}
