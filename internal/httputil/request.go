package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultJSONLimit caps JSON request bodies
const DefaultJSONLimit = 1 << 20

// ParseJSON decodes a single JSON object from the request body into dest.
// Unknown fields are rejected so typos in PATCH bodies do not silently no-op.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, DefaultJSONLimit)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON: unexpected data after object")
	}
	return nil
}

// QueryString returns a trimmed query parameter
func QueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// QueryOptional returns nil when the parameter is absent or blank
func QueryOptional(r *http.Request, key string) *string {
	v := QueryString(r, key)
	if v == "" {
		return nil
	}
	return &v
}
