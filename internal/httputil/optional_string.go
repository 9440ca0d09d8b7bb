package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional tracks presence and value for JSON PATCH semantics (RFC 7396):
//   - Present=false: field absent (leave unchanged)
//   - Present=true, Value=nil: field is JSON null
//   - Present=true, Value!=nil: field has a value
type Optional[T any] struct {
	Present bool
	Value   *T
}

// OptionalString is the common case: nullable ids and names
type OptionalString = Optional[string]

// UnmarshalJSON is only called when the field is present
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
