package model

import (
	"strings"
	"time"
)

// Entry is one recorded form submission. Values are keyed by field id, or by
// "id.sub" for composite inputs, and may hold scalars, lists, or nested maps.
// Entries are created by the submission collaborator and read-only here.
type Entry struct {
	ID          string         `json:"id"`
	FormID      string         `json:"form_id"`
	CreatedBy   string         `json:"created_by,omitempty"`
	IP          string         `json:"ip,omitempty"`
	DateCreated time.Time      `json:"date_created"`
	Values      map[string]any `json:"values"`
}

// Value returns the raw recorded value for a field or sub-input key.
func (e *Entry) Value(key string) (any, bool) {
	if e == nil || len(e.Values) == 0 {
		return nil, false
	}
	value, ok := e.Values[key]
	return value, ok
}

// String returns the recorded value coerced to a string, empty when absent.
func (e *Entry) String(key string) string {
	value, ok := e.Value(key)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return Stringify(value)
}

// SubValues collects the values recorded under "fieldID.*" keys, keyed by the
// full dotted key. Composite fields (name, address) store one value per input.
func (e *Entry) SubValues(fieldID string) map[string]any {
	if e == nil || len(e.Values) == 0 {
		return nil
	}
	prefix := fieldID + "."
	out := make(map[string]any)
	for key, value := range e.Values {
		if strings.HasPrefix(key, prefix) {
			out[key] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
