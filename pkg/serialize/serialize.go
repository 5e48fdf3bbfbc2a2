// Package serialize encodes fetch parameters to JSON and labels the failures
// so callers can tell them apart from transport errors.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Error is returned when a fetch parameter cannot be encoded. It is raised
// before any network I/O happens.
type Error struct {
	Label string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Network request failed. %s is not serializable: %s", e.Label, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// JSON encodes value without HTML escaping, the form GraphQL servers receive
// from browsers as well.
func JSON(value any, label string) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, &Error{Label: label, Err: err}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// String is JSON returning a string, used for query string parameters.
func String(value any, label string) (string, error) {
	out, err := JSON(value, label)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
