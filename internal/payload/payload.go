// Package payload decodes invocation payloads into generic JSON values and navigates them without
// requiring a schema.
package payload

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrMalformed is returned when the invocation payload is not valid JSON text.
	ErrMalformed = errors.New("malformed payload")
	// ErrNotString is returned when a looked-up value exists but is not a JSON string.
	ErrNotString = errors.New("value is not a string")
)

// Decode parses raw as a single JSON value. A top-level JSON string is treated as
// JSON text in its own right and decoded once more, which covers payloads that were
// forwarded as a serialized document rather than as an object.
func Decode(raw []byte) (any, error) {
	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if s, ok := doc.(string); ok {
		return decode([]byte(s))
	}
	return doc, nil
}

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrMalformed, "unexpected data after top-level value")
	}
	return doc, nil
}

// LookupString walks doc along path and returns the string found at its end.
// A missing key, a null, or a non-object on the way yields (nil, nil).
func LookupString(doc any, path ...string) (*string, error) {
	v, found := Lookup(doc, path...)
	if !found {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.Wrapf(ErrNotString, "%T at %v", v, path)
	}
	return &s, nil
}

// Lookup walks doc along path. It reports false when any step is absent or null.
func Lookup(doc any, path ...string) (any, bool) {
	cur := doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}
