package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Field is one key/value pair of a detail record.
type Field struct {
	Key   string
	Value any
}

// Record is a single row returned by GET /{resource}/{id}, with keys kept
// in the order the backend sent them.
type Record []Field

// UnmarshalJSON decodes a JSON object while preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("decoding record: expected JSON object")
	}

	out := Record{}
	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return fmt.Errorf("decoding record key: %w", keyErr)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decoding record: unexpected key token %v", keyTok)
		}

		var value any
		if err = dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding record field %q: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: value})
	}

	*r = out
	return nil
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding record field %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value for key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// FormatValue renders a decoded JSON value for display. Null renders as "N/A".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "N/A"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
