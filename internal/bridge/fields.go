package bridge

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// FieldSet is an ordered string-keyed container holding the flattened data of
// one record. Iteration follows the insertion order of the source payload so
// that rule evaluation is deterministic.
type FieldSet struct {
	keys   []string
	values map[string]any
}

// NewFieldSet returns an empty FieldSet.
func NewFieldSet() *FieldSet {
	return &FieldSet{values: make(map[string]any)}
}

// Set stores a value under key. A new key is appended to the iteration order;
// an existing key keeps its position.
func (fs *FieldSet) Set(key string, value any) {
	if _, ok := fs.values[key]; !ok {
		fs.keys = append(fs.keys, key)
	}
	fs.values[key] = value
}

// Get returns the value stored under key.
func (fs *FieldSet) Get(key string) (any, bool) {
	v, ok := fs.values[key]
	return v, ok
}

// Len returns the number of fields.
func (fs *FieldSet) Len() int {
	return len(fs.keys)
}

// Keys returns the field names in iteration order.
func (fs *FieldSet) Keys() []string {
	out := make([]string, len(fs.keys))
	copy(out, fs.keys)
	return out
}

// MarshalJSON encodes the fields as a JSON object, preserving key order.
func (fs *FieldSet) MarshalJSON() ([]byte, error) {
	if fs == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range fs.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, eris.Wrap(err, "fieldset: marshal key")
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(fs.values[key])
		if err != nil {
			return nil, eris.Wrapf(err, "fieldset: marshal value for %q", key)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the FieldSet, preserving key order.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	decoded, ok := v.(*FieldSet)
	if !ok {
		return eris.New("fieldset: expected JSON object")
	}
	*fs = *decoded
	return nil
}

// DecodeJSON decodes one JSON document from r. Objects become *FieldSet with
// the source key order retained, arrays become []any, numbers stay
// json.Number so epoch values keep their full precision.
func DecodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrap(err, "json: read token")
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or null
		return tok, nil
	}
	switch delim {
	case '{':
		fs := NewFieldSet()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, eris.Wrap(err, "json: read object key")
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, eris.Errorf("json: expected object key, got %v", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			fs.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, eris.Wrap(err, "json: read object end")
		}
		return fs, nil
	case '[':
		var items []any
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, eris.Wrap(err, "json: read array end")
		}
		return items, nil
	default:
		return nil, eris.Errorf("json: unexpected delimiter %v", delim)
	}
}
