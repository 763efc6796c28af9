package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// OpenState is the tri-state outcome of an interpretation. Unknown is a
// first-class outcome, not an error.
type OpenState int

const (
	StateUnknown OpenState = iota
	StateOpen
	StateClosed
)

// Bool returns the JSON representation of the state: true, false or nil.
func (s OpenState) Bool() *bool {
	switch s {
	case StateOpen:
		b := true
		return &b
	case StateClosed:
		b := false
		return &b
	default:
		return nil
	}
}

// Label returns the Dutch status label shown to users.
func (s OpenState) Label() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "dicht"
	default:
		return "onbekend"
	}
}

// Status is the interpreted state of a bridge at a point in time.
type Status struct {
	IsOpen     OpenState
	Summary    string
	ObservedAt time.Time // zero when no record value parsed as a timestamp
	SourceURL  string
	RawFields  *FieldSet
}

// Text renders the three-line human-readable report for the named bridge.
func (s *Status) Text(bridge string) string {
	observed := "onbekend"
	if !s.ObservedAt.IsZero() {
		observed = s.ObservedAt.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("De %s is %s. (%s)\nLaatste melding: %s\nBron: %s",
		bridge, s.IsOpen.Label(), s.Summary, observed, s.SourceURL)
}

type statusJSON struct {
	IsOpen     *bool           `json:"is_open"`
	Summary    string          `json:"summary"`
	ObservedAt *string         `json:"observed_at"`
	SourceURL  string          `json:"source_url"`
	RawFields  json.RawMessage `json:"raw_fields"`
}

// MarshalJSON encodes the status in its export shape: is_open as
// true/false/null, observed_at as ISO-8601 or null, raw_fields after the
// JSON-safe coercion pass.
func (s *Status) MarshalJSON() ([]byte, error) {
	out := statusJSON{
		IsOpen:    s.IsOpen.Bool(),
		Summary:   s.Summary,
		SourceURL: s.SourceURL,
	}
	if !s.ObservedAt.IsZero() {
		iso := s.ObservedAt.Format(time.RFC3339Nano)
		out.ObservedAt = &iso
	}
	fields, err := json.Marshal(jsonSafe(s.RawFields))
	if err != nil {
		return nil, eris.Wrap(err, "status: marshal raw fields")
	}
	out.RawFields = fields
	return json.Marshal(out)
}

// UnmarshalJSON decodes the export shape produced by MarshalJSON.
func (s *Status) UnmarshalJSON(data []byte) error {
	var in statusJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return eris.Wrap(err, "status: unmarshal")
	}
	s.IsOpen = StateUnknown
	if in.IsOpen != nil {
		if *in.IsOpen {
			s.IsOpen = StateOpen
		} else {
			s.IsOpen = StateClosed
		}
	}
	s.Summary = in.Summary
	s.SourceURL = in.SourceURL
	s.ObservedAt = time.Time{}
	if in.ObservedAt != nil {
		t, err := time.Parse(time.RFC3339Nano, *in.ObservedAt)
		if err != nil {
			return eris.Wrap(err, "status: parse observed_at")
		}
		s.ObservedAt = t
	}
	s.RawFields = nil
	if len(in.RawFields) > 0 && string(in.RawFields) != "null" {
		fs := NewFieldSet()
		if err := fs.UnmarshalJSON(in.RawFields); err != nil {
			return err
		}
		s.RawFields = fs
	}
	return nil
}

// jsonSafe coerces a value tree into something a JSON encoder accepts:
// mappings and sequences are sanitized recursively, any scalar the encoder
// rejects is replaced by its printable form.
func jsonSafe(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case *FieldSet:
		if v == nil {
			return nil
		}
		out := NewFieldSet()
		for _, key := range v.keys {
			out.Set(key, jsonSafe(v.values[key]))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = jsonSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonSafe(item)
		}
		return out
	default:
		if _, err := json.Marshal(v); err != nil {
			return fmt.Sprintf("%v", v)
		}
		return v
	}
}
