package bridge

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	fields := NewFieldSet()
	fields.Set("melding", "Brug weer open voor verkeer")
	fields.Set("rang", json.Number("1"))

	zone := time.FixedZone("CEST", 2*3600)
	want := Status{
		IsOpen:     StateOpen,
		Summary:    "Veld 'melding' meldt: Brug weer open voor verkeer",
		ObservedAt: time.Date(2024, 4, 20, 11, 0, 0, 123456000, zone),
		SourceURL:  testSourceURL,
		RawFields:  fields,
	}

	raw, err := json.Marshal(&want)
	require.NoError(t, err)

	var got Status
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, want.IsOpen, got.IsOpen)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.SourceURL, got.SourceURL)
	assert.True(t, want.ObservedAt.Equal(got.ObservedAt),
		"observed_at drifted: want %v, got %v", want.ObservedAt, got.ObservedAt)
	require.NotNil(t, got.RawFields)
	assert.Equal(t, []string{"melding", "rang"}, got.RawFields.Keys())
}

func TestStatus_MarshalUnknown(t *testing.T) {
	t.Parallel()

	status := Status{IsOpen: StateUnknown, Summary: "?", SourceURL: testSourceURL}

	raw, err := json.Marshal(&status)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"is_open":null`)
	assert.Contains(t, string(raw), `"observed_at":null`)
}

func TestStatus_MarshalCoercesUnsafeValues(t *testing.T) {
	t.Parallel()

	fields := NewFieldSet()
	fields.Set("raar", complex(1, 2))
	fields.Set("nested", []any{complex(3, 4), "ok"})
	status := Status{IsOpen: StateClosed, Summary: "x", RawFields: fields}

	raw, err := json.Marshal(&status)
	require.NoError(t, err)

	assert.Contains(t, string(raw), "(1+2i)")
	assert.Contains(t, string(raw), "(3+4i)")
	assert.Contains(t, string(raw), `"ok"`)
}

func TestStatus_Text(t *testing.T) {
	t.Parallel()

	status := Status{
		IsOpen:     StateOpen,
		Summary:    "Veld 'melding' meldt: weer open",
		ObservedAt: time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC),
		SourceURL:  testSourceURL,
	}

	text := status.Text("Hogebrug")
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "De Hogebrug is open. (Veld 'melding' meldt: weer open)", lines[0])
	assert.Equal(t, "Laatste melding: 2024-04-20T09:00:00Z", lines[1])
	assert.Equal(t, "Bron: "+testSourceURL, lines[2])
}

func TestStatus_TextUnknownObservedAt(t *testing.T) {
	t.Parallel()

	status := Status{IsOpen: StateClosed, Summary: "dicht", SourceURL: testSourceURL}

	assert.Contains(t, status.Text("Hogebrug"), "Laatste melding: onbekend")
	assert.Contains(t, status.Text("Hogebrug"), "De Hogebrug is dicht.")
}

func TestOpenState_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "open", StateOpen.Label())
	assert.Equal(t, "dicht", StateClosed.Label())
	assert.Equal(t, "onbekend", StateUnknown.Label())
}

func TestLookupError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := assert.AnError
	err := NewLookupError(ReasonBadJSON, cause)

	assert.Equal(t, ReasonBadJSON, err.Error())
	assert.ErrorIs(t, err, cause)
}
