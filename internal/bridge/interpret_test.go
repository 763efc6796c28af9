package bridge

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSourceURL = "https://rotterdam.dataplatform.nl/api/records/1.0/search/?dataset=brugopeningen"

// recordsFromJSON decodes a JSON array into records the way a fetched payload
// would produce them.
func recordsFromJSON(t *testing.T, raw string) []*FieldSet {
	t.Helper()
	payload, err := DecodeJSON(strings.NewReader(`{"records":` + raw + `}`))
	require.NoError(t, err)
	records := ExtractRecords(payload)
	require.NotEmpty(t, records)
	return records
}

func TestInterpret_TextualOpenKeyword(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{
		"record_timestamp": "2024-04-20T11:00:00+02:00",
		"fields": {"melding": "Brug weer open voor verkeer"}
	}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateOpen, status.IsOpen)
	assert.Contains(t, status.Summary, "melding")
	assert.Contains(t, status.Summary, "weer open")
	assert.Equal(t, 2024, status.ObservedAt.Year())
	assert.Equal(t, time.April, status.ObservedAt.Month())
	assert.Equal(t, 20, status.ObservedAt.Day())
	assert.Equal(t, testSourceURL, status.SourceURL)
}

func TestInterpret_TextualClosedKeyword(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {"toestand": "gestremd voor scheepvaart"}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateClosed, status.IsOpen)
	assert.Contains(t, status.Summary, "toestand")
	assert.True(t, status.ObservedAt.IsZero())
}

func TestInterpret_TextualFirstFieldWins(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {
		"eerste": "brug gesloten",
		"tweede": "weer open"
	}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateClosed, status.IsOpen)
	assert.Contains(t, status.Summary, "eerste")
}

func TestInterpret_TemporalOpenOnly(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {"opening_start": "2024-04-23T09:50:00+02:00"}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateOpen, status.IsOpen)
	assert.Equal(t, "Laatste melding bevat geen sluitingstijd.", status.Summary)
}

func TestInterpret_TemporalCloseAfterOpen(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {
		"opening_start": "2024-04-23T09:50:00+02:00",
		"sluiting": "2024-04-23T09:55:00+02:00"
	}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateClosed, status.IsOpen)
	assert.Equal(t, "Laatste melding bevat een sluitingstijd.", status.Summary)
}

func TestInterpret_TemporalOpenAfterClose(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {
		"sluiting": "2024-04-23T09:40:00+02:00",
		"opening_start": "2024-04-23T09:50:00+02:00"
	}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateOpen, status.IsOpen)
}

func TestInterpret_TemporalEqualTimesMeanClosed(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {
		"opening_start": "2024-04-23T09:50:00+02:00",
		"sluiting": "2024-04-23T09:50:00+02:00"
	}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateClosed, status.IsOpen)
}

func TestInterpret_TextualBeatsTemporal(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {
		"opening_start": "2024-04-23T09:50:00+02:00",
		"melding": "brug gesloten"
	}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateClosed, status.IsOpen)
	assert.Contains(t, status.Summary, "melding")
}

func TestInterpret_BooleanField(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {"doorvaart": false}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateClosed, status.IsOpen)
	assert.Equal(t, "Booleaanse status in veld 'doorvaart'.", status.Summary)
}

func TestInterpret_NumericField(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {"waarde": 1}}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateOpen, status.IsOpen)
	assert.Equal(t, "Numerieke status in veld 'waarde'.", status.Summary)
}

func TestInterpret_RecordWithoutFieldsWrapper(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"melding": "weer open voor scheepvaart"}]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)

	assert.Equal(t, StateOpen, status.IsOpen)
}

func TestInterpret_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Interpret(nil, testSourceURL)
	require.Error(t, err)

	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, ReasonNoData, lookupErr.Reason)
}

func TestInterpret_NoInterpretableRecord(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[{"fields": {"naam": 42}}]`)

	_, err := Interpret(records, testSourceURL)
	require.Error(t, err)

	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, ReasonUninterpretable, lookupErr.Reason)
}

func TestInterpret_UninterpretableRecordExcluded(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[
		{"fields": {"naam": 42}},
		{"fields": {"melding": "gestremd"}}
	]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, status.IsOpen)
}

func TestInterpret_MostRecentRecordWins(t *testing.T) {
	t.Parallel()

	newest := `{"record_timestamp": "2024-04-23T10:00:00+02:00", "fields": {"melding": "gestremd"}}`
	oldest := `{"record_timestamp": "2024-04-20T10:00:00+02:00", "fields": {"melding": "weer open"}}`

	for name, raw := range map[string]string{
		"newest first": `[` + newest + `,` + oldest + `]`,
		"oldest first": `[` + oldest + `,` + newest + `]`,
	} {
		records := recordsFromJSON(t, raw)
		status, err := Interpret(records, testSourceURL)
		require.NoError(t, err, name)
		assert.Equal(t, StateClosed, status.IsOpen, name)
	}
}

func TestInterpret_TimestamplessSortsLast(t *testing.T) {
	t.Parallel()

	records := recordsFromJSON(t, `[
		{"fields": {"melding": "gestremd"}},
		{"record_timestamp": "2024-04-23T10:00:00+02:00", "fields": {"melding": "weer open"}}
	]`)

	status, err := Interpret(records, testSourceURL)
	require.NoError(t, err)
	assert.Equal(t, StateOpen, status.IsOpen)
}

func TestExtractRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"records key", `{"records":[{"a":1},{"b":2}]}`, 2},
		{"results key", `{"results":[{"a":1}]}`, 1},
		{"data key", `{"data":[{"a":1}]}`, 1},
		{"first list-valued key wins", `{"records":"nee","data":[{"a":1}]}`, 1},
		{"non-mapping entries dropped", `{"records":[{"a":1},"x",3]}`, 1},
		{"no known key", `{"items":[{"a":1}]}`, 0},
		{"empty list", `{"records":[]}`, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload, err := DecodeJSON(strings.NewReader(tt.raw))
			require.NoError(t, err)
			assert.Len(t, ExtractRecords(payload), tt.want)
		})
	}
}

func TestExtractRecords_NonMappingPayload(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractRecords([]any{"x"}))
	assert.Empty(t, ExtractRecords(nil))
	assert.Empty(t, ExtractRecords("records"))
}
