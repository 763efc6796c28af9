// Package bridge holds the interpretation core: it turns the loosely
// structured records of an open-data portal into a single best-guess bridge
// status. The data model of the portal datasets drifts over time, so every
// step here is deliberately defensive and tries several readings of a record
// before giving up.
package bridge

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Payload keys that may hold the record list, tried in order.
var recordListKeys = []string{"records", "results", "data"}

// ExtractRecords pulls the record list out of a raw search payload. The first
// of records/results/data holding a list wins; non-mapping entries are
// dropped. Anything else yields an empty slice, never an error.
func ExtractRecords(payload any) []*FieldSet {
	root, ok := payload.(*FieldSet)
	if !ok {
		return nil
	}
	for _, key := range recordListKeys {
		value, ok := root.Get(key)
		if !ok {
			continue
		}
		list, ok := value.([]any)
		if !ok {
			continue
		}
		records := make([]*FieldSet, 0, len(list))
		for _, item := range list {
			if record, ok := item.(*FieldSet); ok {
				records = append(records, record)
			}
		}
		return records
	}
	return nil
}

// Interpret converts every record independently, drops the uninterpretable
// ones and returns the most recent conclusive status. When every candidate is
// inconclusive the most recent one is returned anyway, with IsOpen unknown.
func Interpret(records []*FieldSet, sourceURL string) (*Status, error) {
	if len(records) == 0 {
		return nil, NewLookupError(ReasonNoData, nil)
	}

	statuses := make([]*Status, 0, len(records))
	for _, record := range records {
		if status := recordToStatus(record, sourceURL); status != nil {
			statuses = append(statuses, status)
		}
	}
	if len(statuses) == 0 {
		return nil, NewLookupError(ReasonUninterpretable, nil)
	}

	// Most recent first; a zero ObservedAt sorts last, input order breaks ties.
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].ObservedAt.After(statuses[j].ObservedAt)
	})

	for _, status := range statuses {
		if status.IsOpen != StateUnknown {
			return status, nil
		}
	}
	return statuses[0], nil
}

// recordToStatus applies the per-record pipeline: unwrap the field set,
// determine the observation time, then try the classification rules in
// order. Returns nil when no rule matches.
func recordToStatus(record *FieldSet, sourceURL string) *Status {
	fields := extractFields(record)
	observedAt := determineObservedAt(record, fields)

	for _, apply := range rules {
		state, summary, ok := apply(fields)
		if !ok {
			continue
		}
		return &Status{
			IsOpen:     state,
			Summary:    summary,
			ObservedAt: observedAt,
			SourceURL:  sourceURL,
			RawFields:  fields,
		}
	}
	zap.L().Debug("record not interpretable", zap.Strings("keys", record.Keys()))
	return nil
}

// extractFields unwraps the data-portal format that nests the field set under
// a "fields" key; records without the wrapper are used as-is.
func extractFields(record *FieldSet) *FieldSet {
	if value, ok := record.Get("fields"); ok {
		if sub, ok := value.(*FieldSet); ok {
			return sub
		}
	}
	return record
}

// determineObservedAt returns the latest timestamp found among the record's
// dedicated record_timestamp and all field values. A record without any
// parseable timestamp gets the zero time, which is not fatal.
func determineObservedAt(record, fields *FieldSet) time.Time {
	var latest time.Time
	if value, ok := record.Get("record_timestamp"); ok {
		if t, ok := ParseTime(value); ok && t.After(latest) {
			latest = t
		}
	}
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		if t, ok := ParseTime(value); ok && t.After(latest) {
			latest = t
		}
	}
	return latest
}
