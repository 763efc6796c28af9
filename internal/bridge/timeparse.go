package bridge

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Layouts carrying their own zone information.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// Zone-less layouts; matches are labeled UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
}

// ParseTime interprets an arbitrary record value as a point in time. It
// accepts time.Time values, numeric epoch values (millisecond scale is
// auto-detected for magnitudes above 1e12), ISO-8601 strings with a trailing
// Z or an explicit offset, and a handful of zone-less layouts that are
// labeled UTC. Unparseable values return ok=false; that is routine for
// heterogeneous records, not an error.
func ParseTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochTime(f)
	case float64:
		return epochTime(v)
	case int:
		return epochTime(float64(v))
	case int64:
		return epochTime(float64(v))
	case string:
		return parseTimeString(v)
	default:
		return time.Time{}, false
	}
}

func epochTime(f float64) (time.Time, bool) {
	if f > 1e12 {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	if sec < math.MinInt64 || sec > math.MaxInt64 {
		return time.Time{}, false
	}
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), true
}

func parseTimeString(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(cleaned, "Z") {
		cleaned = strings.TrimSuffix(cleaned, "Z") + "+00:00"
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
