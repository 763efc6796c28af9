package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Keyword sets for the textual rule. Matching is substring-based on the
// lower-cased, trimmed field value; open keywords are checked first.
var (
	openKeywords = []string{
		"open",
		"weer open",
		"openstaand",
		"open voor verkeer",
		"open voor scheepvaart",
		"vrijgegeven",
	}
	closedKeywords = []string{
		"dicht",
		"gesloten",
		"afgesloten",
		"gestremd",
		"stremming",
	}
)

// Key-name tokens for the temporal rule.
var (
	openKeyTokens  = []string{"open", "start", "begin"}
	closeKeyTokens = []string{"dicht", "sluit", "eind", "close"}
)

// rule is one classification strategy. It inspects a FieldSet and either
// yields a state with a summary, or declines. Rules are pure and tried in a
// fixed order; the first match wins.
type rule func(fields *FieldSet) (OpenState, string, bool)

var rules = []rule{textualRule, temporalRule, booleanRule}

// textualRule scans string fields for open/closed keywords. The first field
// with a match decides, in FieldSet order.
func textualRule(fields *FieldSet) (OpenState, string, bool) {
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		text, ok := value.(string)
		if !ok {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(text))
		if normalized == "" {
			continue
		}
		if containsAny(normalized, openKeywords) {
			return StateOpen, fmt.Sprintf("Veld '%s' meldt: %s", key, text), true
		}
		if containsAny(normalized, closedKeywords) {
			return StateClosed, fmt.Sprintf("Veld '%s' meldt: %s", key, text), true
		}
	}
	return StateUnknown, "", false
}

// temporalRule buckets datetime-valued fields by key name (open-ish vs
// close-ish tokens) and compares the bucket maxima. A closing time at or
// after the latest opening time means closed.
func temporalRule(fields *FieldSet) (OpenState, string, bool) {
	var openMax, closeMax time.Time
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		t, ok := ParseTime(value)
		if !ok {
			continue
		}
		lowerKey := strings.ToLower(key)
		if containsAny(lowerKey, openKeyTokens) && t.After(openMax) {
			openMax = t
		}
		if containsAny(lowerKey, closeKeyTokens) && t.After(closeMax) {
			closeMax = t
		}
	}
	switch {
	case openMax.IsZero() && closeMax.IsZero():
		return StateUnknown, "", false
	case !openMax.IsZero() && (closeMax.IsZero() || closeMax.Before(openMax)):
		return StateOpen, "Laatste melding bevat geen sluitingstijd.", true
	default:
		return StateClosed, "Laatste melding bevat een sluitingstijd.", true
	}
}

// booleanRule falls back to the first literal boolean, or the first numeric
// value that is exactly 0 or 1.
func booleanRule(fields *FieldSet) (OpenState, string, bool) {
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		if b, ok := value.(bool); ok {
			return stateFromBool(b), fmt.Sprintf("Booleaanse status in veld '%s'.", key), true
		}
		if f, ok := numericValue(value); ok && (f == 0 || f == 1) {
			return stateFromBool(f == 1), fmt.Sprintf("Numerieke status in veld '%s'.", key), true
		}
	}
	return StateUnknown, "", false
}

func stateFromBool(open bool) OpenState {
	if open {
		return StateOpen
	}
	return StateClosed
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
