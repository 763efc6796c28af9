package bridge

// Lookup failure reasons shown to users.
const (
	ReasonNoData          = "Geen gegevens ontvangen van de open-data bron."
	ReasonUninterpretable = "Kon de status niet interpreteren uit de brongegevens."
	ReasonBadJSON         = "Kon de JSON-respons niet lezen."
)

// LookupError is the single error kind surfaced to callers when a status
// lookup fails. Reason is a human-readable cause; lower-level failures are
// kept on the wrapped cause chain.
type LookupError struct {
	Reason string
	cause  error
}

// NewLookupError builds a LookupError with the given reason and optional cause.
func NewLookupError(reason string, cause error) *LookupError {
	return &LookupError{Reason: reason, cause: cause}
}

func (e *LookupError) Error() string {
	return e.Reason
}

func (e *LookupError) Unwrap() error {
	return e.cause
}
