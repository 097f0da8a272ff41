package indicator

import "errors"

// Fetch failure taxonomy. These classify a failed fetch for logging and for
// the reason embedded in the served record; they never escape a fetcher
// boundary as errors.
var (
	// ErrTransport indicates a network failure, timeout or non-2xx status.
	ErrTransport = errors.New("transport error")

	// ErrMalformedPayload indicates a response whose shape or field types
	// did not match the provider contract.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrEmptyResult indicates the provider answered with no observations.
	ErrEmptyResult = errors.New("empty result")

	// ErrOutOfRange indicates a parsed value outside its declared sanity
	// range. The value is still served, flagged as not validated.
	ErrOutOfRange = errors.New("value out of range")
)

// FailureReason maps a classified fetch error to the user-visible reason
// embedded in the record description.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedPayload):
		return ReasonMalformedPayload
	case errors.Is(err, ErrEmptyResult):
		return ReasonEmptyResult
	default:
		return ReasonFetchError
	}
}
