package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDuration is returned for a duration that does not follow
	// <integer><s|m|h|d>.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrSourceUnavailable means the input log could not be opened.
	ErrSourceUnavailable = errors.New("log source unavailable")

	// ErrParseSkip marks a line that produced no event. It is never fatal.
	ErrParseSkip = errors.New("line skipped")

	// ErrInvalidAddress means an address could not be classified as v4 or v6.
	ErrInvalidAddress = errors.New("invalid address")
)

// Reasons a line is skipped. All of them wrap ErrParseSkip.
var (
	ErrNoMatch          = fmt.Errorf("%w: no firewall record", ErrParseSkip)
	ErrFilterMismatch   = fmt.Errorf("%w: rule or protocol filtered out", ErrParseSkip)
	ErrInvalidSource    = fmt.Errorf("%w: invalid source address", ErrParseSkip)
	ErrInvalidTimestamp = fmt.Errorf("%w: invalid timestamp", ErrParseSkip)
)

// SkipReason returns a short metric label for an extraction result.
func SkipReason(err error) string {
	switch {
	case err == nil:
		return "matched"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrFilterMismatch):
		return "filtered"
	case errors.Is(err, ErrInvalidSource):
		return "invalid_address"
	case errors.Is(err, ErrInvalidTimestamp):
		return "invalid_timestamp"
	default:
		return "error"
	}
}

// CountsAsMatched reports whether a line passed the rule and protocol filter.
// A line whose timestamp cannot be parsed still counts as matched even though
// it yields no event.
func CountsAsMatched(err error) bool {
	return err == nil || errors.Is(err, ErrInvalidTimestamp)
}

// SinkError is returned by a blocklist sink when an insertion fails.
type SinkError struct {
	Set     string
	Address string
	Reason  string
	Err     error
}

func (e *SinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sink %s: add %s: %s: %v", e.Set, e.Address, e.Reason, e.Err)
	}
	return fmt.Sprintf("sink %s: add %s: %s", e.Set, e.Address, e.Reason)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// ConfigValidationError reports a configuration value outside its allowed range.
type ConfigValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s = %v - %s", e.Field, e.Value, e.Reason)
}
