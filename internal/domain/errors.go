package domain

import (
	"fmt"
	"strings"
)

// DimensionMismatchError reports vectors compared together with different lengths.
type DimensionMismatchError struct {
	Item string
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Want, e.Got)
	}
	return fmt.Sprintf("dimension mismatch at %s: expected %d, got %d", e.Item, e.Want, e.Got)
}

// DegenerateInputError reports a vector that cannot be normalised: zero norm
// or non-finite components. Text is filled in when the source text is known.
type DegenerateInputError struct {
	Item   string
	Text   string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	var sb strings.Builder
	sb.WriteString("degenerate input")
	if e.Item != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Item)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if p := preview(e.Text, 60); p != "" {
		fmt.Fprintf(&sb, " (text %q)", p)
	}
	return sb.String()
}

// EmptyAnchorSetError reports an anchor set without labels.
type EmptyAnchorSetError struct{}

func (e *EmptyAnchorSetError) Error() string {
	return "anchor set has no labels"
}

// ConfigurationError reports an invalid anchor definition.
type ConfigurationError struct {
	Label  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Label == "" {
		return "invalid anchor configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid anchor configuration for label %q: %s", e.Label, e.Reason)
}

// InsufficientSamplesError reports a projection that is not well defined.
type InsufficientSamplesError struct {
	Samples    int
	Dimensions int
	Target     int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("cannot project %d samples of dimension %d onto %d axes: need 1 <= k <= min(D, n-1)",
		e.Samples, e.Dimensions, e.Target)
}

func preview(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
