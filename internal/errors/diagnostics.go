package errors

import "fmt"

// Diagnostic is a recoverable finding produced while a parse completes.
// Diagnostics never abort the call; they ride alongside the result.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Locator string `json:"locator,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Locator != "" {
		return fmt.Sprintf("%s: %s (at %s)", d.Kind, d.Message, d.Locator)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Diagnostics accumulates recoverable findings during one parse call.
type Diagnostics []Diagnostic

// Add appends a diagnostic with a formatted message.
func (ds *Diagnostics) Add(kind Kind, locator, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Locator: locator,
	})
}

// OfKind returns the subset of diagnostics with the given kind.
func (ds Diagnostics) OfKind(kind Kind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
