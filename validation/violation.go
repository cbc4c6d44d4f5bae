package validation

import "strings"

// Violation is a single field-level rule failure.
type Violation struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Violations is the error returned by Validate. It is never empty.
type Violations []Violation

func (vs *Violations) add(field string, kind Kind, msg string) {
	*vs = append(*vs, Violation{Field: field, Kind: kind, Message: msg})
}

// Error implements error.
func (vs Violations) Error() string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the names of the violated fields in order.
func (vs Violations) Fields() []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Field)
	}
	return out
}
