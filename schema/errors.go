package schema

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed or missing input field.
// It is fatal to a run: no partial snapshot is produced.
type ValidationError struct {
	Row    int // 1-based data row, 0 when not row-specific
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	var loc []string
	if e.Row > 0 {
		loc = append(loc, fmt.Sprintf("row %d", e.Row))
	}
	if e.ID != "" {
		loc = append(loc, fmt.Sprintf("id %q", e.ID))
	}
	if e.Field != "" {
		loc = append(loc, fmt.Sprintf("field %q", e.Field))
	}
	if len(loc) == 0 {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error (%s): %s", strings.Join(loc, ", "), e.Reason)
}

// ReferenceError reports an entity that claims history but has no match in
// the supplied prior snapshot. It is a warning; the entity is treated as new.
type ReferenceError struct {
	ID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference error: prior snapshot has no entry for %q; treating it as new", e.ID)
}

// RenderError reports a brief section that could not be populated.
type RenderError struct {
	Section string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error in section %q: %v", e.Section, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
