package export

import (
	"errors"
	"fmt"
)

// ErrReportTooLarge is wrapped in a models.ValidationError when a section
// exceeds the configured row limit.
var ErrReportTooLarge = errors.New("report exceeds export row limit")

// RenderError reports a Section that violates its own shape, discovered
// while rendering.
type RenderError struct {
	Section string
	Reason  string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render section %q: %s", e.Section, e.Reason)
}

type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported export type %q", e.Type)
}
