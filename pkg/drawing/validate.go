package drawing

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a finding makes a stroke unusable
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // stroke or document cannot be converted
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. Stroke is the
// stroke index, or -1 for document-level findings.
type ValidationError struct {
	Stroke   int
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Stroke < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] stroke %d: %s", e.Severity, e.Stroke, e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks a drawing and returns its findings. It never mutates d.
func Validate(d *Drawing) ValidationResult {
	var all []ValidationError
	all = append(all, validateCanvas(d)...)
	for i, s := range d.Strokes {
		all = append(all, validateStroke(d, i, s)...)
	}

	var result ValidationResult
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// StrokeErrors returns the set of stroke indices that carry at least one
// error-severity finding.
func (r ValidationResult) StrokeErrors() map[int]bool {
	bad := make(map[int]bool)
	for _, e := range r.Errors {
		if e.Stroke >= 0 {
			bad[e.Stroke] = true
		}
	}
	return bad
}

func validateCanvas(d *Drawing) []ValidationError {
	var errs []ValidationError
	if d.Width < 0 || math.IsInf(d.Width, 0) {
		errs = append(errs, ValidationError{Stroke: -1, Message: fmt.Sprintf("invalid canvas width %v", d.Width), Severity: SeverityError})
	}
	if d.Height < 0 || math.IsInf(d.Height, 0) {
		errs = append(errs, ValidationError{Stroke: -1, Message: fmt.Sprintf("invalid canvas height %v", d.Height), Severity: SeverityError})
	}
	if d.Width == 0 || d.Height == 0 {
		errs = append(errs, ValidationError{Stroke: -1, Message: "canvas size missing, defaults will be used", Severity: SeverityWarning})
	}
	if len(d.Strokes) == 0 {
		errs = append(errs, ValidationError{Stroke: -1, Message: "drawing has no strokes", Severity: SeverityWarning})
	}
	return errs
}

func validateStroke(d *Drawing, i int, s Stroke) []ValidationError {
	var errs []ValidationError

	if _, err := ParseColor(s.Color); err != nil {
		errs = append(errs, ValidationError{Stroke: i, Message: err.Error(), Severity: SeverityError})
	}
	if s.Width < 0 || math.IsNaN(s.Width) || math.IsInf(s.Width, 0) {
		errs = append(errs, ValidationError{Stroke: i, Message: fmt.Sprintf("invalid width %v", s.Width), Severity: SeverityError})
	}
	if len(s.Coordinates) == 0 {
		errs = append(errs, ValidationError{Stroke: i, Message: "no coordinates", Severity: SeverityError})
		return errs
	}

	outside := 0
	for _, p := range s.Coordinates {
		if !p.IsFinite() {
			errs = append(errs, ValidationError{Stroke: i, Message: "non-finite coordinate", Severity: SeverityError})
			return errs
		}
		if d.Width > 0 && d.Height > 0 && (p.X < 0 || p.Y < 0 || p.X > d.Width || p.Y > d.Height) {
			outside++
		}
	}
	if outside > 0 {
		errs = append(errs, ValidationError{Stroke: i, Message: fmt.Sprintf("%d point(s) outside the canvas, they will be clamped", outside), Severity: SeverityWarning})
	}
	if d.Width > 0 && d.Height > 0 && s.Width > math.Min(d.Width, d.Height) {
		errs = append(errs, ValidationError{Stroke: i, Message: fmt.Sprintf("width %v is wider than the canvas, it will be capped", s.Width), Severity: SeverityWarning})
	}

	switch {
	case s.IsDot() && len(s.Coordinates) > 1:
		errs = append(errs, ValidationError{Stroke: i, Message: "dot with more than one point", Severity: SeverityWarning})
	case !s.IsDot() && len(s.Coordinates) == 1:
		errs = append(errs, ValidationError{Stroke: i, Message: "line with a single point", Severity: SeverityWarning})
	}
	return errs
}
