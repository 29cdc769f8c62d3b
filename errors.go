package precisestamp

import (
	"errors"

	"github.com/imarsman/precisestamp/pkg/utility"
	"lab.nexedi.com/kirr/go123/xfmt"
)

// ErrNoInput the text argument was empty or only whitespace. Go strings can't
// be nil so this stands in for an absent argument.
var ErrNoInput = errors.New("precisestamp: no input to parse")

// ErrOffsetGranularity a default offset that is not a whole number of minutes
var ErrOffsetGranularity = errors.New("precisestamp: offset must be a whole number of minutes")

// FormatError input did not match any template nor the fallback parsers.
// Calendar-invalid values such as a 32nd day are reported the same way.
type FormatError struct {
	Input     string
	Templates int // number of templates tried
}

func (e *FormatError) Error() string {
	buf := new(xfmt.Buffer)
	buf.S("precisestamp: could not parse '").S(e.Input).S("' with ").D(e.Templates).S(" templates or fallback parsers")

	return utility.BytesToString(buf.Bytes()...)
}

// TemplateError a template string could not be compiled
type TemplateError struct {
	Format string
	Pos    int
	Reason string
}

func (e *TemplateError) Error() string {
	buf := new(xfmt.Buffer)
	buf.S("precisestamp: template '").S(e.Format).S("' at ").D(e.Pos).S(": ").S(e.Reason)

	return utility.BytesToString(buf.Bytes()...)
}
