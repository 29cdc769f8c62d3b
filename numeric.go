package precisestamp

import (
	"strconv"
	"time"

	"github.com/JohnCGriffin/overflow"
	"github.com/imarsman/precisestamp/pkg/utility"
)

// NumericClass what a purely-digit input was classified as
type NumericClass uint8

const (
	NotNumeric    NumericClass = iota // fall through to the template cascade
	EpochSeconds                      // 10 digits
	EpochMillis                       // 13 digits
	TickCount                         // 18 or more digits
)

func (n NumericClass) String() string {
	switch n {
	case EpochSeconds:
		return "epoch-seconds"
	case EpochMillis:
		return "epoch-milliseconds"
	case TickCount:
		return "ticks"
	}
	return "not-numeric"
}

// Digit-length bands. Anything outside of them is left to the templates so
// that compact forms such as yyyyMMdd (8 digits) and yyyyMMddHHmmss (14
// digits) are never read as a timestamp. Leading zeros don't count towards
// the significant digits, so 0705329045 is not epoch seconds.
const (
	epochSecondsDigits = 10
	epochMillisDigits  = 13
	tickMinDigits      = 18
)

// ClassifyNumeric decide whether text is epoch seconds, epoch milliseconds
// or a tick count. Values that overflow int64 are not numeric. Never fails;
// NotNumeric means try the cascade.
func ClassifyNumeric(text string) NumericClass {
	class, _ := classifyNumeric(text)
	return class
}

func classifyNumeric(text string) (class NumericClass, value int64) {
	if !utility.AllDigits(text) {
		return NotNumeric, 0
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return NotNumeric, 0
	}

	l, significant := int64(len(text)), utility.DigitCount(value)
	switch {
	case l >= tickMinDigits && significant >= tickMinDigits:
		return TickCount, value
	case l == epochSecondsDigits && significant == epochSecondsDigits:
		return EpochSeconds, value
	case l == epochMillisDigits && significant == epochMillisDigits:
		return EpochMillis, value
	}

	return NotNumeric, 0
}

// resolveNumeric the numeric short circuit of the cascade. Epoch values are
// explicit UTC, tick counts are unspecified.
func resolveNumeric(text string) (m match, class NumericClass, ok bool) {
	class, value := classifyNumeric(text)
	m.source = class.String()

	switch class {
	case EpochSeconds:
		m.fields = FieldsOf(time.Unix(value, 0).UTC())
		m.tag = TagUTC
	case EpochMillis:
		ns, ok := overflow.Mul64(value, int64(time.Millisecond))
		if !ok {
			return m, class, false
		}
		m.fields = FieldsOf(time.Unix(0, ns).UTC())
		m.tag = TagUTC
	case TickCount:
		t, err := FromTicks(value)
		if err != nil {
			return m, class, false
		}
		m.fields = FieldsOf(t)
		m.tag = TagUnspecified
	default:
		return m, class, false
	}

	return m, class, true
}
