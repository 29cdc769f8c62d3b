package precisestamp

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/imarsman/precisestamp/pkg/utility"
	"lab.nexedi.com/kirr/go123/xfmt"
)

type tokenKind uint8

const (
	tokLiteral    tokenKind = iota // literal text
	tokSpace                       // one or more whitespace runes
	tokDateSep                     // culture date separator
	tokTimeSep                     // culture time separator
	tokYear                        // n 1-2 two digit year, 4 four digit year
	tokMonth                       // n 1-2 number, 3 abbreviated name, 4 full name
	tokDay                         // n 1-2 number, 3 abbreviated name, 4 full name
	tokHour24                      // H HH
	tokHour12                      // h hh
	tokMinute                      // m mm
	tokSecond                      // s ss
	tokFraction                    // f exactly n digits
	tokFractionOpt                 // F up to n digits
	tokDesignator                  // t tt
	tokOffset                      // z zz zzz
	tokKind                        // K
)

type token struct {
	kind tokenKind
	n    int
	text string
}

// Template a compiled, immutable template descriptor. Templates use the
// widely known yyyy-MM-dd HH:mm:ss.fffffff token grammar.
type Template struct {
	source     string
	tokens     []token
	utcLiteral bool // ends with a literal Z
}

func (tp Template) String() string {
	return tp.source
}

// UTCLiteral does the template end in a literal Z. The matcher does not
// convert on it, it is only reported.
func (tp Template) UTCLiteral() bool {
	return tp.utcLiteral
}

// Max repeat count for each pattern letter
var tokenLimits = map[rune]struct {
	kind tokenKind
	max  int
}{
	'y': {tokYear, 4},
	'M': {tokMonth, 4},
	'd': {tokDay, 4},
	'H': {tokHour24, 2},
	'h': {tokHour12, 2},
	'm': {tokMinute, 2},
	's': {tokSecond, 2},
	'f': {tokFraction, 7},
	'F': {tokFractionOpt, 7},
	't': {tokDesignator, 2},
	'z': {tokOffset, 3},
	'K': {tokKind, 1},
}

func templateError(format string, pos int, reason string) error {
	return &TemplateError{Format: format, Pos: pos, Reason: reason}
}

// Compile compile a template string. Calendar fields must include a year,
// month and day.
func Compile(format string) (Template, error) {
	tp := Template{source: format}
	if strings.TrimSpace(format) == "" {
		return tp, templateError(format, 0, "empty template")
	}

	var literal []rune
	flush := func() {
		if len(literal) > 0 {
			tp.tokens = append(tp.tokens, token{kind: tokLiteral, text: utility.RunesToString(literal...)})
			literal = literal[:0]
		}
	}

	runes := []rune(format)
	var seen = make(map[tokenKind]bool)
	for i := 0; i < len(runes); {
		r := runes[i]

		if limit, ok := tokenLimits[r]; ok {
			n := 1
			for i+n < len(runes) && runes[i+n] == r {
				n++
			}
			if n > limit.max || (limit.kind == tokYear && n == 3) {
				buf := new(xfmt.Buffer)
				buf.S("pattern ").S(strings.Repeat(string(r), n)).S(" is not supported")
				return tp, templateError(format, i, utility.BytesToString(buf.Bytes()...))
			}
			flush()
			tp.tokens = append(tp.tokens, token{kind: limit.kind, n: n})
			seen[limit.kind] = true
			i += n
			continue
		}

		switch {
		case r == '\'' || r == '"':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == r {
					end = j
					break
				}
			}
			if end < 0 {
				return tp, templateError(format, i, "unterminated quoted literal")
			}
			literal = append(literal, runes[i+1:end]...)
			i = end + 1
		case r == '\\':
			if i+1 >= len(runes) {
				return tp, templateError(format, i, "trailing escape")
			}
			literal = append(literal, runes[i+1])
			i += 2
		case r == '%':
			// single letter pattern marker
			i++
		case r == '/':
			flush()
			tp.tokens = append(tp.tokens, token{kind: tokDateSep})
			i++
		case r == ':':
			flush()
			tp.tokens = append(tp.tokens, token{kind: tokTimeSep})
			i++
		case unicode.IsSpace(r):
			flush()
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			tp.tokens = append(tp.tokens, token{kind: tokSpace})
		default:
			literal = append(literal, r)
			i++
		}
	}
	flush()

	if !seen[tokYear] || !seen[tokMonth] || !seen[tokDay] {
		return tp, templateError(format, 0, "template needs year, month and day")
	}

	if last := tp.tokens[len(tp.tokens)-1]; last.kind == tokLiteral && strings.HasSuffix(last.text, "Z") {
		tp.utcLiteral = true
	}

	return tp, nil
}

// MustCompile like Compile but panics on error. For package level catalogs.
func MustCompile(format string) Template {
	tp, err := Compile(format)
	if err != nil {
		panic(err)
	}
	return tp
}

// Format render t with the template under culture c. Offset tokens use the
// offset of t's location. Used to produce round-trip input.
func (tp Template) Format(t time.Time, c *Culture) string {
	if c == nil {
		c = Invariant
	}
	buf := new(xfmt.Buffer)

	pad := func(v, width int) {
		s := make([]byte, 0, width)
		for d := width - 1; d >= 0; d-- {
			p := 1
			for k := 0; k < d; k++ {
				p *= 10
			}
			s = append(s, byte('0'+(v/p)%10))
		}
		buf.S(utility.BytesToString(s...))
	}

	ticks := t.Nanosecond() / nanosPerTick
	for _, tok := range tp.tokens {
		switch tok.kind {
		case tokLiteral:
			buf.S(tok.text)
		case tokSpace:
			buf.C(' ')
		case tokDateSep:
			buf.S(c.DateSeparator)
		case tokTimeSep:
			buf.S(c.TimeSeparator)
		case tokYear:
			if tok.n == 4 {
				pad(t.Year(), 4)
			} else {
				pad(t.Year()%100, 2)
			}
		case tokMonth:
			switch tok.n {
			case 1:
				buf.D(int(t.Month()))
			case 2:
				pad(int(t.Month()), 2)
			case 3:
				buf.S(c.AbbrevMonths[t.Month()-1])
			default:
				buf.S(c.Months[t.Month()-1])
			}
		case tokDay:
			switch tok.n {
			case 1:
				buf.D(t.Day())
			case 2:
				pad(t.Day(), 2)
			case 3:
				buf.S(c.AbbrevDays[t.Weekday()])
			default:
				buf.S(c.Days[t.Weekday()])
			}
		case tokHour24, tokHour12, tokMinute, tokSecond:
			v := t.Second()
			switch tok.kind {
			case tokHour24:
				v = t.Hour()
			case tokHour12:
				v = t.Hour() % 12
				if v == 0 {
					v = 12
				}
			case tokMinute:
				v = t.Minute()
			}
			if tok.n == 1 {
				buf.D(v)
			} else {
				pad(v, 2)
			}
		case tokFraction, tokFractionOpt:
			v := ticks
			for k := tok.n; k < 7; k++ {
				v /= 10
			}
			pad(v, tok.n)
		case tokDesignator:
			d := c.AM
			if t.Hour() >= 12 {
				d = c.PM
			}
			if tok.n == 1 && d != "" {
				_, size := utf8.DecodeRuneInString(d)
				d = d[:size]
			}
			buf.S(d)
		case tokOffset, tokKind:
			off := OffsetForTime(t)
			if tok.kind == tokKind && off == 0 && t.Location() == time.UTC {
				buf.C('Z')
				continue
			}
			h, m := OffsetHM(off)
			if off < 0 {
				buf.C('-')
			} else {
				buf.C('+')
			}
			if h < 0 {
				h = -h
			}
			n := tok.n
			if tok.kind == tokKind {
				n = 3
			}
			switch n {
			case 1:
				buf.D(h)
			case 2:
				pad(h, 2)
			default:
				pad(h, 2)
				buf.C(':')
				pad(m, 2)
			}
		}
	}

	return utility.BytesToString(buf.Bytes()...)
}
