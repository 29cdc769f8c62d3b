package precisestamp

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// match the raw result of a successful template or fallback match. The tag
// records only what the matched text guarantees; nothing is converted here.
type match struct {
	fields    Fields
	tag       Tag
	offsetSec int // valid for TagOffset
	source    string
}

// pow10[n] scales an n digit fraction to ticks
var pow10 = [...]int{10_000_000, 1_000_000, 100_000, 10_000, 1_000, 100, 10, 1}

// read between min and max ASCII digits starting at s[i]
func readDigits(s string, i, min, max int) (value, n int, ok bool) {
	for n < max && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		value = value*10 + int(s[i+n]-'0')
		n++
	}
	return value, n, n >= min
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// Two digit years 00-49 are 20xx, 50-99 are 19xx
func twoDigitYear(v int) int {
	if v < 50 {
		return 2000 + v
	}
	return 1900 + v
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// Offset modes for readOffset
const (
	offsetModeH    = 1 // +H or +HH
	offsetModeHH   = 2 // +HH
	offsetModeHHMM = 3 // +HH, +HHMM or +HH:MM
)

// readOffset read a signed numeric offset at s[i]. Returns offset seconds and
// the number of bytes consumed.
func readOffset(s string, i int, mode int) (sec int, n int, ok bool) {
	if i >= len(s) || (s[i] != '+' && s[i] != '-') {
		return 0, 0, false
	}
	negative := s[i] == '-'
	n = 1

	min, max := 2, 2
	if mode == offsetModeH {
		min = 1
	}
	hours, hn, ok := readDigits(s, i+n, min, max)
	if !ok || hours > 23 {
		return 0, 0, false
	}
	n += hn

	var minutes int
	if mode == offsetModeHHMM && i+n < len(s) {
		j := i + n
		if s[j] == ':' {
			j++
		}
		if mn, mnLen, mok := readDigits(s, j, 2, 2); mok {
			if mn > 59 {
				return 0, 0, false
			}
			minutes = mn
			n = j + mnLen - i
		} else if j != i+n {
			// a dangling colon
			return 0, 0, false
		}
	}

	sec = hours*3600 + minutes*60
	if negative {
		sec = -sec
	}

	return sec, n, true
}

// match attempt an exact match of s against the template under culture c.
// Whitespace in s is tolerated where the template has a space and before
// designator and timezone tokens.
func (tp Template) match(s string, c *Culture) (m match, ok bool) {
	var (
		i        int
		f        Fields
		hour12   = -1
		pm       bool
		weekday  = -1
		consumed int
		v        int
	)
	m.source = tp.source

	for _, tok := range tp.tokens {
		switch tok.kind {
		case tokLiteral:
			if !hasPrefixFold(s[i:], tok.text) {
				return m, false
			}
			i += len(tok.text)
		case tokSpace:
			j := skipSpace(s, i)
			if j == i {
				return m, false
			}
			i = j
		case tokDateSep, tokTimeSep:
			sep := c.DateSeparator
			if tok.kind == tokTimeSep {
				sep = c.TimeSeparator
			}
			if !strings.HasPrefix(s[i:], sep) {
				return m, false
			}
			i += len(sep)
		case tokYear:
			if tok.n == 4 {
				v, consumed, ok = readDigits(s, i, 4, 4)
			} else {
				v, consumed, ok = readDigits(s, i, tok.n, 2)
				v = twoDigitYear(v)
			}
			if !ok {
				return m, false
			}
			f.Year = v
			i += consumed
		case tokMonth:
			switch tok.n {
			case 1, 2:
				v, consumed, ok = readDigits(s, i, tok.n, 2)
			default:
				v, consumed = c.matchMonth(s[i:], tok.n == 3)
				ok = v > 0
			}
			if !ok {
				return m, false
			}
			f.Month = v
			i += consumed
		case tokDay:
			switch tok.n {
			case 1, 2:
				v, consumed, ok = readDigits(s, i, tok.n, 2)
				f.Day = v
			default:
				v, consumed = c.matchDay(s[i:], tok.n == 3)
				ok = v > 0
				weekday = v - 1
			}
			if !ok {
				return m, false
			}
			i += consumed
		case tokHour24, tokHour12, tokMinute, tokSecond:
			v, consumed, ok = readDigits(s, i, tok.n, 2)
			if !ok {
				return m, false
			}
			switch tok.kind {
			case tokHour24:
				f.Hour = v
			case tokHour12:
				if v < 1 || v > 12 {
					return m, false
				}
				hour12 = v
			case tokMinute:
				f.Minute = v
			default:
				f.Second = v
			}
			i += consumed
		case tokFraction, tokFractionOpt:
			min := tok.n
			if tok.kind == tokFractionOpt {
				min = 0
			}
			v, consumed, ok = readDigits(s, i, min, tok.n)
			if !ok {
				return m, false
			}
			f.Ticks = v * pow10[consumed]
			i += consumed
		case tokDesignator:
			i = skipSpace(s, i)
			am, p := c.AM, c.PM
			if tok.n == 1 {
				am, p = firstRune(am), firstRune(p)
			}
			switch {
			case am == "" && p == "":
				// culture has no designators
			case p != "" && hasPrefixFold(s[i:], p):
				pm = true
				i += len(p)
			case am != "" && hasPrefixFold(s[i:], am):
				i += len(am)
			default:
				return m, false
			}
		case tokOffset, tokKind:
			i = skipSpace(s, i)
			if i < len(s) && (s[i] == 'Z' || s[i] == 'z') {
				m.tag = TagUTC
				i++
				continue
			}
			mode := tok.n
			if tok.kind == tokKind {
				if i == len(s) {
					continue
				}
				mode = offsetModeHHMM
			}
			v, consumed, ok = readOffset(s, i, mode)
			if !ok {
				return m, false
			}
			m.tag = TagOffset
			m.offsetSec = v
			i += consumed
		}
	}

	if i != len(s) {
		return m, false
	}

	if hour12 >= 0 {
		f.Hour = hour12 % 12
		if pm {
			f.Hour += 12
		}
	}
	if !f.Valid() {
		return m, false
	}
	if weekday >= 0 && time.Weekday(weekday) != f.In(time.UTC).Weekday() {
		return m, false
	}

	m.fields = f

	return m, true
}

func firstRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
