package precisestamp

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/imarsman/precisestamp/pkg/utility"
	"lab.nexedi.com/kirr/go123/xfmt"
)

// Oracle writes times as 02.30.45. Only groups that follow whitespace or a T
// are times; a dotted date such as 15.01.24 at the start is left alone.
var reDottedTime = regexp.MustCompile(`([\sTt])(\d{1,2})\.(\d{2})\.(\d{2})\b`)

// normalizeDottedTime rewrite H.MM.SS time groups to H:MM:SS. changed is false
// if there was nothing to rewrite.
func normalizeDottedTime(text string) (normalized string, changed bool) {
	normalized = reDottedTime.ReplaceAllString(text, "${1}${2}:${3}:${4}")
	return normalized, normalized != text
}

type fallbackLayout struct {
	layout string
	tag    Tag // TagOffset when the layout carries a numeric zone
}

// Go layouts tried after the lexer, in order. The first match wins.
var fallbackLayouts = []fallbackLayout{
	// RFC7232 - used in HTTP protocol
	{"Mon, 02 Jan 2006 15:04:05 GMT", TagUTC},
	// RFC1123Z
	{"Mon, 02 Jan 2006 15:04:05 -0700", TagOffset},
	{"Mon, 02 Jan 2006 15:04:05", TagUnspecified},
	// RFC850 without the zone name
	{"Monday, 02-Jan-06 15:04:05", TagUnspecified},
	{"Monday, 02-Jan-2006 15:04:05", TagUnspecified},
	// RFC822Z
	{"02 Jan 06 15:04 -0700", TagOffset},
	// ANSIC
	{"Mon Jan _2 15:04:05 2006", TagUnspecified},
	// Oracle after dotted time normalization
	{"02-Jan-06 03:04:05 PM", TagUnspecified},
	{"02-Jan-2006 03:04:05 PM", TagUnspecified},
	{"02-Jan-06 15:04:05", TagUnspecified},
	{"02-Jan-2006 15:04:05", TagUnspecified},
	// Just in case
	{"2006-01-02 15-04-05", TagUnspecified},
	{"January 2, 2006 15:04:05", TagUnspecified},
	{"January 2, 2006 3:04 PM", TagUnspecified},
	{"2 January 2006 15:04:05", TagUnspecified},
	{"Jan 2, 2006 15:04:05", TagUnspecified},
	{"Jan 2 2006 3:04PM", TagUnspecified},
	{"02.01.2006 15:04:05", TagUnspecified},
	// Date only last
	{"January 2, 2006", TagUnspecified},
	{"2 January 2006", TagUnspecified},
	{"Jan 2, 2006", TagUnspecified},
	{"2 Jan 2006", TagUnspecified},
	{"02.01.2006", TagUnspecified},
	{"1/2/2006 15:04:05", TagUnspecified},
	{"1/2/2006", TagUnspecified},
}

// genericParse the free-form last resort. Tries the lexer and then the Go
// layouts. Under a culture other than Invariant month and day names are
// first translated to English. Precision past 100ns is truncated.
func genericParse(text string, c *Culture) (m match, ok bool) {
	if c != nil && c != Invariant {
		text = translateNames(text, c)
	}

	if m, err := lexTimestamp(text); err == nil {
		return m, true
	}

	for _, fl := range fallbackLayouts {
		t, err := time.ParseInLocation(fl.layout, text, time.UTC)
		if err != nil {
			continue
		}
		m.source = fl.layout
		m.fields = FieldsOf(t)
		m.tag = fl.tag
		if fl.tag == TagOffset {
			_, m.offsetSec = t.Zone()
		}
		return m, true
	}

	return m, false
}

// translateNames replace culture month and day names with their English
// forms so the Go layouts can read them
func translateNames(text string, c *Culture) string {
	var sb strings.Builder
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsLetter(r) {
			sb.WriteRune(r)
			i += size
			continue
		}
		j := i
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsLetter(r) && r != '.' {
				break
			}
			j += size
		}
		word := text[i:j]
		sb.WriteString(englishName(word, c))
		i = j
	}

	return sb.String()
}

func englishName(word string, c *Culture) string {
	trimmed := strings.TrimRight(word, ".")
	for _, candidate := range []string{word, trimmed} {
		for k := range c.Months {
			if strings.EqualFold(candidate, c.Months[k]) {
				return englishMonths[k]
			}
			if strings.EqualFold(candidate, c.AbbrevMonths[k]) || strings.EqualFold(candidate, strings.TrimRight(c.AbbrevMonths[k], ".")) {
				return englishAbbrevMonths[k]
			}
		}
		for k := range c.Days {
			if strings.EqualFold(candidate, c.Days[k]) {
				return englishDays[k]
			}
			if strings.EqualFold(candidate, c.AbbrevDays[k]) || strings.EqualFold(candidate, strings.TrimRight(c.AbbrevDays[k], ".")) {
				return englishAbbrevDays[k]
			}
		}
	}
	return word
}

// lexTimestamp parse an ISO-shaped timestamp iteratively. The lexer is
// tolerant of some inconsistency that is not ISO-8601 compliant, such as
// dashes where there should be colons, a space instead of a T and 1-9 digits
// of fractional second. Unlike the Go time package it does not roll invalid
// days or hours over; the result must be a real calendar value.
func lexTimestamp(timeStr string) (m match, err error) {
	const maxLength int = 40
	timeStrLength := len(timeStr)

	if timeStrLength > maxLength {
		xfmtBuf := new(xfmt.Buffer)
		xfmtBuf.S("precisestamp.lexTimestamp: input length is ").D(timeStrLength).S(" and > max of ").D(maxLength)

		err = errors.New(utility.BytesToString(xfmtBuf.Bytes()...))
		return
	}

	var currentSection int = 0

	const (
		emptySection     int = iota // value for empty section
		yearSection                 // year - four digits
		monthSection                // month - 2 digits
		daySection                  // day - 2 digits
		hourSection                 // hour - 2 digits
		minuteSection               // minute - 2 digits
		secondSection               // second - 2 digits
		subsecondSection            // subsecond 1-9 digits
		zoneSection                 // zone +/-HHMM
		afterSection                // after - when done
	)

	const (
		yearMax      int = 4 // max length for year
		monthMax     int = 2 // max length for month number
		dayMax       int = 2 // max length for day number
		hourMax      int = 2 // max length for hour number
		minuteMax    int = 2 // max length for minute number
		secondMax    int = 2 // max length for second number
		subsecondMax int = 9 // max length for subsecond number
		zoneMax      int = 4 // max length for zone
	)

	var (
		yearPart      = make([]rune, 0, yearMax)
		monthPart     = make([]rune, 0, monthMax)
		dayPart       = make([]rune, 0, dayMax)
		hourPart      = make([]rune, 0, hourMax)
		minutePart    = make([]rune, 0, minuteMax)
		secondPart    = make([]rune, 0, secondMax)
		subsecondPart = make([]rune, 0, subsecondMax)
		zonePart      = make([]rune, 0, zoneMax)
	)

	// Add to a part if it is not above capacity and flag when it has reached
	// capacity. Returns the modified slice to avoid issues due to appending.
	var addIf = func(part []rune, add rune, max int) ([]rune, bool) {
		if len(part) < max {
			part = append(part, add)
		}
		return part, len(part) == max
	}

	// Each section hands over to the next one when full
	next := map[int]int{
		yearSection:      monthSection,
		monthSection:     daySection,
		daySection:       hourSection,
		hourSection:      minuteSection,
		minuteSection:    secondSection,
		secondSection:    subsecondSection,
		subsecondSection: zoneSection,
		zoneSection:      afterSection,
	}
	parts := map[int]*[]rune{
		yearSection:      &yearPart,
		monthSection:     &monthPart,
		daySection:       &dayPart,
		hourSection:      &hourPart,
		minuteSection:    &minutePart,
		secondSection:    &secondPart,
		subsecondSection: &subsecondPart,
		zoneSection:      &zonePart,
	}
	limits := map[int]int{
		yearSection:      yearMax,
		monthSection:     monthMax,
		daySection:       dayMax,
		hourSection:      hourMax,
		minuteSection:    minuteMax,
		secondSection:    secondMax,
		subsecondSection: subsecondMax,
		zoneSection:      zoneMax,
	}

	var offsetPositive bool = false // is offset from UTC positive
	var zulu bool = false           // Z seen
	var signSeen bool = false       // zone sign seen
	var unparsed []string           // unparsed runes and their positions
	var partAtMax bool = false

	badRune := func(r rune, i int) {
		xfmtBuf := new(xfmt.Buffer)
		xfmtBuf.S("'").C(r).S("'").C('@').D(i)
		unparsed = append(unparsed, utility.BytesToString(xfmtBuf.Bytes()...))
	}

	for i, r := range timeStr {
		switch {
		case r >= '0' && r <= '9':
			if currentSection == emptySection {
				currentSection = yearSection
			}
			part, ok := parts[currentSection]
			if !ok {
				badRune(r, i)
				continue
			}
			*part, partAtMax = addIf(*part, r, limits[currentSection])
			if partAtMax {
				currentSection = next[currentSection]
			}
		case r == '.':
			// There could be extraneous decimal characters
			continue
		case r == '-' || r == '+':
			// A sign only starts a zone once the seconds are in. Nine fraction
			// digits move on to the zone before the sign is seen.
			if currentSection == subsecondSection || (currentSection == zoneSection && !signSeen && len(zonePart) == 0) {
				offsetPositive = (r == '+')
				signSeen = true
				currentSection = zoneSection
			}
		case unicode.ToUpper(r) == 'T' || r == ':' || r == '/':
			continue
		case unicode.ToUpper(r) == 'Z':
			if (currentSection == zoneSection || currentSection == subsecondSection) && len(zonePart) == 0 {
				zulu = true
				currentSection = afterSection
			} else {
				badRune(r, i)
			}
		case unicode.IsSpace(r):
			continue
		default:
			badRune(r, i)
		}
	}

	if len(unparsed) > 0 {
		xfmtBuf := new(xfmt.Buffer)
		xfmtBuf.S("precisestamp.lexTimestamp: got unparsed characters ").S(strings.Join(unparsed, ",")).S(" in input ").S(timeStr)

		err = errors.New(utility.BytesToString(xfmtBuf.Bytes()...))
		return
	}

	// Dates alone get a zero time of day
	if len(hourPart) == 0 && len(minutePart) == 0 && len(secondPart) == 0 {
		hourPart = append(hourPart, '0', '0')
		minutePart = append(minutePart, '0', '0')
		secondPart = append(secondPart, '0', '0')
	}

	// All date and time parts must be fully allocated. A two digit year would
	// otherwise shift every later part along.
	for _, p := range []struct {
		part []rune
		max  int
		name string
	}{
		{yearPart, yearMax, "year"},
		{monthPart, monthMax, "month"},
		{dayPart, dayMax, "day"},
		{hourPart, hourMax, "hour"},
		{minutePart, minuteMax, "minute"},
		{secondPart, secondMax, "second"},
	} {
		if len(p.part) != p.max {
			xfmtBuf := new(xfmt.Buffer)
			xfmtBuf.S("precisestamp.lexTimestamp: input ").S(p.name).S(" length is not ").D(p.max)

			err = errors.New(utility.BytesToString(xfmtBuf.Bytes()...))
			return
		}
	}

	// Only digits were placed in the parts so these conversions can't fail
	atoi := func(part []rune) int {
		v, _ := strconv.Atoi(utility.RunesToString(part...))
		return v
	}

	m.fields = Fields{
		Year:   atoi(yearPart),
		Month:  atoi(monthPart),
		Day:    atoi(dayPart),
		Hour:   atoi(hourPart),
		Minute: atoi(minutePart),
		Second: atoi(secondPart),
	}
	if l := len(subsecondPart); l > 0 {
		// Scale to nanoseconds then truncate to ticks
		ns := atoi(subsecondPart)
		for k := l; k < subsecondMax; k++ {
			ns *= 10
		}
		m.fields.Ticks = ns / nanosPerTick
	}

	if !m.fields.Valid() {
		err = errors.New("precisestamp.lexTimestamp: input is not a valid calendar date and time")
		return
	}

	m.source = "lexer"
	switch len(zonePart) {
	case 0:
		if zulu {
			m.tag = TagUTC
		} else if signSeen {
			err = errors.New("precisestamp.lexTimestamp: zone sign without offset")
		}
		return
	}
	if !signSeen {
		err = errors.New("precisestamp.lexTimestamp: zone offset without sign")
		return
	}

	switch len(zonePart) {
	case 2:
		zonePart = append(zonePart, '0', '0')
	case 4:
	default:
		// A zone with 1 or 3 characters is ambiguous
		xfmtBuf := new(xfmt.Buffer)
		xfmtBuf.S("precisestamp.lexTimestamp: zone is of length ").D(len(zonePart)).S(" which is not enough to detect zone")

		err = errors.New(utility.BytesToString(xfmtBuf.Bytes()...))
		return
	}

	offsetH, offsetM := atoi(zonePart[0:2]), atoi(zonePart[2:])
	if offsetH > 23 || offsetM > 59 {
		err = errors.New("precisestamp.lexTimestamp: zone offset out of range")
		return
	}

	offsetSec := offsetH*60*60 + offsetM*60
	if offsetPositive == false {
		offsetSec = -offsetSec
	}
	m.tag = TagOffset
	m.offsetSec = offsetSec

	return
}
