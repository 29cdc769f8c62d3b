package precisestamp

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

// does tp read an hour
func hasTime(tp Template) bool {
	for _, tok := range tp.tokens {
		if tok.kind == tokHour24 || tok.kind == tokHour12 {
			return true
		}
	}
	return false
}

func cachedCatalogCount() int {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	return len(catalogCache)
}

// expectedFields the reference fields reduced to what tp can carry
func expectedFields(tp Template, f Fields) Fields {
	var hasMinute, hasSecond bool
	digits := 0
	for _, tok := range tp.tokens {
		switch tok.kind {
		case tokMinute:
			hasMinute = true
		case tokSecond:
			hasSecond = true
		case tokFraction, tokFractionOpt:
			digits = tok.n
		}
	}
	if !hasTime(tp) {
		f.Hour = 0
	}
	if !hasMinute {
		f.Minute = 0
	}
	if !hasSecond {
		f.Second = 0
	}
	f.Ticks = f.Ticks / pow10[digits] * pow10[digits]

	return f
}

// Every default template must read back what it writes
func TestDefaultCatalogRoundTrip(t *testing.T) {
	is := is.New(t)

	references := []time.Time{
		time.Date(2024, 1, 15, 14, 30, 45, 123_456_700, time.UTC),
		time.Date(1999, 12, 31, 0, 5, 9, 900, time.UTC),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
		time.Date(2030, 7, 4, 9, 59, 59, 999_999_900, time.UTC),
	}

	for _, tp := range defaultCatalog() {
		for _, ref := range references {
			text := tp.Format(ref, Invariant)
			m, ok := tp.match(text, Invariant)
			if !ok {
				t.Logf("template %s text %s", tp, text)
			}
			is.True(ok) // Formatted text should match its own template
			is.Equal(m.fields, expectedFields(tp, FieldsOf(ref)))
		}
	}
}

func TestRoundTripOffsetTemplates(t *testing.T) {
	is := is.New(t)

	ref := time.Date(2024, 1, 15, 14, 30, 45, 123_456_700, LocationFromOffset(-(3*3600 + 1800)))
	for _, format := range []string{
		"yyyy-MM-dd'T'HH:mm:ss.fffffffK",
		"yyyy-MM-dd HH:mm:ssK",
		"yyyyMMdd'T'HHmmss.fffffffzzz",
		"yyyy-MM-dd HH:mm zz",
	} {
		tp := MustCompile(format)
		text := tp.Format(ref, Invariant)
		m, ok := tp.match(text, Invariant)
		is.True(ok) // Offset template should round trip
		is.Equal(m.fields, expectedFields(tp, FieldsOf(ref)))
		if tp.tokens[len(tp.tokens)-1].n == 2 {
			is.Equal(m.offsetSec, -3*3600) // zz carries hours only
			continue
		}
		is.Equal(m.tag, TagOffset)
		is.Equal(m.offsetSec, -(3*3600 + 1800))
	}
}

func TestRoundTripCultures(t *testing.T) {
	is := is.New(t)

	ref := time.Date(2024, 3, 15, 21, 5, 0, 0, time.UTC)
	for _, c := range Cultures() {
		for _, format := range []string{"MMMM d, yyyy", "dd-MMM-yyyy", "dddd dd/MM/yyyy HH:mm", "ddd MMM d yyyy h:mm tt"} {
			tp := MustCompile(format)
			if c.PM == "" && tp.tokens[len(tp.tokens)-1].kind == tokDesignator {
				// 12 hour clock can't be read back without designators
				continue
			}
			text := tp.Format(ref, c)
			m, ok := tp.match(text, c)
			if !ok {
				t.Logf("culture %s template %s text %s", c.Name, tp, text)
			}
			is.True(ok) // Culture names and separators should round trip
			is.Equal(m.fields, expectedFields(tp, FieldsOf(ref)))
		}
	}
}

func TestCompile(t *testing.T) {
	is := is.New(t)

	tp, err := Compile("yyyy-MM-dd'T'HH:mm:ss.fffffff'Z'")
	is.NoErr(err)
	is.True(tp.UTCLiteral()) // Ends in a literal Z
	is.True(hasTime(tp))

	tp, err = Compile(`yyyyMMdd\THHmmss`)
	is.NoErr(err) // Escaped literal
	is.True(!tp.UTCLiteral())

	tp, err = Compile("yyyy-MM-dd")
	is.NoErr(err)
	is.True(!hasTime(tp))

	bad := []string{
		"",
		"   ",
		"yyy-MM-dd",
		"yyyyy-MM-dd",
		"yyyy-MM-dd HH:mm:ss.ffffffff",
		"yyyy-MM-dd 'unterminated",
		`yyyy-MM-dd\`,
		"HH:mm:ss",
		"yyyy-MM",
		"yyyy-MM-dd HHH",
		"yyyy-MM-dd zzzz",
	}
	for _, format := range bad {
		_, err := Compile(format)
		is.True(err != nil) // Template should not compile
		var templateErr *TemplateError
		is.True(errors.As(err, &templateErr))
	}
}

func TestMatchEdges(t *testing.T) {
	is := is.New(t)

	tests := []struct {
		format string
		in     string
		ok     bool
	}{
		{"yyyy-MM-dd HH:mm:ss", "2024-01-15 14:30:45", true},
		{"yyyy-MM-dd HH:mm:ss", "2024-01-15   14:30:45", true}, // Space matches a run of whitespace
		{"yyyy-MM-dd HH:mm:ss", "2024-01-1514:30:45", false},
		{"yyyy-MM-dd HH:mm:ss", "2024-01-15 14:30:45 ", false}, // Exact match
		{"yyyy-MM-dd HH:mm:ss", "2024-1-15 14:30:45", false},
		{"yyyy-M-d H:m:s", "2024-1-5 4:3:5", true},
		{"yyyy-MM-dd'T'HH:mm:ss", "2024-01-15t14:30:45", true}, // Literals ignore case
		{"yyyy-MM-dd HH:mm:ss.fff", "2024-01-15 14:30:45.12", false},
		{"yyyy-MM-dd HH:mm:ss.FFF", "2024-01-15 14:30:45.12", true},
		{"yyyy-MM-dd HH:mm:ss.FFF", "2024-01-15 14:30:45.", true},
		{"yyyy-MM-dd hh:mm tt", "2024-01-15 13:30 PM", false}, // 12 hour clock
		{"yyyy-MM-dd hh:mm tt", "2024-01-15 00:30 AM", false},
		{"yyyy-MM-dd hh:mm t", "2024-01-15 12:30 A", true},
		{"yyyy-MM-dd hh:mmtt", "2024-01-15 12:30pm", true},
		{"ddd, dd MMM yyyy", "Mon, 15 Jan 2024", true},
		{"ddd, dd MMM yyyy", "Tue, 15 Jan 2024", false}, // Wrong weekday
		{"dddd, MMMM d, yyyy", "Monday, January 15, 2024", true},
		{"yyyy-MM-dd HH:mm:ss zzz", "2024-01-15 14:30:45 +05:30", true},
		{"yyyy-MM-dd HH:mm:ss zzz", "2024-01-15 14:30:45 +24:00", false},
		{"yyyy-MM-dd HH:mm:ss zzz", "2024-01-15 14:30:45 +05:60", false},
		{"yyyy-MM-dd HH:mm:ss zzz", "2024-01-15 14:30:45 +05:", false},
		{"yyyy-MM-dd HH:mm:ssz", "2024-01-15 14:30:45+5", true},
		{"yyyy-MM-dd HH:mm:sszz", "2024-01-15 14:30:45+5", false},
		{"yyyy-MM-dd HH:mm:ssK", "2024-01-15 14:30:45", true},
		{"yyyy-MM-dd HH:mm:ssK", "2024-01-15 14:30:45Z", true},
		{"yyyy-MM-dd HH:mm:ssK", "2024-01-15 14:30:45X", false},
		{"yyyy-MM-dd", "2023-02-29", false},
		{"yyyy-MM-dd", "0000-01-01", false},
		{"dd-MMM-yy", "15-JAN-49", true},
	}

	for _, tt := range tests {
		tp := MustCompile(tt.format)
		_, ok := tp.match(tt.in, Invariant)
		if ok != tt.ok {
			t.Logf("template %s input %s", tt.format, tt.in)
		}
		is.Equal(ok, tt.ok) // Exact match result
	}
}

func TestMatchTags(t *testing.T) {
	is := is.New(t)

	m, ok := MustCompile("yyyy-MM-dd HH:mm:ssK").match("2024-01-15 14:30:45Z", Invariant)
	is.True(ok)
	is.Equal(m.tag, TagUTC)

	m, ok = MustCompile("yyyy-MM-dd HH:mm:ssK").match("2024-01-15 14:30:45-00:00", Invariant)
	is.True(ok)
	is.Equal(m.tag, TagOffset) // Zero offsets are offsets to the matcher
	is.Equal(m.offsetSec, 0)

	m, ok = MustCompile("yyyyMMdd'T'HHmmss'Z'").match("20240115T143045Z", Invariant)
	is.True(ok)
	is.Equal(m.tag, TagUnspecified) // A literal Z is not a conversion

	m, ok = MustCompile("dd-MMM-yy").match("15-JAN-50", Invariant)
	is.True(ok)
	is.Equal(m.fields.Year, 1950) // Two digit year pivot
}

func TestMatchCultureSeparators(t *testing.T) {
	is := is.New(t)

	tp := MustCompile("dd/MM/yyyy HH:mm")
	de := LookupCulture("de-DE")
	nl := LookupCulture("nl-NL")

	_, ok := tp.match("15.01.2024 14:30", de)
	is.True(ok) // German date separator
	_, ok = tp.match("15/01/2024 14:30", de)
	is.True(!ok)
	_, ok = tp.match("15-01-2024 14:30", nl)
	is.True(ok) // Dutch date separator
	_, ok = tp.match("15/01/2024 14:30", Invariant)
	is.True(ok)

	es := LookupCulture("es-ES")
	m, ok := MustCompile("dd/MM/yyyy hh:mm tt").match("15/01/2024 02:30 p. m.", es)
	is.True(ok) // Multi word designator
	is.Equal(m.fields.Hour, 14)
}

func TestReadOffset(t *testing.T) {
	is := is.New(t)

	tests := []struct {
		in   string
		mode int
		sec  int
		n    int
		ok   bool
	}{
		{"+05:30", offsetModeHHMM, 19800, 6, true},
		{"-0530", offsetModeHHMM, -19800, 5, true},
		{"+05", offsetModeHHMM, 18000, 3, true},
		{"+05:30", offsetModeHH, 18000, 3, true},
		{"+5", offsetModeH, 18000, 2, true},
		{"+5", offsetModeHH, 0, 0, false},
		{"05:30", offsetModeHHMM, 0, 0, false},
		{"+25:00", offsetModeHHMM, 0, 0, false},
		{"+05:99", offsetModeHHMM, 0, 0, false},
		{"+05:", offsetModeHHMM, 0, 0, false},
	}
	for _, tt := range tests {
		sec, n, ok := readOffset(tt.in, 0, tt.mode)
		is.Equal(ok, tt.ok)
		is.Equal(sec, tt.sec)
		is.Equal(n, tt.n)
	}
}

func TestLexTimestamp(t *testing.T) {
	is := is.New(t)

	formats := []string{
		"20060102T010101",
		"20060102T010101Z",
		"20060102T010101.123456789",
		"20060102T010101.123456-0500",
		"20060102T010101-0400",
		"20060102t010101-0400",
		"2006-01-02T01:01:01-03:30",
		"2006-01-02T18-01-01+0100",
		"2006/01/02T18.01.01+01:00",
		"2006/01/02T18.01.01+01:10",
		"2006-01-02 18:01:01+01",
		"20060102T010101.",
		"2006-01-02",
	}
	for _, f := range formats {
		m, err := lexTimestamp(f)
		is.NoErr(err) // Lexer should accept
		is.Equal(m.fields.Year, 2006)
	}

	bad := []string{
		"2006-01-02T11-30-61+010",
		"20060102T010101-04000",
		"20060102T0101Z01Z",
		"2006w01s02T18a01b01c01:00",
		"2006-01-02T18:01:01b01:00",
		"bkjfdlkjfdlkjfdskjlfdlkjfdlkjfdlkjfdslkjfdlkjfdsljkf",
		"2000-02-30T12-01-01+0100",
		"2006-01-02T27-01-01+0100",
		"2006-13-02T10:01:01",
		"06-01-02",
		"20060102T010101+",
		"20060102T010101.1234567890",
	}
	for _, f := range bad {
		_, err := lexTimestamp(f)
		if err == nil {
			t.Logf("input %s", f)
		}
		is.True(err != nil) // Lexer should reject
	}

	m, err := lexTimestamp("2006-01-02T01:01:01.987654321-03:30")
	is.NoErr(err)
	is.Equal(m.fields.Ticks, 9_876_543) // Truncated to ticks
	is.Equal(m.tag, TagOffset)
	is.Equal(m.offsetSec, -(3*3600 + 1800))

	m, err = lexTimestamp("2006-01-02T01:01:01Z")
	is.NoErr(err)
	is.Equal(m.tag, TagUTC)
}

func TestNormalizeDottedTime(t *testing.T) {
	is := is.New(t)

	got, changed := normalizeDottedTime("15-JAN-24 02.30.45.123456 PM")
	is.True(changed)
	is.Equal(got, "15-JAN-24 02:30:45.123456 PM")

	got, changed = normalizeDottedTime("2024-01-15T9.05.07")
	is.True(changed)
	is.Equal(got, "2024-01-15T9:05:07")

	_, changed = normalizeDottedTime("15.01.24")
	is.True(!changed) // A dotted date is not a time
}

func TestTranslateNames(t *testing.T) {
	is := is.New(t)

	fr := LookupCulture("fr-FR")
	is.Equal(translateNames("lundi 15 janvier 2024", fr), "Monday 15 January 2024")
	is.Equal(translateNames("15 janv. 2024", fr), "15 Jan 2024")

	m, ok := genericParse("15 janvier 2024", fr)
	is.True(ok) // Translated names reach the Go layouts
	is.Equal(m.fields, Fields{Year: 2024, Month: 1, Day: 15})

	_, ok = genericParse("15 janvier 2024", Invariant)
	is.True(!ok)
}

func TestReconcile(t *testing.T) {
	is := is.New(t)

	f := Fields{Year: 2024, Month: 1, Day: 15, Hour: 14, Minute: 30, Second: 45, Ticks: 1_234_567}
	zero := ZoneSignal{Found: true, Text: "Z"}

	// Unspecified with a zero signal is tagged UTC, fields unchanged
	ts := reconcileNaive(naiveOf(match{fields: f}), zero)
	is.Equal(ts.Kind, UTC)
	is.Equal(ts.Fields(), f)

	// Local conversion is undone
	ts = reconcileNaive(naiveOf(match{fields: f, tag: TagOffset}), zero)
	is.Equal(ts.Kind, UTC)
	is.Equal(ts.Fields(), f)

	// Without a signal nothing changes
	ts = reconcileNaive(naiveOf(match{fields: f}), ZoneSignal{})
	is.Equal(ts.Kind, Unspecified)

	ts = reconcileNaive(naiveOf(match{fields: f, tag: TagOffset, offsetSec: 3600}), ZoneSignal{Found: true, OffsetSec: 3600})
	is.Equal(ts.Kind, Local) // Non-zero offsets stay local
	is.True(ts.Time.Equal(f.In(LocationFromOffset(3600))))

	o := reconcileOffset(match{fields: f}, ZoneSignal{}, 2*time.Hour)
	is.Equal(o.Offset(), 2*time.Hour)
	is.Equal(o.Fields(), f)

	o = reconcileOffset(match{fields: f, tag: TagOffset, offsetSec: -3600}, ZoneSignal{}, 2*time.Hour)
	is.Equal(o.Offset(), -time.Hour) // The template's offset beats the default

	o = reconcileOffset(match{fields: f, tag: TagUTC}, ZoneSignal{}, 2*time.Hour)
	is.Equal(o.Offset(), time.Duration(0))

	o = reconcileOffset(match{fields: f, tag: TagOffset, offsetSec: 0}, ZoneSignal{Found: true, OffsetSec: 19800}, 0)
	is.Equal(o.Offset(), 5*time.Hour+30*time.Minute) // The text signal wins
}

func TestResolveStages(t *testing.T) {
	is := is.New(t)

	p, err := NewParser(WithCulture(Invariant))
	is.NoErr(err)

	tests := []struct {
		in    string
		stage string
	}{
		{"1705329045", stageNumeric},
		{"638405790450000000", stageNumeric},
		{"2024-01-15 14:30:45", stageTemplate},
		{"2024-01-15 14.30.45", stageDotted},
		{"Mon, 15 Jan 2024 14:30:45 GMT", stageGeneric},
		{"2006-01-02T01:01:01.987654321-03:30", stageGeneric},
	}
	for _, tt := range tests {
		o := p.safeResolve(tt.in, defaultCatalog())
		is.True(o.ok())
		is.Equal(o.stage, tt.stage) // Cascade stage that resolved the input
	}

	o := p.safeResolve("2024-01-15T14:30:45+05:30", defaultCatalog())
	is.True(o.ok())
	is.Equal(o.signal, ZoneSignal{Found: true, Text: "+05:30", OffsetSec: 19800})

	o = p.safeResolve("no date", Catalog{MustCompile("yyyy-MM-dd")})
	is.True(!o.ok())
	var formatErr *FormatError
	is.True(errors.As(o.err, &formatErr))
	is.Equal(formatErr.Templates, 1)
}

// Per-call format lists built on the fly must not grow the cache for ever
func TestCatalogCacheBounded(t *testing.T) {
	is := is.New(t)

	for i := 0; i < 3*maxCachedCatalogs; i++ {
		format := "yyyy-MM-dd'" + strings.Repeat("x", i) + "'"
		_, err := ParseWith("2024-01-15", []string{format})
		is.NoErr(err) // Falls back to the lexer
		is.True(cachedCatalogCount() <= maxCachedCatalogs)
	}

	formats := []string{"dd.MM.yyyy"}
	first, err := cachedCatalog(formats)
	is.NoErr(err)
	again, err := cachedCatalog(formats)
	is.NoErr(err)
	is.Equal(first.Formats(), again.Formats()) // Same list served again

	catalog, err := cachedCatalog(nil)
	is.NoErr(err)
	is.Equal(len(catalog), len(defaultFormats)) // Default catalog is not cached per call
}
