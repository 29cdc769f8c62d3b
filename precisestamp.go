package precisestamp

import (
	"errors"
	"sync"
	"time"

	"github.com/JohnCGriffin/overflow"
	"github.com/imarsman/precisestamp/pkg/utility"
	"lab.nexedi.com/kirr/go123/xfmt"
)

// A tick is 100 nanoseconds. Fractional seconds are carried as a tick count
// so that 7 digits of sub-second precision survive every stage of parsing.
const (
	TicksPerMillisecond int64 = 10_000
	TicksPerSecond      int64 = 10_000_000
	TicksPerDay         int64 = TicksPerSecond * 86_400

	// MaxTicks is the tick count for 9999-12-31T23:59:59.9999999
	MaxTicks int64 = 3_155_378_975_999_999_999

	nanosPerTick = 100

	// seconds between 0001-01-01 and the Unix epoch
	unixToTickEpochSeconds int64 = 62_135_596_800
)

// Kind is what a naive Timestamp knows about its timezone origin
type Kind uint8

const (
	// Unspecified no timezone information. Time holds the wall clock fields
	// in the UTC location but should not be read as a UTC instant.
	Unspecified Kind = iota
	// UTC the value is a UTC instant
	UTC
	// Local the value was converted to the host's local zone
	Local
)

func (k Kind) String() string {
	switch k {
	case UTC:
		return "UTC"
	case Local:
		return "Local"
	}
	return "Unspecified"
}

// Tag is the ambiguity marker produced by whichever stage resolved a value
type Tag uint8

const (
	TagUnspecified Tag = iota // no timezone component
	TagUTC                    // explicit UTC marker
	TagOffset                 // explicit numeric offset
	TagLocal                  // already converted to host local time
)

func (t Tag) String() string {
	switch t {
	case TagUTC:
		return "Explicit-UTC"
	case TagOffset:
		return "Explicit-Offset"
	case TagLocal:
		return "Converted-Local"
	}
	return "Unspecified"
}

// Fields is a raw calendar value. Ticks is the fraction of a second in 100ns
// units (0-9,999,999).
type Fields struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Ticks  int
}

// Valid does f denote a real calendar date and time of day
func (f Fields) Valid() bool {
	if f.Year < 1 || f.Year > 9999 {
		return false
	}
	if f.Day < 1 || f.Day > utility.DaysIn(f.Year, f.Month) {
		return false
	}
	if f.Hour < 0 || f.Hour > 23 || f.Minute < 0 || f.Minute > 59 || f.Second < 0 || f.Second > 59 {
		return false
	}

	return f.Ticks >= 0 && int64(f.Ticks) < TicksPerSecond
}

// In build a time from the fields in location. Ticks are carried over
// explicitly, nothing is truncated to milliseconds.
func (f Fields) In(location *time.Location) time.Time {
	return time.Date(f.Year, time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, f.Ticks*nanosPerTick, location)
}

// FieldsOf get the wall clock fields of t in its own location
func FieldsOf(t time.Time) Fields {
	return Fields{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Ticks:  t.Nanosecond() / nanosPerTick,
	}
}

// Timestamp result of the naive resolver. It can record UTC, local-converted
// or unspecified but never an arbitrary offset.
type Timestamp struct {
	Time time.Time
	Kind Kind
}

// Fields wall clock fields
func (ts Timestamp) Fields() Fields {
	return FieldsOf(ts.Time)
}

// Ticks fractional second in ticks
func (ts Timestamp) Ticks() int {
	return ts.Time.Nanosecond() / nanosPerTick
}

// IsZero is ts the zero sentinel returned on failure
func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero() && ts.Kind == Unspecified
}

// String ISO-8601 with 7 fraction digits. Z is appended for UTC, the numeric
// offset for Local and nothing for Unspecified.
func (ts Timestamp) String() string {
	switch ts.Kind {
	case UTC:
		return ts.Time.UTC().Format("2006-01-02T15:04:05.0000000Z")
	case Local:
		return ISO8601Ticks(ts.Time)
	}
	return ts.Time.Format("2006-01-02T15:04:05.0000000")
}

// OffsetTimestamp result of the offset preserving resolver. Time is always in
// a fixed zone.
type OffsetTimestamp struct {
	Time time.Time
}

// Offset offset from UTC
func (o OffsetTimestamp) Offset() time.Duration {
	return OffsetForTime(o.Time)
}

// Fields wall clock fields at the offset
func (o OffsetTimestamp) Fields() Fields {
	return FieldsOf(o.Time)
}

// Ticks fractional second in ticks
func (o OffsetTimestamp) Ticks() int {
	return o.Time.Nanosecond() / nanosPerTick
}

// IsZero is o the zero sentinel returned on failure
func (o OffsetTimestamp) IsZero() bool {
	return o.Time.IsZero()
}

func (o OffsetTimestamp) String() string {
	return ISO8601Ticks(o.Time)
}

var errTicksOutOfRange = errors.New("precisestamp: tick count out of range")

// FromTicks convert a count of ticks since 0001-01-01T00:00:00 to a time in
// the UTC location
func FromTicks(ticks int64) (time.Time, error) {
	if ticks < 0 || ticks > MaxTicks {
		return time.Time{}, errTicksOutOfRange
	}
	days, rem := utility.Norm(0, ticks, TicksPerDay)
	sec, frac := utility.Norm(0, rem, TicksPerSecond)

	// time.Date normalizes the day overflow into months and years
	return time.Date(1, time.January, 1+int(days), 0, 0, int(sec), int(frac)*nanosPerTick, time.UTC), nil
}

// ToTicks count of ticks since 0001-01-01T00:00:00 for the wall clock fields
// of t. ok is false if the value overflows int64.
func ToTicks(t time.Time) (ticks int64, ok bool) {
	wall := FieldsOf(t).In(time.UTC)

	sec, ok := overflow.Add64(wall.Unix(), unixToTickEpochSeconds)
	if !ok {
		return 0, false
	}
	ticks, ok = overflow.Mul64(sec, TicksPerSecond)
	if !ok {
		return 0, false
	}

	return overflow.Add64(ticks, int64(wall.Nanosecond()/nanosPerTick))
}

// ISO8601Ticks ISO-8601 timestamp with tick precision
//   "2006-01-02T15:04:05.0000000-07:00"
//
// Result will be in whatever the location the incoming time is set to.
func ISO8601Ticks(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.0000000-07:00")
}

// OffsetForTime the duration of the offset from UTC. Mostly the same as doing
// the same thing inline but this reliably gets a duration.
func OffsetForTime(t time.Time) (duration time.Duration) {
	_, offset := t.Zone()

	duration = time.Duration(offset) * time.Second

	return
}

// OffsetHM get hours and minutes for location offset from UTC
// Avoiding math.Abs and casting allows inlining in
func OffsetHM(d time.Duration) (offsetH, offsetM int) {
	offsetH = int(d.Hours())
	offsetM = int(d.Minutes()) % 60

	// Ensure minutes is positive
	if offsetM < 0 {
		offsetM = -offsetM
	}

	return
}

// TwoDigitOffset get digit offset for hours and minutes. This is designed
// solely to help with calculating offset strings without using fmt.Sprintf,
// which causes allocations.
func TwoDigitOffset(in int, addPrefix bool) (digits string, err error) {
	// Only meant to be for 2 digit offsets, such as hours and minutes offset
	// from UTC.
	if in > 99 || in < -99 {
		err = errors.New("Out of range")
		return
	}

	var prefix rune = '+'
	if in < 0 {
		prefix = '-'
		in = -in
	}

	var fr rune = rune('0' + int(in/10))
	var lr rune = rune('0' + in%10)

	if addPrefix == true {
		return utility.RunesToString(prefix, fr, lr), nil
	}
	return utility.RunesToString(fr, lr), nil
}

// LocationOffsetString get an offset in HHMM format based on hours and
// minutes offset from UTC.
//
// For 5 hours and 30 minutes
//  +0530
func LocationOffsetString(d time.Duration) (string, error) {
	return locationOffsetString(d, false)
}

// LocationOffsetStringDelimited get an offset in HH:MM format based on hours
// and minutes offset from UTC.
//
// For -5 hours and 30 minutes
//  -05:30
func LocationOffsetStringDelimited(d time.Duration) (string, error) {
	return locationOffsetString(d, true)
}

func locationOffsetString(d time.Duration, delimited bool) (offset string, err error) {
	offsetH, offsetM := OffsetHM(d)

	buf := new(xfmt.Buffer)

	// -00:30 has zero hours so the sign has to come from the duration
	if d < 0 && offsetH == 0 {
		buf.C('-')
		h, _ := TwoDigitOffset(0, false)
		buf.S(h)
	} else {
		h, err := TwoDigitOffset(offsetH, true)
		if err != nil {
			return "", err
		}
		buf.S(h)
	}
	if delimited == true {
		buf.C(':')
	}
	m, err := TwoDigitOffset(offsetM, false)
	if err != nil {
		return
	}
	buf.S(m)

	offset = utility.BytesToString(buf.Bytes()...)

	return
}

// Fixed zones keyed by offset seconds. Offsets come in at most 15 minute
// increments in practice so the cache stays small.
var zoneCache sync.Map

// LocationFromOffset get a fixed location for the offset seconds from UTC.
// Zero offset gives time.UTC. Uses a cache of locations based on offset.
func LocationFromOffset(offsetSec int) *time.Location {
	if offsetSec == 0 {
		return time.UTC
	}
	if l, ok := zoneCache.Load(offsetSec); ok {
		return l.(*time.Location)
	}

	name, err := LocationOffsetStringDelimited(time.Duration(offsetSec) * time.Second)
	if err != nil {
		name = "FixedZone"
	}
	l, _ := zoneCache.LoadOrStore(offsetSec, time.FixedZone(name, offsetSec))

	return l.(*time.Location)
}
