package precisestamp

import (
	"regexp"
	"strings"
	"unicode"
)

// Anchored to the end of input so that date separators earlier in the string
// are never read as an offset sign.
var reZoneSuffix = regexp.MustCompile(`(?:Z|[+-](\d{2})(?::?(\d{2}))?)$`)

// ZoneSignal what the trailing characters of an input say about its timezone
type ZoneSignal struct {
	Found     bool
	Text      string // the literal suffix, "Z" or "+05:30" etc.
	OffsetSec int
}

// ZeroUTC did the signal say UTC. This is true for Z and for all-zero
// offsets such as +00, -00:00 or +0000.
func (z ZoneSignal) ZeroUTC() bool {
	return z.Found && z.OffsetSec == 0
}

// DetectZone test whether the trimmed text ends in Z, ±HH, ±HH:MM or ±HHMM.
// A numeric suffix only counts after a colon separated or compact ISO time,
// or when whitespace sets the sign apart. A date such as 2024-01-15 or a dash
// separated time such as 10-30-45 is not read as having an offset. Hours are
// not validated here.
func DetectZone(text string) (signal ZoneSignal) {
	text = strings.TrimSpace(text)

	loc := reZoneSuffix.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}
	start := loc[0]
	prefix := strings.TrimRightFunc(text[:start], unicode.IsSpace)
	if prefix == "" {
		return
	}
	// Z is never part of a date so it only has to follow a digit
	last := prefix[len(prefix)-1]
	if last < '0' || last > '9' {
		return
	}
	signApart := start > 0 && unicode.IsSpace(rune(text[start-1]))
	if text[start] != 'Z' && !signApart && !hasTimeOfDay(prefix) {
		return
	}

	signal.Found = true
	signal.Text = text[start:]
	if text[start] == 'Z' {
		return
	}

	hours := atoiDigits(text[loc[2]:loc[3]])
	minutes := 0
	if loc[4] >= 0 {
		minutes = atoiDigits(text[loc[4]:loc[5]])
	}
	signal.OffsetSec = hours*3600 + minutes*60
	if text[start] == '-' {
		signal.OffsetSec = -signal.OffsetSec
	}

	return
}

// Is there a time of day in s that a sign can't belong to: a colon, or a
// compact ISO time (a T between digits followed only by digits and a decimal
// point). Dashes in a time are not enough.
func hasTimeOfDay(s string) bool {
	if strings.ContainsRune(s, ':') {
		return true
	}
	i := strings.LastIndexAny(s, "Tt")
	if i < 1 || i == len(s)-1 || !isDigit(s[i-1]) {
		return false
	}
	for j := i + 1; j < len(s); j++ {
		if !isDigit(s[j]) && s[j] != '.' {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Only called on regexp-verified digit runs
func atoiDigits(s string) (v int) {
	for i := 0; i < len(s); i++ {
		v = v*10 + int(s[i]-'0')
	}
	return
}
