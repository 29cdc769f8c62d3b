package precisestamp

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Culture the locale context a template is matched under. Names are matched
// case-insensitively.
type Culture struct {
	Name          string
	Tag           language.Tag
	Months        [12]string
	AbbrevMonths  [12]string
	Days          [7]string // Sunday first, as time.Weekday
	AbbrevDays    [7]string
	AM            string
	PM            string
	DateSeparator string
	TimeSeparator string
}

var englishMonths = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var englishAbbrevMonths = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var englishDays = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var englishAbbrevDays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Invariant the fixed reference culture. Database output is expected to be
// culture invariant so it is always tried first.
var Invariant = &Culture{
	Name:          "",
	Tag:           language.Und,
	Months:        englishMonths,
	AbbrevMonths:  englishAbbrevMonths,
	Days:          englishDays,
	AbbrevDays:    englishAbbrevDays,
	AM:            "AM",
	PM:            "PM",
	DateSeparator: "/",
	TimeSeparator: ":",
}

var cultures = []*Culture{
	{
		Name: "en-US", Tag: language.AmericanEnglish,
		Months: englishMonths, AbbrevMonths: englishAbbrevMonths,
		Days: englishDays, AbbrevDays: englishAbbrevDays,
		AM: "AM", PM: "PM", DateSeparator: "/", TimeSeparator: ":",
	},
	{
		Name: "en-GB", Tag: language.BritishEnglish,
		Months: englishMonths, AbbrevMonths: englishAbbrevMonths,
		Days: englishDays, AbbrevDays: englishAbbrevDays,
		AM: "am", PM: "pm", DateSeparator: "/", TimeSeparator: ":",
	},
	{
		Name: "de-DE", Tag: language.MustParse("de-DE"),
		Months: [12]string{
			"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember",
		},
		AbbrevMonths: [12]string{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
		Days:         [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		AbbrevDays:   [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		DateSeparator: ".", TimeSeparator: ":",
	},
	{
		Name: "fr-FR", Tag: language.MustParse("fr-FR"),
		Months: [12]string{
			"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre",
		},
		AbbrevMonths: [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		Days:         [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		AbbrevDays:   [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		DateSeparator: "/", TimeSeparator: ":",
	},
	{
		Name: "es-ES", Tag: language.MustParse("es-ES"),
		Months: [12]string{
			"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
		},
		AbbrevMonths: [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
		Days:         [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		AbbrevDays:   [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
		AM: "a. m.", PM: "p. m.", DateSeparator: "/", TimeSeparator: ":",
	},
	{
		Name: "it-IT", Tag: language.MustParse("it-IT"),
		Months: [12]string{
			"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
			"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre",
		},
		AbbrevMonths: [12]string{"gen", "feb", "mar", "apr", "mag", "giu", "lug", "ago", "set", "ott", "nov", "dic"},
		Days:         [7]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"},
		AbbrevDays:   [7]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"},
		DateSeparator: "/", TimeSeparator: ":",
	},
	{
		Name: "nl-NL", Tag: language.MustParse("nl-NL"),
		Months: [12]string{
			"januari", "februari", "maart", "april", "mei", "juni",
			"juli", "augustus", "september", "oktober", "november", "december",
		},
		AbbrevMonths: [12]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"},
		Days:         [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"},
		AbbrevDays:   [7]string{"zo", "ma", "di", "wo", "do", "vr", "za"},
		DateSeparator: "-", TimeSeparator: ":",
	},
	{
		Name: "pt-BR", Tag: language.BrazilianPortuguese,
		Months: [12]string{
			"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
		},
		AbbrevMonths: [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
		Days:         [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		AbbrevDays:   [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"},
		DateSeparator: "/", TimeSeparator: ":",
	},
}

// index 0 of the matcher is the invariant culture
var cultureMatcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(cultures)+1)
	tags = append(tags, language.English)
	for _, c := range cultures {
		tags = append(tags, c.Tag)
	}
	return language.NewMatcher(tags)
}()

// LookupCulture resolve a BCP 47 ("de-DE") or POSIX ("de_DE.UTF-8") locale
// name to the closest built-in culture. Unknown or empty names give
// Invariant.
func LookupCulture(name string) *Culture {
	name = strings.TrimSpace(name)
	// POSIX names carry an encoding and modifier the language package does
	// not understand.
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "_", "-")
	if name == "" || name == "C" || name == "POSIX" {
		return Invariant
	}

	tag, err := language.Parse(name)
	if err != nil {
		return Invariant
	}
	_, index, confidence := cultureMatcher.Match(tag)
	if index == 0 || confidence == language.No {
		return Invariant
	}

	return cultures[index-1]
}

// Cultures the built-in cultures other than Invariant
func Cultures() []*Culture {
	c := make([]*Culture, len(cultures))
	copy(c, cultures)
	return c
}

var (
	ambientOnce    sync.Once
	ambientCulture *Culture
)

// AmbientCulture the culture of the host environment from LC_ALL, LC_TIME or
// LANG, resolved once per process
func AmbientCulture() *Culture {
	ambientOnce.Do(func() {
		ambientCulture = Invariant
		for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
			if v := os.Getenv(key); v != "" {
				ambientCulture = LookupCulture(v)
				return
			}
		}
	})

	return ambientCulture
}

// month number for a name in the culture, full names first. 0 if not found.
// Returns the byte length of the name consumed.
func (c *Culture) matchMonth(s string, abbrev bool) (month int, n int) {
	names := c.Months
	if abbrev {
		names = c.AbbrevMonths
	}
	return matchName(s, names[:])
}

// day of week for a name, 1 for Sunday. 0 if not found.
func (c *Culture) matchDay(s string, abbrev bool) (day int, n int) {
	names := c.Days
	if abbrev {
		names = c.AbbrevDays
	}
	return matchName(s, names[:])
}

// Longest case-insensitive prefix match of s against names. Index is 1 based.
func matchName(s string, names []string) (index int, n int) {
	for i, name := range names {
		if name == "" || len(name) <= n || len(s) < len(name) {
			continue
		}
		if strings.EqualFold(s[:len(name)], name) {
			index, n = i+1, len(name)
		}
	}
	return
}
