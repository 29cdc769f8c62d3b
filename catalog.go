package precisestamp

import (
	"strings"
	"sync"
)

// Catalog an ordered sequence of templates. The first template that matches
// exactly wins, so more precise templates must come before less precise ones.
type Catalog []Template

// NewCatalog compile formats in order
func NewCatalog(formats ...string) (Catalog, error) {
	catalog := make(Catalog, 0, len(formats))
	for _, format := range formats {
		tp, err := Compile(format)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, tp)
	}
	return catalog, nil
}

// Formats the source strings of the templates
func (c Catalog) Formats() []string {
	formats := make([]string, len(c))
	for i, tp := range c {
		formats[i] = tp.source
	}
	return formats
}

// Built from the ISO, database and legacy forms seen in practice, most
// precise first and date only last.
var defaultFormats = func() []string {
	var formats []string

	// ISO 8601 with T and with a space. K takes Z, an offset or nothing.
	for _, sep := range []string{"'T'", " "} {
		for n := 7; n >= 1; n-- {
			formats = append(formats, "yyyy-MM-dd"+sep+"HH:mm:ss."+strings.Repeat("f", n)+"K")
		}
		formats = append(formats,
			"yyyy-MM-dd"+sep+"HH:mm:ssK",
			"yyyy-MM-dd"+sep+"HH:mmK",
		)
	}

	formats = append(formats,
		// Compact ISO
		"yyyyMMdd'T'HHmmss.fffffff'Z'",
		"yyyyMMdd'T'HHmmss.fff'Z'",
		"yyyyMMdd'T'HHmmss'Z'",
		"yyyyMMdd'T'HHmmss.fffffffzzz",
		"yyyyMMdd'T'HHmmsszzz",
		"yyyyMMdd'T'HHmmss",

		// SQL Server
		"MM/dd/yyyy HH:mm:ss.fffffff",
		"MM/dd/yyyy HH:mm:ss.fff",
		"MM/dd/yyyy HH:mm:ss",
		"MMM dd yyyy hh:mm:ss:ffftt",
		"MMM d yyyy h:mmtt",
		"dd MMM yyyy HH:mm:ss:fff",

		// Oracle
		"dd-MMM-yy hh.mm.ss.fffffff tt",
		"dd-MMM-yy hh.mm.ss.ffffff tt",
		"dd-MMM-yy hh.mm.ss.fff tt",
		"dd-MMM-yy hh.mm.ss tt",
		"dd-MMM-yyyy HH:mm:ss",
		"dd-MMM-yyyy hh:mm:ss tt",

		// MySQL and SQLite variants
		"yyyy/MM/dd HH:mm:ss.ffffff",
		"yyyy/MM/dd HH:mm:ss",
		"yyyy.MM.dd HH:mm:ss",

		// Compact numeric
		"yyyyMMddHHmmssfffffff",
		"yyyyMMddHHmmssfff",
		"yyyyMMddHHmmss",

		// Date only
		"yyyy-MM-dd",
		"yyyy/MM/dd",
		"yyyyMMdd",
		"MM/dd/yyyy",
		"M/d/yyyy",
		"dd-MMM-yyyy",
		"dd-MMM-yy",
		"MMMM d, yyyy",
	)

	return formats
}()

var defaultCatalog = sync.OnceValue(func() Catalog {
	catalog, err := NewCatalog(defaultFormats...)
	if err != nil {
		panic(err)
	}
	return catalog
})

// DefaultFormats a copy of the built-in template strings. Changing the copy
// does not affect parsing.
func DefaultFormats() []string {
	formats := make([]string, len(defaultFormats))
	copy(formats, defaultFormats)
	return formats
}

// DefaultCatalog a copy of the built-in compiled catalog
func DefaultCatalog() Catalog {
	shared := defaultCatalog()
	catalog := make(Catalog, len(shared))
	copy(catalog, shared)
	return catalog
}

// Compiled catalogs for per-call format lists, keyed by the joined formats.
// Callers usually pass a handful of fixed lists. The cache is dropped once it
// holds maxCachedCatalogs lists so lists built on the fly can't grow it
// without bound.
const maxCachedCatalogs = 64

var (
	catalogMu    sync.Mutex
	catalogCache = make(map[string]Catalog)
)

func cachedCatalog(formats []string) (Catalog, error) {
	if len(formats) == 0 {
		return defaultCatalog(), nil
	}
	key := strings.Join(formats, "\x00")

	catalogMu.Lock()
	catalog, ok := catalogCache[key]
	catalogMu.Unlock()
	if ok {
		return catalog, nil
	}

	catalog, err := NewCatalog(formats...)
	if err != nil {
		return nil, err
	}

	catalogMu.Lock()
	if len(catalogCache) >= maxCachedCatalogs {
		catalogCache = make(map[string]Catalog)
	}
	catalogCache[key] = catalog
	catalogMu.Unlock()

	return catalog, nil
}
