package precisestamp

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cascade stages, reported in debug logs
const (
	stageNumeric  = "numeric"
	stageTemplate = "template"
	stageDotted   = "dotted-time"
	stageGeneric  = "generic"
)

// Parser resolves timestamps with its own catalog, default offset and
// culture. Configuration is replaced wholesale by its setters. A Parser may
// be used for parsing from many goroutines, but writes to its configuration
// must be serialized by the owner.
type Parser struct {
	catalog       Catalog // nil means the default catalog
	defaultOffset time.Duration
	culture       *Culture // nil means the ambient culture
	logger        *zap.Logger
}

// Option configures a Parser
type Option func(*Parser) error

// WithFormats use formats instead of the default catalog. An empty list
// keeps the defaults.
func WithFormats(formats ...string) Option {
	return func(p *Parser) error {
		return p.SetFormats(formats)
	}
}

// WithDefaultOffset offset applied by the offset preserving resolver when
// the text has no timezone
func WithDefaultOffset(offset time.Duration) Option {
	return func(p *Parser) error {
		return p.SetDefaultOffset(offset)
	}
}

// WithCulture culture for the second matching pass, in place of the ambient
// culture
func WithCulture(c *Culture) Option {
	return func(p *Parser) error {
		p.culture = c
		return nil
	}
}

// WithLogger logger for cascade tracing at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewParser a parser with the default catalog, a zero default offset and the
// ambient culture unless options say otherwise
func NewParser(opts ...Option) (*Parser, error) {
	p := &Parser{logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SetFormats replace the catalog. An empty list reverts to the defaults. On
// error the catalog is left as it was.
func (p *Parser) SetFormats(formats []string) error {
	if len(formats) == 0 {
		p.catalog = nil
		return nil
	}
	catalog, err := NewCatalog(formats...)
	if err != nil {
		return err
	}
	p.catalog = catalog

	return nil
}

// Formats a copy of the active template strings
func (p *Parser) Formats() []string {
	return p.activeCatalog().Formats()
}

// SetDefaultOffset offset used by the offset preserving resolver when no
// timezone is present. Must be a whole number of minutes.
func (p *Parser) SetDefaultOffset(offset time.Duration) error {
	if offset%time.Minute != 0 {
		return ErrOffsetGranularity
	}
	p.defaultOffset = offset
	return nil
}

// DefaultOffset the configured default offset
func (p *Parser) DefaultOffset() time.Duration {
	return p.defaultOffset
}

// Culture the culture used for the second matching pass
func (p *Parser) Culture() *Culture {
	if p.culture == nil {
		return AmbientCulture()
	}
	return p.culture
}

// ResetToDefaults revert to the default catalog and a zero default offset
func (p *Parser) ResetToDefaults() {
	p.catalog = nil
	p.defaultOffset = 0
}

func (p *Parser) activeCatalog() Catalog {
	if len(p.catalog) == 0 {
		return defaultCatalog()
	}
	return p.catalog
}

func (p *Parser) log() *zap.Logger {
	if p.logger == nil {
		return zap.NewNop()
	}
	return p.logger
}

// Invariant first, then the parser's culture when it differs
func (p *Parser) passes() []*Culture {
	c := p.Culture()
	if c == nil || c == Invariant {
		return []*Culture{Invariant}
	}
	return []*Culture{Invariant, c}
}

// outcome the tagged result of one run of the cascade. Both resolvers and
// both the raising and the boolean entry points are built on it.
type outcome struct {
	m      match
	signal ZoneSignal
	stage  string
	err    error
}

func (o outcome) ok() bool {
	return o.err == nil
}

// resolve run the cascade: numeric classification, timezone signal,
// templates under each culture, dotted time normalization and the generic
// fallback under each culture.
func (p *Parser) resolve(text string, catalog Catalog) (o outcome) {
	logger := p.log()
	text = strings.TrimSpace(text)
	if text == "" {
		o.err = ErrNoInput
		return
	}

	if m, class, ok := resolveNumeric(text); ok {
		logger.Debug("resolved numeric input",
			zap.String("input", text),
			zap.String("stage", stageNumeric),
			zap.Stringer("class", class),
		)
		return outcome{m: m, stage: stageNumeric}
	}

	o.signal = DetectZone(text)
	passes := p.passes()

	for _, c := range passes {
		for _, tp := range catalog {
			if m, ok := tp.match(text, c); ok {
				logger.Debug("matched template",
					zap.String("input", text),
					zap.String("stage", stageTemplate),
					zap.String("template", tp.source),
					zap.String("culture", c.Name),
					zap.Stringer("tag", m.tag),
				)
				o.m, o.stage = m, stageTemplate
				return
			}
		}
	}

	if normalized, changed := normalizeDottedTime(text); changed {
		if m, ok := genericParse(normalized, Invariant); ok {
			logger.Debug("parsed after dotted time normalization",
				zap.String("input", text),
				zap.String("normalized", normalized),
				zap.String("stage", stageDotted),
			)
			o.m, o.stage = m, stageDotted
			return
		}
	}

	for _, c := range passes {
		if m, ok := genericParse(text, c); ok {
			logger.Debug("parsed with generic fallback",
				zap.String("input", text),
				zap.String("stage", stageGeneric),
				zap.String("layout", m.source),
				zap.String("culture", c.Name),
			)
			o.m, o.stage = m, stageGeneric
			return
		}
	}

	logger.Debug("could not parse",
		zap.String("input", text),
		zap.Int("templates", len(catalog)),
	)
	o.err = &FormatError{Input: text, Templates: len(catalog)}

	return
}

// safeResolve resolve for the boolean entry points. Every failure, a panic
// included, becomes a failed outcome.
func (p *Parser) safeResolve(text string, catalog Catalog) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.log().Error("recovered from panic while parsing", zap.String("input", text), zap.Any("panic", r))
			o = outcome{err: &FormatError{Input: text, Templates: len(catalog)}}
		}
	}()
	return p.resolve(text, catalog)
}

func (p *Parser) naive(o outcome) Timestamp {
	return reconcileNaive(naiveOf(o.m), o.signal)
}

// Parse resolve text to a naive timestamp using the parser's catalog
func (p *Parser) Parse(text string) (Timestamp, error) {
	o := p.resolve(text, p.activeCatalog())
	if !o.ok() {
		return Timestamp{}, o.err
	}
	return p.naive(o), nil
}

// TryParse like Parse but reports failure as false with a zero Timestamp
func (p *Parser) TryParse(text string) (Timestamp, bool) {
	o := p.safeResolve(text, p.activeCatalog())
	if !o.ok() {
		return Timestamp{}, false
	}
	return p.naive(o), true
}

// ParseOffset resolve text to a timestamp bound to the offset in the text or,
// without one, the parser's default offset
func (p *Parser) ParseOffset(text string) (OffsetTimestamp, error) {
	o := p.resolve(text, p.activeCatalog())
	if !o.ok() {
		return OffsetTimestamp{}, o.err
	}
	return reconcileOffset(o.m, o.signal, p.defaultOffset), nil
}

// TryParseOffset like ParseOffset but reports failure as false with a zero
// OffsetTimestamp
func (p *Parser) TryParseOffset(text string) (OffsetTimestamp, bool) {
	o := p.safeResolve(text, p.activeCatalog())
	if !o.ok() {
		return OffsetTimestamp{}, false
	}
	return reconcileOffset(o.m, o.signal, p.defaultOffset), true
}

// The parser behind the package level functions. It is never reconfigured.
var defaultParser = &Parser{logger: zap.NewNop()}

// Parse resolve text with the default catalog
func Parse(text string) (Timestamp, error) {
	return defaultParser.Parse(text)
}

// ParseWith resolve text with formats in place of the default catalog. Empty
// formats mean the default catalog.
func ParseWith(text string, formats []string) (Timestamp, error) {
	catalog, err := cachedCatalog(formats)
	if err != nil {
		return Timestamp{}, err
	}
	o := defaultParser.resolve(text, catalog)
	if !o.ok() {
		return Timestamp{}, o.err
	}
	return defaultParser.naive(o), nil
}

// TryParse resolve text with the default catalog, false on any failure
func TryParse(text string) (Timestamp, bool) {
	return defaultParser.TryParse(text)
}

// ParseOffset resolve text preserving its offset. formats replace the default
// catalog when not empty; offset applies when the text has no timezone.
func ParseOffset(text string, formats []string, offset time.Duration) (OffsetTimestamp, error) {
	if offset%time.Minute != 0 {
		return OffsetTimestamp{}, ErrOffsetGranularity
	}
	catalog, err := cachedCatalog(formats)
	if err != nil {
		return OffsetTimestamp{}, err
	}
	o := defaultParser.resolve(text, catalog)
	if !o.ok() {
		return OffsetTimestamp{}, o.err
	}
	return reconcileOffset(o.m, o.signal, offset), nil
}

// TryParseOffset resolve text with the default catalog and a UTC default
// offset, false on any failure
func TryParseOffset(text string) (OffsetTimestamp, bool) {
	return defaultParser.TryParseOffset(text)
}
