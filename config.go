package precisestamp

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config parser settings as read from a YAML file
//
//	formats:
//	  - yyyy-MM-dd HH:mm:ss.ffffff
//	  - dd-MMM-yy hh.mm.ss.ffffff tt
//	default_offset: "+05:30"
//	culture: de-DE
type Config struct {
	Formats       []string `yaml:"formats"`
	DefaultOffset string   `yaml:"default_offset"`
	Culture       string   `yaml:"culture"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// Validate compiles the formats and the default offset
func (c *Config) Validate() error {
	if _, err := NewCatalog(c.Formats...); err != nil {
		return fmt.Errorf("invalid formats: %w", err)
	}
	if _, err := c.Offset(); err != nil {
		return err
	}
	return nil
}

// Offset the default offset as a duration. Empty means UTC.
func (c *Config) Offset() (time.Duration, error) {
	return ParseOffsetText(c.DefaultOffset)
}

// ParseOffsetText read an offset written as Z, UTC, ±HH, ±HHMM or ±HH:MM.
// Empty text is a zero offset.
func ParseOffsetText(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	switch strings.ToUpper(text) {
	case "", "Z", "UTC":
		return 0, nil
	}
	sec, n, ok := readOffset(text, 0, offsetModeHHMM)
	if !ok || n != len(text) {
		return 0, fmt.Errorf("invalid offset %q", text)
	}
	return time.Duration(sec) * time.Second, nil
}

// NewParserFromConfig build a parser from configuration. Options are applied
// after the configuration.
func NewParserFromConfig(c *Config, opts ...Option) (*Parser, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	offset, _ := c.Offset()

	configured := []Option{WithFormats(c.Formats...), WithDefaultOffset(offset)}
	if c.Culture != "" {
		configured = append(configured, WithCulture(LookupCulture(c.Culture)))
	}

	return NewParser(append(configured, opts...)...)
}
