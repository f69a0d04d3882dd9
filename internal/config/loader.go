// Package config loads the segmenter configuration from a YAML file.
//
// Every field has a default, so an empty or missing file yields a working
// configuration. Connection secrets can be supplied through the environment
// instead of the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sales-segmentation/internal/domain"
	"sales-segmentation/internal/usecase"
)

// Environment variables overriding file values.
const (
	EnvArchiveDSN   = "ARCHIVE_DSN"
	EnvOdooURL      = "ODOO_URL"
	EnvOdooDB       = "ODOO_DB"
	EnvOdooUser     = "ODOO_USER"
	EnvOdooPassword = "ODOO_PASSWORD"
)

var tableName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Config is the root configuration document.
type Config struct {
	Routing    RoutingConfig    `yaml:"routing"`
	Channels   ChannelsConfig   `yaml:"channels"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Odoo       OdooConfig       `yaml:"odoo"`
	Server     ServerConfig     `yaml:"server"`
}

type RoutingConfig struct {
	CutoverYear int `yaml:"cutover_year"`
}

type ChannelsConfig struct {
	DigitalKeywords []string `yaml:"digital_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

type NormalizerConfig struct {
	LineOfBusinessAliases []AliasConfig `yaml:"line_of_business_aliases"`
}

type AliasConfig struct {
	Contains  string `yaml:"contains"`
	Canonical string `yaml:"canonical"`
}

// TierConfig is one threshold row. For recency a metric scores when it is <= Limit,
// for frequency and monetary when it is >= Limit.
type TierConfig struct {
	Limit float64 `yaml:"limit"`
	Score int     `yaml:"score"`
}

type SegmentCutConfig struct {
	MinSum  int    `yaml:"min_sum"`
	Segment string `yaml:"segment"`
}

// ScoringConfig overrides the default scoring table. Channels missing from
// Recency or Frequency keep their defaults.
type ScoringConfig struct {
	Recency   map[string][]TierConfig `yaml:"recency"`
	Frequency map[string][]TierConfig `yaml:"frequency"`
	Monetary  []TierConfig            `yaml:"monetary"`
	Segments  []SegmentCutConfig      `yaml:"segments"`
}

// ArchiveConfig describes the warehouse holding closed years.
type ArchiveConfig struct {
	DSN      string         `yaml:"dsn"`
	Table    string         `yaml:"table"`
	Tables   map[int]string `yaml:"tables"`
	PageSize int            `yaml:"page_size"`
	CSVPath  string         `yaml:"csv_path"`
}

// OdooConfig describes the live ERP.
type OdooConfig struct {
	URL       string        `yaml:"url"`
	DB        string        `yaml:"db"`
	User      string        `yaml:"user"`
	Password  string        `yaml:"password"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
	CSVPath   string        `yaml:"csv_path"`
}

type ServerConfig struct {
	Addr     string        `yaml:"addr"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Routing: RoutingConfig{CutoverYear: 2024},
		Channels: ChannelsConfig{
			DigitalKeywords: append([]string(nil), usecase.DefaultDigitalKeywords...),
			ExcludeKeywords: append([]string(nil), usecase.DefaultExcludeKeywords...),
		},
		Normalizer: NormalizerConfig{
			LineOfBusinessAliases: []AliasConfig{
				{Contains: "GENVET", Canonical: "TERCEROS"},
				{Contains: "MARCA BLANCA", Canonical: "TERCEROS"},
			},
		},
		Archive: ArchiveConfig{
			Table:    "sales_lines",
			Tables:   map[int]string{},
			PageSize: 1000,
		},
		Odoo: OdooConfig{
			BatchSize: 500,
			Timeout:   30 * time.Second,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			CacheTTL: 10 * time.Minute,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&c.Archive.DSN, EnvArchiveDSN)
	override(&c.Odoo.URL, EnvOdooURL)
	override(&c.Odoo.DB, EnvOdooDB)
	override(&c.Odoo.User, EnvOdooUser)
	override(&c.Odoo.Password, EnvOdooPassword)
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	var errs []error

	if c.Routing.CutoverYear < 1 {
		errs = append(errs, fmt.Errorf("routing.cutover_year must be positive, got %d", c.Routing.CutoverYear))
	}
	if c.Archive.PageSize < 1 {
		errs = append(errs, fmt.Errorf("archive.page_size must be positive, got %d", c.Archive.PageSize))
	}
	if !tableName.MatchString(c.Archive.Table) {
		errs = append(errs, fmt.Errorf("archive.table %q is not a valid table name", c.Archive.Table))
	}
	for year, t := range c.Archive.Tables {
		if !tableName.MatchString(t) {
			errs = append(errs, fmt.Errorf("archive.tables[%d] %q is not a valid table name", year, t))
		}
	}
	if c.Odoo.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("odoo.batch_size must be positive, got %d", c.Odoo.BatchSize))
	}
	if c.Server.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("server.cache_ttl must not be negative, got %s", c.Server.CacheTTL))
	}
	for _, a := range c.Normalizer.LineOfBusinessAliases {
		if strings.TrimSpace(a.Contains) == "" || strings.TrimSpace(a.Canonical) == "" {
			errs = append(errs, fmt.Errorf("normalizer alias needs both contains and canonical: %+v", a))
		}
	}

	table, err := c.ScoringTable()
	if err != nil {
		errs = append(errs, err)
	} else if err := table.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}

	return errors.Join(errs...)
}

// ScoringTable merges the scoring overrides into the default table.
func (c *Config) ScoringTable() (usecase.ScoringTable, error) {
	table := usecase.DefaultScoringTable()

	for name, tiers := range c.Scoring.Recency {
		ch, err := parseCategory(name)
		if err != nil {
			return usecase.ScoringTable{}, fmt.Errorf("scoring.recency: %w", err)
		}
		table.Recency[ch] = toTiers(tiers)
	}
	for name, tiers := range c.Scoring.Frequency {
		ch, err := parseCategory(name)
		if err != nil {
			return usecase.ScoringTable{}, fmt.Errorf("scoring.frequency: %w", err)
		}
		table.Frequency[ch] = toTiers(tiers)
	}
	if len(c.Scoring.Monetary) > 0 {
		table.Monetary = toTiers(c.Scoring.Monetary)
	}
	if len(c.Scoring.Segments) > 0 {
		cuts := make([]usecase.SegmentCut, 0, len(c.Scoring.Segments))
		for _, s := range c.Scoring.Segments {
			seg, err := parseSegment(s.Segment)
			if err != nil {
				return usecase.ScoringTable{}, fmt.Errorf("scoring.segments: %w", err)
			}
			cuts = append(cuts, usecase.SegmentCut{MinSum: s.MinSum, Segment: seg})
		}
		table.Segments = cuts
	}
	return table, nil
}

// Options converts the configuration into use case options.
func (c *Config) Options(verbose bool) (usecase.Options, error) {
	table, err := c.ScoringTable()
	if err != nil {
		return usecase.Options{}, err
	}

	aliases := make([]usecase.LineAlias, 0, len(c.Normalizer.LineOfBusinessAliases))
	for _, a := range c.Normalizer.LineOfBusinessAliases {
		aliases = append(aliases, usecase.LineAlias{Contains: a.Contains, Canonical: a.Canonical})
	}

	exclude := c.Channels.ExcludeKeywords
	if exclude == nil {
		exclude = []string{}
	}

	return usecase.Options{
		CutoverYear:     c.Routing.CutoverYear,
		DigitalKeywords: c.Channels.DigitalKeywords,
		LineAliases:     aliases,
		ExcludeKeywords: exclude,
		Scoring:         table,
		Verbose:         verbose,
	}, nil
}

func toTiers(in []TierConfig) []usecase.Tier {
	out := make([]usecase.Tier, 0, len(in))
	for _, t := range in {
		out = append(out, usecase.Tier{Limit: t.Limit, Score: t.Score})
	}
	return out
}

func parseCategory(s string) (domain.ChannelCategory, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range domain.Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel category %q", s)
}

func parseSegment(s string) (domain.Segment, error) {
	for _, seg := range domain.Segments {
		if strings.EqualFold(string(seg), strings.TrimSpace(s)) {
			return seg, nil
		}
	}
	return "", fmt.Errorf("unknown segment %q", s)
}
