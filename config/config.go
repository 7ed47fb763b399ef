package config

import (
	"fmt"

	"pageblock/rules"
)

// Config represents the top-level configuration structure.
type Config struct {
	Engine  EngineConfig   `yaml:"engine"`
	Sources []SourceConfig `yaml:"sources"`
	Custom  CustomConfig   `yaml:"custom"`
	DOM     DOMConfig      `yaml:"dom"`
}

// EngineConfig holds engine-wide settings.
type EngineConfig struct {
	Enabled    bool   `yaml:"enabled"`
	DataDir    string `yaml:"data_dir"`    // cache directory for fetched lists
	OutputPath string `yaml:"output_path"` // compiled directive JSON destination
}

// SourceConfig declares one remote rule source and its reserved id range.
type SourceConfig struct {
	Name            string        `yaml:"name"`
	URL             string        `yaml:"url,omitempty"`
	Format          string        `yaml:"format"` // "filter-list" or "json"
	IDRange         rules.IDRange `yaml:"id_range"`
	IntervalMinutes int           `yaml:"interval_minutes"` // 0 = manual only
}

// CustomConfig declares the user-pattern source.
type CustomConfig struct {
	StorePath string        `yaml:"store_path"`
	IDRange   rules.IDRange `yaml:"id_range"`
}

// DOMConfig carries enforcement-side knobs. Zero values mean defaults.
type DOMConfig struct {
	PageHostname string `yaml:"page_hostname,omitempty"` // for the debug page run
}

// Default returns the stock configuration: bundled defaults, EasyList and
// the custom-pattern store, each in a disjoint id block.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Enabled:    true,
			DataDir:    "data",
			OutputPath: "directives.json",
		},
		Sources: []SourceConfig{
			{
				Name:            "default",
				Format:          "json",
				IDRange:         rules.IDRange{Start: 1, End: 999},
				IntervalMinutes: 1440,
			},
			{
				Name:            "easylist",
				URL:             "https://easylist.to/easylist/easylist.txt",
				Format:          "filter-list",
				IDRange:         rules.IDRange{Start: 1000, End: 29999},
				IntervalMinutes: 4320,
			},
		},
		Custom: CustomConfig{
			StorePath: "custom_patterns.json",
			IDRange:   rules.IDRange{Start: 30000, End: 34999},
		},
	}
}

// Validate rejects configurations with overlapping id ranges or empty
// ranges, which would break the sources' identifier partitioning.
func (c *Config) Validate() error {
	ranges := make([]rules.IDRange, 0, len(c.Sources)+1)
	names := make([]string, 0, len(c.Sources)+1)

	for _, src := range c.Sources {
		ranges = append(ranges, src.IDRange)
		names = append(names, src.Name)
	}
	ranges = append(ranges, c.Custom.IDRange)
	names = append(names, "custom")

	for i, r := range ranges {
		if r.Width() == 0 {
			return fmt.Errorf("source %s has an empty id range", names[i])
		}
		for j := i + 1; j < len(ranges); j++ {
			if r.Overlaps(ranges[j]) {
				return fmt.Errorf("id ranges of %s and %s overlap", names[i], names[j])
			}
		}
	}
	return nil
}
