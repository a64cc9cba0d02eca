package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"newsbot/internal/filter"
	"newsbot/internal/model"
)

type sourcesFile struct {
	Sources []sourceEntry `yaml:"sources"`
}

type sourceEntry struct {
	Name      string   `yaml:"name"`
	URL       string   `yaml:"url"`
	Type      string   `yaml:"type"`
	Tag       string   `yaml:"tag"`
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	ExcludeRe []string `yaml:"exclude_re"`
}

// LoadSources reads the source list from a YAML file. Sources are
// immutable for the process lifetime; the file is read exactly once.
func LoadSources(path string) ([]model.Source, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var doc sourcesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	var sources []model.Source
	for i, entry := range doc.Sources {
		if entry.URL == "" {
			return nil, fmt.Errorf("source %d: url is required", i)
		}
		name := entry.Name
		if name == "" {
			name = entry.URL
		}
		srcType := model.SourceType(entry.Type)
		if srcType == "" {
			srcType = model.TypeFeed
		}
		if srcType != model.TypeFeed && srcType != model.TypeAggregator {
			return nil, fmt.Errorf("source %q: unknown type %q", name, entry.Type)
		}

		src := model.Source{
			Name:      name,
			URL:       entry.URL,
			Type:      srcType,
			Tag:       entry.Tag,
			Include:   entry.Include,
			Exclude:   entry.Exclude,
			ExcludeRe: entry.ExcludeRe,
		}
		if err := filter.ValidatePatterns(src); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
