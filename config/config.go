// Package config loads cataract.ParserOptions and importresolver.Options
// from a YAML document, validating field constraints with struct tags
// (grounded on rupor-github-fb2cng/config/cfg.go's decode-then-validate
// shape).
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jamescook/cataract/cataract"
	"github.com/jamescook/cataract/importresolver"
)

// ParserConfig mirrors cataract.ParserOptions' tunables in a YAML-friendly
// shape. Fields absent from the document keep their zero value; use
// defaultParserConfig as the decode target to get cataract's own defaults.
type ParserConfig struct {
	SelectorLists    bool   `yaml:"selector_lists"`
	RaiseParseErrors bool   `yaml:"raise_parse_errors"`
	AbsolutePaths    bool   `yaml:"absolute_paths"`
	BaseURI          string `yaml:"base_uri" validate:"omitempty,url"`
}

// ImportConfig mirrors importresolver.Options (spec.md §4.6).
type ImportConfig struct {
	MaxDepth        int      `yaml:"max_depth" validate:"min=1,max=100"`
	AllowedSchemes  []string `yaml:"allowed_schemes" validate:"dive,oneof=https http file"`
	Extensions      []string `yaml:"extensions"`
	TimeoutSeconds  int      `yaml:"timeout_seconds" validate:"min=1"`
	FollowRedirects bool     `yaml:"follow_redirects"`
	MaxRedirects    int      `yaml:"max_redirects" validate:"min=0"`
	BasePath        string   `yaml:"base_path"`
	BaseURI         string   `yaml:"base_uri" validate:"omitempty,url"`
}

func defaultParserConfig() ParserConfig {
	return ParserConfig{SelectorLists: true}
}

func defaultImportConfig() ImportConfig {
	return ImportConfig{
		MaxDepth:        5,
		AllowedSchemes:  []string{"https"},
		Extensions:      []string{"css"},
		TimeoutSeconds:  10,
		FollowRedirects: true,
		MaxRedirects:    10,
	}
}

func decodeKnownFields(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadParserConfig reads and validates a ParserConfig document from path,
// superimposed over cataract's own defaults.
func LoadParserConfig(path string) (ParserConfig, error) {
	cfg := defaultParserConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read parser config: %w", err)
	}
	if err := decodeKnownFields(data, &cfg); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate parser config: %w", err)
	}
	return cfg, nil
}

// LoadImportConfig reads and validates an ImportConfig document from path,
// superimposed over the resolver's own defaults (spec.md §4.6).
func LoadImportConfig(path string) (ImportConfig, error) {
	cfg := defaultImportConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read import config: %w", err)
	}
	if err := decodeKnownFields(data, &cfg); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate import config: %w", err)
	}
	return cfg, nil
}

// ParserOptions converts a ParserConfig into cataract functional options.
func (c ParserConfig) ParserOptions() []cataract.Option {
	opts := []cataract.Option{
		cataract.WithSelectorLists(c.SelectorLists),
		cataract.WithRaiseParseErrors(c.RaiseParseErrors),
	}
	if c.BaseURI != "" {
		opts = append(opts, cataract.WithBaseURI(c.BaseURI))
	}
	if c.AbsolutePaths {
		opts = append(opts, cataract.WithAbsolutePaths(true, &cataract.DefaultURIResolver{}))
	}
	return opts
}

// ImportOptions converts an ImportConfig into importresolver functional
// options.
func (c ImportConfig) ImportOptions() []importresolver.Option {
	return []importresolver.Option{
		importresolver.WithMaxDepth(c.MaxDepth),
		importresolver.WithAllowedSchemes(c.AllowedSchemes...),
		importresolver.WithExtensions(c.Extensions...),
		importresolver.WithTimeout(time.Duration(c.TimeoutSeconds) * time.Second),
		importresolver.WithFollowRedirects(c.FollowRedirects),
		importresolver.WithMaxRedirects(c.MaxRedirects),
		importresolver.WithBasePath(c.BasePath),
		importresolver.WithBaseURI(c.BaseURI),
	}
}
