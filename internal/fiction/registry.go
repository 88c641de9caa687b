// Package fiction holds the static registry of fiction universes and their
// properties, and resolves user-supplied property tokens to canonical IMDb IDs.
package fiction

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fictions/*.yaml
var embeddedDatasets embed.FS

var (
	// ErrUnknownFiction is returned when a fiction is not in the registry's allow-list.
	ErrUnknownFiction = errors.New("unknown fiction")

	// ErrUnknownProperty is returned when a token matches neither a property
	// name nor an IMDb ID within the fiction.
	ErrUnknownProperty = errors.New("unknown property")
)

// Property is one entry of a fiction's property list. Name and ImdbID form a
// bidirectional lookup pair: clients may refer to the property by either.
type Property struct {
	Name   string `yaml:"name" json:"name"`
	ImdbID string `yaml:"imdb_id" json:"imdbId"`
}

// Fiction is one universe dataset. Immutable after load.
type Fiction struct {
	Name       string     `yaml:"name" json:"name"`
	Properties []Property `yaml:"properties" json:"properties"`
}

// Registry maps fiction names to their datasets. It is populated once at
// startup and read-only afterward, so lookups need no locking. New fictions
// are added as dataset files, not code branches.
type Registry struct {
	fictions map[string]Fiction
}

// NewRegistry builds the registry from the embedded datasets, then overlays
// any *.yaml files found in datasetsDir. An empty datasetsDir loads only the
// embedded datasets.
func NewRegistry(datasetsDir string) (*Registry, error) {
	r := &Registry{fictions: make(map[string]Fiction)}

	if err := r.loadEmbedded(); err != nil {
		return nil, err
	}

	if datasetsDir != "" {
		if err := r.loadDir(datasetsDir); err != nil {
			return nil, err
		}
	}

	if len(r.fictions) == 0 {
		return nil, errors.New("no fiction datasets loaded")
	}

	slog.Info("Fiction registry loaded", "fictions", r.Names())
	return r, nil
}

func (r *Registry) loadEmbedded() error {
	entries, err := fs.ReadDir(embeddedDatasets, "fictions")
	if err != nil {
		return fmt.Errorf("failed to read embedded datasets: %w", err)
	}

	for _, entry := range entries {
		data, err := embeddedDatasets.ReadFile("fictions/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read embedded dataset %q: %w", entry.Name(), err)
		}
		if err := r.addDataset(entry.Name(), data); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read datasets dir %q: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read dataset %q: %w", name, err)
		}
		if err := r.addDataset(name, data); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) addDataset(source string, data []byte) error {
	var f Fiction
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse dataset %q: %w", source, err)
	}

	if f.Name == "" {
		return fmt.Errorf("dataset %q has no fiction name", source)
	}
	if len(f.Properties) == 0 {
		return fmt.Errorf("dataset %q has no properties", source)
	}
	for _, p := range f.Properties {
		if p.Name == "" || p.ImdbID == "" {
			return fmt.Errorf("dataset %q has a property missing name or imdb_id", source)
		}
	}

	// On-disk datasets override embedded ones of the same name.
	r.fictions[f.Name] = f
	return nil
}

// Load returns the dataset for a fiction. ok is false for fictions outside
// the allow-list; callers must reject the request before any store access.
func (r *Registry) Load(fictionName string) (Fiction, bool) {
	f, ok := r.fictions[fictionName]
	return f, ok
}

// Names returns the sorted allow-list of servable fictions.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fictions))
	for name := range r.fictions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a user-supplied property token to its canonical IMDb ID.
// The token matches case-sensitively against either the property's display
// name or its IMDb ID. Property lists are small and static, so a linear scan
// is all this needs.
func (r *Registry) Resolve(fictionName, token string) (string, error) {
	f, ok := r.Load(fictionName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFiction, fictionName)
	}

	for _, p := range f.Properties {
		if p.Name == token || p.ImdbID == token {
			return p.ImdbID, nil
		}
	}

	return "", fmt.Errorf("%w: %q in fiction %q", ErrUnknownProperty, token, fictionName)
}
