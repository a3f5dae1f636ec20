package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a configuration file.
type Format int

// Supported file formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf picks the format from a file extension. Anything that is not
// YAML is read as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// SearchPaths lists the files Load tries when no explicit path is given.
func SearchPaths() []string {
	cwd, _ := os.Getwd()

	paths := []string{
		filepath.Join(cwd, "ramgen.json"),
		filepath.Join(cwd, "ramgen.yaml"),
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ramgen", "config.json"))
	}

	return paths
}

// Load finds and loads the configuration file.
// Search order:
//  1. path, when not empty (it must exist)
//  2. ./ramgen.json
//  3. ./ramgen.yaml
//  4. ~/.config/ramgen/config.json
//
// It returns Default and an empty source when no file is found.
func Load(path string) (Config, string, error) {
	if path != "" {
		c, err := LoadFile(path)
		return c, path, err
	}

	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}

		c, err := LoadFile(p)

		return c, p, err
	}

	return Default(), "", nil
}

// LoadFile reads, schema-checks and validates one configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	c, err := Decode(data, FormatOf(path))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return c, nil
}

// Decode parses a configuration document. YAML documents are converted to
// JSON first so both formats go through the same schema.
func Decode(data []byte, format Format) (Config, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return Config{}, err
		}

		data = converted
	}

	if err := ValidateDocument(data); err != nil {
		return Config{}, err
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing YAML: %w", ErrInvalidConfig, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: converting YAML: %w", ErrInvalidConfig, err)
	}

	return out, nil
}

// Encode renders the configuration in the given format.
func (c Config) Encode(format Format) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if format == FormatYAML {
		return yaml.Marshal(c)
	}

	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(out, '\n'), nil
}

// Save writes the configuration to path, choosing the format by extension.
// An existing file is only replaced when overwrite is set.
func (c Config) Save(path string, overwrite bool) error {
	data, err := c.Encode(FormatOf(path))
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s already exists", path)
	}

	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
