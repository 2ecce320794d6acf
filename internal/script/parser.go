package script

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Option overrides a manifest setting at load time.
type Option func(*manifestDef)

// WithStrict loads the script as strict mode code whatever the manifest says.
func WithStrict() Option {
	return func(d *manifestDef) {
		d.Strict = true
	}
}

// WithDebugOutput dumps every parsed program to stderr.
func WithDebugOutput() Option {
	return func(d *manifestDef) {
		d.debug = true
	}
}

// Load reads a script manifest (.yaml, .yml or .json) or a bare script
// (.js). Files named by a manifest resolve relative to the manifest.
func Load(filePath string, opts ...Option) (*Script, error) {
	if filepath.Ext(filePath) == ".js" {
		def := manifestDef{File: filepath.Base(filePath)}
		return def.compile(filepath.Dir(filePath), opts...)
	}

	var parseManifest func(io.Reader, string, ...Option) (*Script, error)
	switch filepath.Ext(filePath) {
	case ".json":
		parseManifest = ParseManifestJSON
	case ".yaml", ".yml":
		parseManifest = ParseManifestYAML
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	s, err := parseManifest(f, filepath.Dir(filePath), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return s, nil
}

func ParseManifestYAML(r io.Reader, baseDir string, opts ...Option) (*Script, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("yaml.YAMLToJSON: %w", err)
	}

	return parseManifestJSONBytes(jsonBytes, baseDir, opts)
}

func ParseManifestJSON(r io.Reader, baseDir string, opts ...Option) (*Script, error) {
	jsonBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}
	return parseManifestJSONBytes(jsonBytes, baseDir, opts)
}

func parseManifestJSONBytes(b []byte, baseDir string, opts []Option) (*Script, error) {
	raw, err := decodeManifestJSON(b)
	if err != nil {
		return nil, err
	}

	def, err := decodeManifest(raw)
	if err != nil {
		return nil, err
	}
	return def.compile(baseDir, opts...)
}
