package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karupanerura/bootjs-emulator/internal/expression"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// manifestDef is the decoded form of a script manifest.
type manifestDef struct {
	Name     string         `mapstructure:"name"`
	File     string         `mapstructure:"file"`
	Source   string         `mapstructure:"source"`
	Strict   bool           `mapstructure:"strict"`
	This     any            `mapstructure:"this"`
	Globals  map[string]any `mapstructure:"globals"`
	ReadOnly []string       `mapstructure:"readonly"`

	debug bool
}

func decodeManifest(raw map[string]any) (*manifestDef, error) {
	var def manifestDef
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &def,
	})
	if err != nil {
		return nil, fmt.Errorf("mapstructure.NewDecoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("mapstructure.Decode: %w", err)
	}
	return &def, nil
}

// compile resolves the script source, relative to baseDir for a file, and
// parses it together with the global expressions.
func (d *manifestDef) compile(baseDir string, opts ...Option) (*Script, error) {
	for _, opt := range opts {
		opt(d)
	}
	if (d.File == "") == (d.Source == "") {
		return nil, fmt.Errorf("exactly one of file or source is required")
	}

	name, source := d.Name, d.Source
	if d.File != "" {
		path := d.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("os.ReadFile(%q): %w", path, err)
		}
		source = string(b)
		if name == "" {
			name = filepath.Base(path)
		}
	}
	if name == "" {
		name = "(inline)"
	}

	globals := make(map[string]any, len(d.Globals))
	for key, v := range d.Globals {
		compiled, err := compileGlobal(v)
		if err != nil {
			return nil, fmt.Errorf("globals.%s: %w", key, err)
		}
		globals[key] = compiled
	}
	for _, key := range d.ReadOnly {
		if _, ok := globals[key]; !ok {
			return nil, fmt.Errorf("readonly: %s is not defined in globals", key)
		}
	}

	s := &Script{
		Name:     name,
		Strict:   d.Strict,
		debug:    d.debug,
		this:     d.This,
		globals:  globals,
		readOnly: lo.SliceToMap(d.ReadOnly, func(key string) (string, bool) { return key, true }),
	}
	if err := s.compile(source); err != nil {
		return nil, err
	}
	return s, nil
}

// compileGlobal turns every "${...}" string in v into a parsed expression.
func compileGlobal(v any) (any, error) {
	switch vv := v.(type) {
	case string:
		if !strings.HasPrefix(vv, "${") || !strings.HasSuffix(vv, "}") {
			return vv, nil
		}
		expr, err := expression.ParseExpr(vv[2 : len(vv)-1])
		if err != nil {
			return nil, fmt.Errorf("expression.ParseExpr(%q): %w", vv, err)
		}
		return expr, nil

	case map[string]any:
		m := make(map[string]any, len(vv))
		for key, elem := range vv {
			var err error
			if m[key], err = compileGlobal(elem); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		return m, nil

	case []any:
		s := make([]any, len(vv))
		for i, elem := range vv {
			var err error
			if s[i], err = compileGlobal(elem); err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return s, nil

	default:
		return v, nil
	}
}
