package script

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// decodeManifestJSON decodes a manifest document. Numbers are kept as
// json.Number while decoding and become float64 script numbers afterwards.
// A literal out of float64 range is an error.
func decodeManifestJSON(b []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("manifest must be a mapping but got %T", raw)
	}

	decoded, err := toScriptNumbers(m)
	if err != nil {
		return nil, err
	}
	return decoded.(map[string]any), nil
}

func toScriptNumbers(v any) (any, error) {
	switch vv := v.(type) {
	case map[string]any:
		for key, elem := range vv {
			converted, err := toScriptNumbers(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			vv[key] = converted
		}
		return vv, nil

	case []any:
		for i, elem := range vv {
			converted, err := toScriptNumbers(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			vv[i] = converted
		}
		return vv, nil

	case json.Number:
		f, err := vv.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s: %w", vv, err)
		}
		return f, nil

	default:
		return v, nil
	}
}
