package defaults

import (
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// NewJSON returns the JSON object. Object members are serialized in key
// order.
func NewJSON() *value.BaseObject {
	o := value.NewBaseObject(nil, "JSON", nil)
	defineFunctions(o,
		MustNewFunction("parse", parseJSON),
		MustNewFunction("stringify", stringifyJSON),
	)
	return o
}

func parseJSON(text string) (value.Value, error) {
	var ret any
	if err := json.Unmarshal([]byte(text), &ret); err != nil {
		return nil, &types.Error{
			Tag: types.SyntaxErrorTag,
			Err: err,
		}
	}
	return value.FromGo(ret)
}

func stringifyJSON(v, _, space value.Value) (value.Value, error) {
	data, ok, err := toJSONValue(v, map[value.Object]bool{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return value.Undefined, nil
	}

	indent, err := jsonIndent(space)
	if err != nil {
		return nil, err
	}

	var ret []byte
	if indent == "" {
		ret, err = json.MarshalWithOption(data, json.DisableHTMLEscape())
	} else {
		ret, err = json.MarshalIndentWithOption(data, "", indent, json.DisableHTMLEscape())
	}
	if err != nil {
		return nil, &types.Error{
			Tag: types.TypeErrorTag,
			Err: err,
		}
	}
	return value.NewString(string(ret)), nil
}

// jsonIndent interprets the space argument of JSON.stringify.
func jsonIndent(space value.Value) (string, error) {
	if w, ok := space.(*value.PrimitiveWrapper); ok {
		space = w.PrimitiveValue()
	}

	switch space := space.(type) {
	case value.Number:
		n, err := value.ToInteger(space)
		if err != nil {
			return "", err
		}
		return strings.Repeat(" ", int(math.Max(0, math.Min(10, float64(n))))), nil

	case value.String:
		s := space.String()
		if space.Len() > 10 {
			s = space.Slice(0, 10).String()
		}
		return s, nil

	default:
		return "", nil
	}
}

// toJSONValue converts v into a tree go-json can encode. ok is false when v
// has no JSON representation.
func toJSONValue(v value.Value, stack map[value.Object]bool) (ret any, ok bool, err error) {
	if w, isWrapper := v.(*value.PrimitiveWrapper); isWrapper {
		v = w.PrimitiveValue()
	}

	switch v := v.(type) {
	case value.Boolean:
		return bool(v), true, nil

	case value.Number:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, true, nil
		}
		return json.RawMessage(value.NumberToString(v).String()), true, nil

	case value.String:
		return v.String(), true, nil

	case value.Callable:
		return nil, false, nil

	case value.Object:
		if stack[v] {
			return nil, false, types.NewTypeError("converting circular structure to JSON")
		}
		stack[v] = true
		defer delete(stack, v)

		if v.Class() == "Array" {
			return toJSONArray(v, stack)
		}
		return toJSONObject(v, stack)

	default:
		if value.IsNull(v) {
			return nil, true, nil
		}
		return nil, false, nil
	}
}

func toJSONArray(o value.Object, stack map[value.Object]bool) (any, bool, error) {
	length, err := o.Get(lengthName)
	if err != nil {
		return nil, false, err
	}
	n, err := value.ToUint32(length)
	if err != nil {
		return nil, false, err
	}

	elems := make([]any, n)
	for i := range elems {
		elem, err := o.Get(value.NumberToString(value.Number(i)))
		if err != nil {
			return nil, false, err
		}
		if elems[i], _, err = toJSONValue(elem, stack); err != nil {
			return nil, false, err
		}
	}
	return elems, true, nil
}

func toJSONObject(o value.Object, stack map[value.Object]bool) (any, bool, error) {
	members := map[string]any{}
	for _, key := range o.OwnKeys() {
		desc := o.GetOwnProperty(key)
		if desc == nil || !desc.IsEnumerable() {
			continue
		}

		member, err := o.Get(key)
		if err != nil {
			return nil, false, err
		}
		converted, ok, err := toJSONValue(member, stack)
		if err != nil {
			return nil, false, err
		}
		if ok {
			members[key.String()] = converted
		}
	}
	return members, true, nil
}
