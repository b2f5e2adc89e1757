package loader

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evenl/dtgen/pkg/devicetree"
)

func decode(data []byte, origin string) (document, error) {
	var doc document
	if strings.HasSuffix(strings.ToLower(origin), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return document{}, err
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, err
	}
	return doc, nil
}

// coerceProperty maps a decoded scalar or list onto the PropertyValue tagged
// union. A leading "&" marks a string as a cross-reference symbol, following
// devicetree phandle notation. A property present with a null value is a
// boolean flag set true, matching devicetree flag semantics. Mixed-kind lists
// are rejected rather than truncated.
func coerceProperty(raw any) (devicetree.PropertyValue, error) {
	switch v := raw.(type) {
	case nil:
		return devicetree.BoolValue(true), nil
	case bool:
		return devicetree.BoolValue(v), nil
	case string:
		if symbol, ok := strings.CutPrefix(v, "&"); ok {
			if symbol == "" {
				return devicetree.Absent(), fmt.Errorf("empty reference symbol")
			}
			return devicetree.RefValue(symbol), nil
		}
		return devicetree.StringValue(v), nil
	case []any:
		return coerceList(v)
	default:
		n, err := coerceInt(raw)
		if err != nil {
			return devicetree.Absent(), err
		}
		return devicetree.IntValue(n), nil
	}
}

func coerceList(items []any) (devicetree.PropertyValue, error) {
	if len(items) == 0 {
		return devicetree.Absent(), fmt.Errorf("empty list has no kind")
	}

	if _, ok := items[0].(string); ok {
		strs := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return devicetree.Absent(), fmt.Errorf("mixed list: element %d is not a string", i)
			}
			strs = append(strs, s)
		}
		return devicetree.StringListValue(strs...), nil
	}

	ints := make([]int64, 0, len(items))
	for i, item := range items {
		n, err := coerceInt(item)
		if err != nil {
			return devicetree.Absent(), fmt.Errorf("mixed list: element %d: %w", i, err)
		}
		ints = append(ints, n)
	}
	return devicetree.IntListValue(ints...), nil
}

func coerceInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		// JSON numbers decode as float64; only integral values are valid.
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("non-integer number %v", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("unsupported property type %T", raw)
	}
}
