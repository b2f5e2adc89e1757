package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evenl/dtgen/pkg/catalog"
	"github.com/evenl/dtgen/pkg/devicetree"
)

// formatValue converts a bound value into its textual representation for the
// generated C source. Integers honour the schema's format hint, strings pass
// through verbatim, lists become brace-enclosed literals, references emit
// their symbol.
func formatValue(v devicetree.PropertyValue, format catalog.Format) (string, error) {
	switch v.Kind {
	case devicetree.PropertyKindInt:
		return formatInt(v.Int, format), nil
	case devicetree.PropertyKindIntList:
		parts := make([]string, 0, len(v.Ints))
		for _, n := range v.Ints {
			parts = append(parts, formatInt(n, format))
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case devicetree.PropertyKindString:
		return v.Str, nil
	case devicetree.PropertyKindStringList:
		parts := make([]string, 0, len(v.Strs))
		for _, s := range v.Strs {
			parts = append(parts, strconv.Quote(s))
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case devicetree.PropertyKindBool:
		if v.Flag {
			return "1", nil
		}
		return "0", nil
	case devicetree.PropertyKindRef:
		return v.Ref, nil
	default:
		return "", fmt.Errorf("value of kind %q has no textual form", v.Kind)
	}
}

func formatInt(n int64, format catalog.Format) string {
	if format == catalog.FormatHex {
		if n < 0 {
			return fmt.Sprintf("-0x%x", -n)
		}
		return fmt.Sprintf("0x%x", n)
	}
	return strconv.FormatInt(n, 10)
}
