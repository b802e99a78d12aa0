package boundprovider

import (
	"fmt"
	"strconv"
	"strings"
)

// renderTemplate substitutes every "{name}" placeholder in s with the
// string form of vars[name]. A placeholder with no matching variable is
// left untouched, which surfaces as an obviously malformed URL rather than
// silently dropping it.
func renderTemplate(s string, vars map[string]any) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '{' {
			if end := strings.IndexByte(s[i:], '}'); end != -1 {
				name := s[i+1 : i+end]
				if v, ok := vars[name]; ok {
					b.WriteString(stringify(v))
					i += end + 1
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// extractPath walks a dot-separated path ("data.user.id") through nested
// JSON objects (map[string]any), returning the value found and whether the
// full path resolved. A segment cannot index into an array, so an array or
// scalar part-way along the path reports not found.
func extractPath(value any, path string) (any, bool) {
	if path == "" {
		return value, true
	}
	for _, segment := range strings.Split(path, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return value, true
}
