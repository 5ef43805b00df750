package llm

import "sort"

// strictDefinition returns a copy of def in the form strict structured-output
// modes accept: every object closes its properties and requires all of them.
// def itself is left untouched, so local validation keeps its own rules.
func strictDefinition(def map[string]any) map[string]any {
	out, _ := strictValue(def).(map[string]any)
	return out
}

func strictValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val)+2)
		for k, child := range val {
			out[k] = strictValue(child)
		}
		if props, ok := out["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			sort.Strings(required)
			list := make([]any, len(required))
			for i, name := range required {
				list[i] = name
			}
			out["required"] = list
			out["additionalProperties"] = false
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = strictValue(child)
		}
		return out
	default:
		return v
	}
}
