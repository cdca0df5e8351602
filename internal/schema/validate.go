package schema

// Schema declares the keys a record kind must carry.
type Schema struct {
	Kind     string
	Required []string
}

// Declared record schemas.
var (
	Snapshot  = Schema{Kind: "snapshot", Required: []string{"value", "label"}}
	Fact      = Schema{Kind: "fact", Required: []string{"title", "text"}}
	ISP       = Schema{Kind: "isp", Required: []string{"name", "avg", "price"}}
	Milestone = Schema{Kind: "milestone", Required: []string{"year", "title", "text"}}
	Stat      = Schema{Kind: "stat", Required: []string{"label", "value"}}
	ShareType = Schema{Kind: "type", Required: []string{"name", "share"}}
	Speed     = Schema{Kind: "speed", Required: []string{"name", "mbps"}}
	Point     = Schema{Kind: "point", Required: []string{"year", "value"}}
)

// Ensure runs EnsureShape with the schema's required keys.
func (s Schema) Ensure(collection any, source string) ([]map[string]any, error) {
	return EnsureShape(collection, s.Required, source)
}

// EnsureShape checks that collection is a sequence whose elements all carry
// the required keys. It stops at the first offending element and reports
// every key that element lacks. Values are never inspected: a key mapped to
// null or "" counts as present. Elements that are not objects lack every key.
func EnsureShape(collection any, required []string, source string) ([]map[string]any, error) {
	items, ok := asSlice(collection)
	if !ok {
		return nil, Invalid(source, "expected array")
	}
	records := make([]map[string]any, len(items))
	for i, item := range items {
		rec, _ := item.(map[string]any)
		var missing []string
		for _, key := range required {
			if _, ok := rec[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return nil, &ShapeError{Source: source, Index: i, Missing: missing}
		}
		records[i] = rec
	}
	return records, nil
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}
