package schema

// Field maps one canonical key to its synonyms in priority order.
// The canonical key is not implied; list it explicitly if it is accepted.
type Field struct {
	Canonical string
	Synonyms  []string
}

// SynonymTable is a fixed, ordered resolution table.
type SynonymTable []Field

// ISPSynonyms resolves the field names used across ISP offer sources.
var ISPSynonyms = SynonymTable{
	{Canonical: "name", Synonyms: []string{"name", "provider", "title"}},
	{Canonical: "logo", Synonyms: []string{"logo", "logoUrl", "icon"}},
	{Canonical: "avg", Synonyms: []string{"avg", "speed", "mbps", "bandwidth"}},
	{Canonical: "price", Synonyms: []string{"price", "cost", "monthly"}},
}

// Canonical returns the canonical keys in table order.
func (t SynonymTable) Canonical() []string {
	keys := make([]string, len(t))
	for i, f := range t {
		keys[i] = f.Canonical
	}
	return keys
}

// Normalize builds a record holding exactly the canonical keys of t. Each
// takes the value of its first synonym present in raw with a non-null value;
// when none is present the canonical key maps to "".
func (t SynonymTable) Normalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(t))
	for _, f := range t {
		out[f.Canonical] = ""
		for _, key := range f.Synonyms {
			if v, ok := raw[key]; ok && v != nil {
				out[f.Canonical] = v
				break
			}
		}
	}
	return out
}

// NormalizeAll applies Normalize to each record, preserving order.
func (t SynonymTable) NormalizeAll(raw []map[string]any) []map[string]any {
	out := make([]map[string]any, len(raw))
	for i, r := range raw {
		out[i] = t.Normalize(r)
	}
	return out
}
