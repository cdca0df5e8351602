package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// strictDocs hold JSON Schemas for the typed checks the structural pass skips.
// They back diagnostics only; a strict violation is a warning, never a failure.
var strictDocs = map[string]string{
	Snapshot.Kind: `{"type":"object","properties":{
		"value":{"type":["string","number"],"minLength":1},
		"label":{"type":"string","minLength":1},
		"caption":{"type":"string"}}}`,
	Fact.Kind: `{"type":"object","properties":{
		"title":{"type":"string"},
		"text":{"type":"string"}}}`,
	ISP.Kind: `{"type":"object","properties":{
		"name":{"type":"string","minLength":1},
		"logo":{"type":"string"},
		"avg":{"type":["string","number"]},
		"price":{"type":["string","number"]}}}`,
	Milestone.Kind: `{"type":"object","properties":{
		"year":{"anyOf":[{"type":"integer"},{"type":"string","pattern":"^[0-9]{4}$"}]},
		"title":{"type":"string"},
		"text":{"type":"string"}}}`,
	Stat.Kind: `{"type":"object","properties":{
		"label":{"type":"string"},
		"value":{"type":["string","number"]},
		"caption":{"type":"string"}}}`,
	ShareType.Kind: `{"type":"object","properties":{
		"name":{"type":"string"},
		"share":{"type":"number","minimum":0,"maximum":100}}}`,
	Speed.Kind: `{"type":"object","properties":{
		"name":{"type":"string"},
		"mbps":{"type":"number","minimum":0}}}`,
	Point.Kind: `{"type":"object","properties":{
		"year":{"type":["integer","string"]},
		"value":{"type":"number"}}}`,
}

var (
	strictOnce     sync.Once
	strictCompiled map[string]*jsonschema.Schema
	strictErr      error
)

func compileStrict() {
	compiler := jsonschema.NewCompiler()
	compiled := make(map[string]*jsonschema.Schema, len(strictDocs))
	kinds := make([]string, 0, len(strictDocs))
	for kind := range strictDocs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		url := "mem://schema/" + kind + ".json"
		if err := compiler.AddResource(url, strings.NewReader(strictDocs[kind])); err != nil {
			strictErr = fmt.Errorf("schema: add %s: %w", kind, err)
			return
		}
		s, err := compiler.Compile(url)
		if err != nil {
			strictErr = fmt.Errorf("schema: compile %s: %w", kind, err)
			return
		}
		compiled[kind] = s
	}
	strictCompiled = compiled
}

// Strict checks value types of already shape-checked records against the
// kind's JSON Schema and returns one message per offending leaf, tagged
// with source and index. Kinds without a strict schema yield no warnings.
func (s Schema) Strict(records []map[string]any, source string) ([]string, error) {
	strictOnce.Do(compileStrict)
	if strictErr != nil {
		return nil, strictErr
	}
	compiled, ok := strictCompiled[s.Kind]
	if !ok {
		return nil, nil
	}
	var warnings []string
	for i, rec := range records {
		if rec == nil {
			continue
		}
		err := compiled.Validate(rec)
		if err == nil {
			continue
		}
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s[%d]: %v", source, i, err))
			continue
		}
		for _, leaf := range leafCauses(ve) {
			warnings = append(warnings, fmt.Sprintf("%s[%d]%s: %s", source, i, pointerToPath(leaf.InstanceLocation), leaf.Message))
		}
	}
	return warnings, nil
}

func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leafCauses(c)...)
	}
	return out
}

// pointerToPath turns "/share" into ".share".
func pointerToPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	var b strings.Builder
	for _, p := range parts {
		p = strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
		b.WriteString(".")
		b.WriteString(p)
	}
	return b.String()
}
