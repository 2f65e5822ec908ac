package tools

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/invopop/jsonschema"
	"github.com/m4xw311/picode/errors"
	"github.com/tidwall/gjson"
)

// schemaFor reflects an argument struct into the inline JSON schema object
// that providers expect for tool parameters.
func schemaFor(v any) map[string]any {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	data, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return map[string]any{"type": "object"}
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	return schema
}

// parseArgs validates the raw argument text. Empty input is treated as {}.
func parseArgs(raw string) (gjson.Result, error) {
	if raw == "" {
		raw = "{}"
	}
	if !gjson.Valid(raw) {
		return gjson.Result{}, errors.New("arguments are not valid JSON: %s", raw)
	}
	res := gjson.Parse(raw)
	if !res.IsObject() {
		return gjson.Result{}, errors.New("arguments must be a JSON object")
	}
	return res, nil
}

func stringArg(args gjson.Result, key string) (string, error) {
	v := args.Get(key)
	if !v.Exists() || v.Type != gjson.String {
		return "", errors.New("missing or invalid '%s' argument", key)
	}
	return v.String(), nil
}

// truncateRunes cuts s to at most n runes and reports the original rune count.
func truncateRunes(s string, n int) (string, int, bool) {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s, count, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], count, true
		}
		i++
	}
	return s, count, false
}
