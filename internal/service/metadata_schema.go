package service

import "github.com/santhosh-tekuri/jsonschema/v5"

// Schemas for the well-known metadata keys. Anything outside this set is an
// open key and only has to survive JSON serialization.
var wellKnownMetadataSchemas = map[string]*jsonschema.Schema{
	"search_params": jsonschema.MustCompileString("search_params.json", `{"type": "object"}`),
	"filter_params": jsonschema.MustCompileString("filter_params.json", `{"type": "object"}`),
	"old_values":    jsonschema.MustCompileString("old_values.json", `{"type": "object"}`),
	"new_values":    jsonschema.MustCompileString("new_values.json", `{"type": "object"}`),
	"file_info":     jsonschema.MustCompileString("file_info.json", `{"type": "object"}`),
	"page_type":     jsonschema.MustCompileString("page_type.json", `{"type": "string", "maxLength": 64}`),
}

// validateMetadataKey checks well-known keys against their schema. The value
// must already be a decoded-JSON shape (maps, slices, strings, numbers).
func validateMetadataKey(key string, value interface{}) error {
	schema, ok := wellKnownMetadataSchemas[key]
	if !ok {
		return nil
	}
	return schema.Validate(value)
}
