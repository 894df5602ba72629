package voxels

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ndMetadataSchema constrains the nd metadata document exchanged with the
// server before any fields are interpreted.  Offsets and sizes must be
// non-negative, every axis must carry a positive resolution, and value data
// types must come from the supported primitive set.
const ndMetadataSchema = `
{
    "$schema": "https://json-schema.org/draft/2020-12/schema",
    "title": "ND voxels metadata",
    "type": "object",
    "required": ["Axes", "Values"],
    "properties": {
        "Axes": {
            "type": "array",
            "minItems": 1,
            "items": {
                "type": "object",
                "required": ["Label", "Resolution", "Size", "Offset"],
                "properties": {
                    "Label": { "type": "string", "minLength": 1 },
                    "Resolution": { "type": "number", "exclusiveMinimum": 0 },
                    "Units": { "type": "string" },
                    "Size": { "type": "integer", "minimum": 0 },
                    "Offset": { "type": "integer", "minimum": 0 }
                }
            }
        },
        "Values": {
            "type": "array",
            "minItems": 1,
            "items": {
                "type": "object",
                "required": ["DataType", "Label"],
                "properties": {
                    "DataType": {
                        "enum": ["uint8", "int8", "uint16", "int16", "uint32",
                                 "int32", "uint64", "int64", "float32", "float64"]
                    },
                    "Label": { "type": "string" }
                }
            }
        }
    }
}
`

var compiledSchema = jsonschema.MustCompileString("nd-metadata.json", ndMetadataSchema)

// validateMetadataDocument checks a raw metadata document against the schema.
func validateMetadataDocument(doc []byte) error {
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return schemaErrorf("document is not valid JSON: %v", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return schemaErrorf("%v", err)
	}
	return nil
}
