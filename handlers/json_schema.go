package handlers

import "github.com/xeipuuv/gojsonschema"

const generateRequestSchemaDefinition = `{
	"type": "object",
	"properties": {
		"videos_data": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"properties": {
					"video_id": { "type": "string", "minLength": 1 },
					"url": { "type": "string", "format": "uri" },
					"summary": { "type": "string" }
				},
				"required": [ "video_id", "url" ]
			}
		},
		"summary": { "type": "string" },
		"story_prompt": { "type": "string" },
		"auto_apply": { "type": "boolean" },
		"aspect_ratios": {
			"type": "array",
			"items": { "type": "string", "enum": [ "9:16", "1:1", "16:9" ] }
		},
		"callback_url": { "type": "string", "format": "uri" },
		"callback_data": { "type": "object" }
	},
	"required": [ "videos_data" ]
}`

const applyRequestSchemaDefinition = `{
	"type": "object",
	"properties": {
		"aspect_ratios": {
			"type": "array",
			"minItems": 1,
			"items": { "type": "string", "enum": [ "9:16", "1:1", "16:9" ] }
		}
	},
	"required": [ "aspect_ratios" ]
}`

var inputSchemas = map[string]string{
	"GenerateRequest": generateRequestSchemaDefinition,
	"ApplyRequest":    applyRequestSchemaDefinition,
}

func compileJSONSchemas() map[string]*gojsonschema.Schema {
	compiled := make(map[string]*gojsonschema.Schema, len(inputSchemas))
	for name, text := range inputSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
		if err != nil {
			panic(err) // fix schema text
		}
		compiled[name] = schema
	}
	return compiled
}

// Compile step on program start.
var inputSchemasCompiled = compileJSONSchemas()
