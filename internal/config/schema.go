package config

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	scerrors "github.com/systmms/sitectl/internal/errors"
)

// documentSchema validates the sitectl.yaml shape before unmarshalling.
// Unknown top-level keys are rejected so typos surface as config errors
// instead of silently ignored settings.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "defaults": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "retryCount": {"type": "integer", "minimum": 0},
        "retryWaitSeconds": {"type": "integer", "minimum": 0},
        "requestTimeoutMs": {"type": "integer", "minimum": 1},
        "minimalHealthScore": {"type": "integer", "minimum": -1}
      }
    },
    "credentialStore": {
      "type": "object",
      "properties": {
        "type": {"type": "string", "enum": ["keyring", "memory"]},
        "service": {"type": "string"},
        "entries": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "username": {"type": "string"},
              "password": {"type": "string"}
            }
          }
        }
      }
    },
    "sites": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "required": ["url"],
        "properties": {
          "url": {"type": "string", "format": "uri"},
          "adminUrl": {"type": "string", "format": "uri"},
          "authMode": {"type": "string", "enum": ["default", "forms"]},
          "clientId": {"type": "string"},
          "redirectUri": {"type": "string"},
          "tenant": {"type": "string"},
          "azureEnvironment": {"type": "string", "enum": ["production", "usgovernment", "china", "germany"]},
          "skipAdminCheck": {"type": "boolean"}
        }
      }
    }
  }
}`

// ValidateDocument checks raw YAML against the document schema.
// gojsonschema works on JSON, so the YAML is decoded to a generic value
// and re-marshalled first.
func ValidateDocument(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return scerrors.ConfigError{
			Field:      "sitectl.yaml",
			Message:    "invalid YAML: " + err.Error(),
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	jsonData, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return scerrors.ConfigError{
			Field:   "sitectl.yaml",
			Message: "failed to prepare document for validation: " + err.Error(),
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return scerrors.ConfigError{
			Field:   "sitectl.yaml",
			Message: "schema validation error: " + err.Error(),
		}
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return scerrors.ConfigError{
			Field:      "sitectl.yaml",
			Message:    "schema validation failed:\n  - " + strings.Join(errorMessages, "\n  - "),
			Suggestion: "Compare your config against the documented sitectl.yaml format",
		}
	}

	return nil
}

// normalizeYAML converts map[interface{}]interface{} trees produced by
// yaml.v3 for some documents into map[string]interface{} so they survive
// json.Marshal.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[toString(k)] = normalizeYAML(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, _ := json.Marshal(v)
	return strings.Trim(string(data), `"`)
}
