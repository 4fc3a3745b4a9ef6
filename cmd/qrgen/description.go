package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
)

// description is what a YAML or JSONC file may hold. Keys match the HTTP
// API so a request body can be saved and replayed from the command line.
type description struct {
	Kind           string                `json:"kind"`
	Fields         map[string]string     `json:"fields"`
	Microsite      *microsite.Config     `json:"microsite,omitempty"`
	StrictEscaping bool                  `json:"strict_escaping"`
	Options        *models.VisualOptions `json:"options,omitempty"`
}

// loadDescription reads path as YAML (.yaml, .yml) or JSONC (anything
// else). YAML is converted to JSON first so both share the JSON keys.
func loadDescription(path string) (*description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDescription(data, filepath.Ext(path))
}

func parseDescription(data []byte, ext string) (*description, error) {
	var raw []byte
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		doc = stringKeys(doc)
		if top, ok := doc.(map[string]interface{}); ok {
			if fields, ok := top["fields"].(map[string]interface{}); ok {
				for k, val := range fields {
					if val != nil {
						fields[k] = fmt.Sprint(val)
					}
				}
			}
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("converting yaml: %w", err)
		}
		raw = converted
	default:
		raw = jsonc.ToJSON(data)
	}

	var desc description
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("parsing description: %w", err)
	}
	return &desc, nil
}

// stringKeys rewrites yaml maps with non-string keys, which encoding/json
// cannot marshal.
func stringKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	}
	return v
}
