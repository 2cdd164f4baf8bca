package flowdsl

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document interchange for the Configuration aggregate. The structured form
// preserves every field the core defines, including ones the DSL has no
// syntax for (edge condition text), so external converters and fixtures can
// round-trip without loss.

// ParseConfigDocument decodes a JSON or YAML document into a Configuration.
// YAML is a superset of JSON here, so a single decode attempt covers both.
func ParseConfigDocument(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration document: %w", err)
	}
	if err := checkSerializable(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MarshalConfigJSON renders the configuration as JSON.
func MarshalConfigJSON(cfg *Configuration) ([]byte, error) {
	if err := checkSerializable(cfg); err != nil {
		return nil, err
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// MarshalConfigYAML renders the configuration as YAML.
func MarshalConfigYAML(cfg *Configuration) ([]byte, error) {
	if err := checkSerializable(cfg); err != nil {
		return nil, err
	}
	return yaml.Marshal(cfg)
}
