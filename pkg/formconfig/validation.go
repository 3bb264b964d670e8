package formconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationType distinguishes regex rules from comparative (access-rule)
// rules.
type ValidationType string

const (
	ValidationRegex       ValidationType = "regex"
	ValidationComparative ValidationType = "comparative"
)

// ValidationRule is either a regex rule (Pattern + Message) or an embedded
// AccessRule evaluated on the editable channel and used as a blocking
// validator.
type ValidationRule struct {
	Type    ValidationType `json:"type" yaml:"type"`
	Pattern string         `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message string         `json:"message,omitempty" yaml:"message,omitempty"`
	Rule    *AccessRule    `json:"rule,omitempty" yaml:"rule,omitempty"`
}

// Kind infers the rule type when Type is omitted.
func (r ValidationRule) Kind() ValidationType {
	if r.Type != "" {
		return r.Type
	}
	if r.Rule != nil {
		return ValidationComparative
	}
	return ValidationRegex
}

// ValidationRef is an attribute's reference to a validation rule: either the
// id of a shared rule in FormConfig.Validations or an inline rule. It decodes
// from a bare string or an object in both JSON and YAML.
type ValidationRef struct {
	Ref  string
	Rule *ValidationRule
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *ValidationRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var ref string
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return err
		}
		*v = ValidationRef{Ref: strings.TrimSpace(ref)}
		return nil
	}
	var rule ValidationRule
	if err := json.Unmarshal(trimmed, &rule); err != nil {
		return fmt.Errorf("formconfig: decode validation: %w", err)
	}
	*v = ValidationRef{Rule: &rule}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v ValidationRef) MarshalJSON() ([]byte, error) {
	if v.Rule != nil {
		return json.Marshal(v.Rule)
	}
	return json.Marshal(v.Ref)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *ValidationRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*v = ValidationRef{Ref: strings.TrimSpace(node.Value)}
		return nil
	}
	var rule ValidationRule
	if err := node.Decode(&rule); err != nil {
		return fmt.Errorf("formconfig: decode validation: %w", err)
	}
	*v = ValidationRef{Rule: &rule}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v ValidationRef) MarshalYAML() (any, error) {
	if v.Rule != nil {
		return v.Rule, nil
	}
	return v.Ref, nil
}
