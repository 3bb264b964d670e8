// Package formconfig defines the declarative form document interpreted by the
// control tree: attribute specs, nested specs, access rules, condition groups
// and validation rules. Documents decode from JSON or YAML, are normalised
// once at load time (ids filled from map keys, labels sanitised, references
// checked) and are treated as read-only afterwards.
package formconfig
