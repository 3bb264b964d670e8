package formconfig

import (
	"regexp"
	"sort"
	"strings"
)

const maxSpecDepth = 32

// Normalize fills defaults, sanitises user-facing text and checks structural
// constraints. It returns a *ConfigError for the first problem found.
func Normalize(cfg *FormConfig) error {
	if cfg == nil {
		return &ConfigError{Reason: "config is nil"}
	}
	cfg.ID = strings.TrimSpace(cfg.ID)
	if cfg.Disclosure.ID == "" {
		cfg.Disclosure.ID = cfg.ID
	}
	if len(cfg.Attributes) == 0 {
		return &ConfigError{Reason: "config declares no attributes"}
	}

	for _, id := range sortedKeys(cfg.Validations) {
		rule := cfg.Validations[id]
		if err := normalizeValidation(&rule, "validations."+id); err != nil {
			return err
		}
		cfg.Validations[id] = rule
	}

	return normalizeSpec(&cfg.Spec, "", cfg.Validations, 0)
}

func normalizeSpec(spec *Spec, path string, shared map[string]ValidationRule, depth int) error {
	if depth > maxSpecDepth {
		return NewConfigError(path, "nesting deeper than %d levels", maxSpecDepth)
	}

	seen := make(map[string]struct{}, len(spec.Layout))
	for _, id := range spec.Layout {
		if _, ok := spec.Attributes[id]; !ok {
			return NewConfigError(path, "layout references unknown attribute %q", id)
		}
		if _, dup := seen[id]; dup {
			return NewConfigError(path, "layout lists attribute %q twice", id)
		}
		seen[id] = struct{}{}
	}

	for _, id := range sortedKeys(spec.Attributes) {
		attr := spec.Attributes[id]
		attrPath := joinPath(path, id)
		if attr == nil {
			return NewConfigError(attrPath, "attribute is null")
		}
		if attr.ID == "" {
			attr.ID = id
		}
		if attr.ID != id {
			return NewConfigError(attrPath, "attribute id %q does not match its key", attr.ID)
		}
		if err := normalizeAttribute(attr, attrPath, shared, depth); err != nil {
			return err
		}
	}
	return nil
}

func normalizeAttribute(attr *AttributeSpec, path string, shared map[string]ValidationRule, depth int) error {
	if attr.Kind == "" {
		attr.Kind = KindText
	}
	if !attr.Kind.Valid() {
		return NewConfigError(path, "unknown field kind %q", attr.Kind)
	}

	if attr.Kind == KindRichText {
		attr.Label = SanitizeRichText(attr.Label)
		attr.Description = SanitizeRichText(attr.Description)
	} else {
		attr.Label = SanitizeText(attr.Label)
		attr.Description = SanitizeText(attr.Description)
	}

	for _, rule := range []*AccessRule{attr.Visibility, attr.EditableLogic} {
		if err := normalizeRule(rule, path); err != nil {
			return err
		}
	}

	for i := range attr.Validations {
		ref := &attr.Validations[i]
		switch {
		case ref.Rule != nil:
			if err := normalizeValidation(ref.Rule, path); err != nil {
				return err
			}
		case ref.Ref == "":
			return NewConfigError(path, "validation %d is empty", i)
		default:
			if _, ok := shared[ref.Ref]; !ok {
				return NewConfigError(path, "unknown validation rule %q", ref.Ref)
			}
		}
	}

	if err := normalizeOptions(attr.Options, path); err != nil {
		return err
	}

	switch attr.Shape() {
	case ShapeGroup:
		if attr.Spec == nil {
			return NewConfigError(path, "group attribute requires a nested spec")
		}
		return normalizeSpec(attr.Spec, path, shared, depth+1)
	case ShapeArray:
		if attr.Spec == nil || len(attr.Spec.Attributes) != 1 {
			count := 0
			if attr.Spec != nil {
				count = len(attr.Spec.Attributes)
			}
			return NewConfigError(path, "array spec must declare exactly one attribute, found %d", count)
		}
		return normalizeSpec(attr.Spec, path, shared, depth+1)
	default:
		return nil
	}
}

func normalizeRule(rule *AccessRule, path string) error {
	if rule == nil {
		return nil
	}
	rule.Description = SanitizeText(rule.Description)
	for g := range rule.ConditionGroups {
		for c := range rule.ConditionGroups[g] {
			cond := &rule.ConditionGroups[g][c]
			if cond.SourceType == "" {
				if cond.Source == "" {
					cond.SourceType = SourceSelf
				} else {
					cond.SourceType = SourceFormAttribute
				}
			}
			if !cond.Operator.Known() {
				return NewConfigError(path, "condition %d.%d uses unknown operator %q", g, c, cond.Operator)
			}
			cond.Operator = cond.Operator.Canonical()
			cond.Description = SanitizeText(cond.Description)
		}
	}
	return nil
}

func normalizeValidation(rule *ValidationRule, path string) error {
	rule.Type = rule.Kind()
	rule.Message = SanitizeText(rule.Message)
	switch rule.Type {
	case ValidationRegex:
		if rule.Pattern == "" {
			return NewConfigError(path, "regex validation requires a pattern")
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return NewConfigError(path, "invalid pattern %q: %v", rule.Pattern, err)
		}
	case ValidationComparative:
		if rule.Rule == nil {
			return NewConfigError(path, "comparative validation requires a rule")
		}
		return normalizeRule(rule.Rule, path)
	default:
		return NewConfigError(path, "unknown validation type %q", rule.Type)
	}
	return nil
}

func normalizeOptions(src *OptionSource, path string) error {
	if src == nil {
		return nil
	}
	if src.Type == "" {
		if strings.TrimSpace(src.URL) != "" {
			src.Type = OptionsDynamic
		} else {
			src.Type = OptionsStatic
		}
	}
	switch src.Type {
	case OptionsStatic:
		labelKey := DefaultLabelKey
		if src.LabelKey != "" {
			labelKey = src.LabelKey
		}
		for _, item := range src.Items {
			if label, ok := item[labelKey].(string); ok {
				item[labelKey] = SanitizeText(label)
			}
		}
	case OptionsDynamic:
		if strings.TrimSpace(src.URL) == "" {
			return NewConfigError(path, "dynamic options require a url")
		}
	default:
		return NewConfigError(path, "unknown option source type %q", src.Type)
	}
	return nil
}

func joinPath(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "." + id
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
