package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formtree/pkg/access"
	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/control"
	"github.com/goliatone/go-formtree/pkg/formconfig"
	"github.com/goliatone/go-formtree/pkg/patch"
	"github.com/goliatone/go-formtree/pkg/session"
)

// MaxAttempts bounds how often one field is re-asked after failing its
// validators.
const MaxAttempts = 3

// Fill walks the session tree in layout order and asks for every visible,
// editable leaf. Array rows can be appended interactively.
func Fill(ctx context.Context, s *session.Session, driver Driver) error {
	if s == nil || driver == nil {
		return errors.New("prompt: session and driver are required")
	}
	f := &filler{session: s, driver: driver}
	return f.node(ctx, s.Tree(), nil, "")
}

type filler struct {
	session *session.Session
	driver  Driver
}

// node prompts for node and its descendants. scope is the enclosing array
// row so row fields are judged by their own siblings.
func (f *filler) node(ctx context.Context, node, scope control.Node, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if attr := node.Attribute(); attr != nil && path != "" {
		if f.session.EvaluateNode(access.ChannelVisibility, node, scope).Blocked {
			return nil
		}
	}

	switch typed := node.(type) {
	case *control.Group:
		for _, id := range typed.Keys() {
			child, _ := typed.Child(id)
			if err := f.node(ctx, child, scope, join(path, id)); err != nil {
				return err
			}
		}
		return nil
	case *control.Array:
		return f.array(ctx, typed, path)
	case *control.Leaf:
		return f.leaf(ctx, typed, scope, path)
	}
	return nil
}

func (f *filler) array(ctx context.Context, array *control.Array, path string) error {
	for i := 0; i < array.Len(); i++ {
		row, _ := array.Row(i)
		if err := f.node(ctx, row, row, join(path, strconv.Itoa(i))); err != nil {
			return err
		}
	}
	for {
		more, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add a row to %s?", label(array.Attribute())),
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		row, err := f.session.AppendRow(path)
		if err != nil {
			return err
		}
		if err := f.node(ctx, row, row, join(path, strconv.Itoa(array.Len()-1))); err != nil {
			return err
		}
	}
}

func (f *filler) leaf(ctx context.Context, leaf *control.Leaf, scope control.Node, path string) error {
	attr := leaf.Attribute()
	if attr.Kind == formconfig.KindHidden {
		return nil
	}
	if result := f.session.EvaluateNode(access.ChannelEditable, leaf, scope); result.Blocked {
		return f.driver.Info(ctx, fmt.Sprintf("%s: %s", label(attr), result.Message))
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		value, skip, err := f.ask(ctx, leaf)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		if err := f.session.SetValue(path, value); err != nil {
			return err
		}
		if leaf.Valid() {
			return nil
		}
		for _, msg := range messages(leaf.Errors()) {
			if err := f.driver.Info(ctx, fmt.Sprintf("%s: %s", label(attr), msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ask prompts for one leaf. skip is true when the user left an empty answer
// for a leaf without a value.
func (f *filler) ask(ctx context.Context, leaf *control.Leaf) (any, bool, error) {
	attr := leaf.Attribute()
	message := label(attr)
	help := formconfig.SanitizeText(attr.Description)
	current := patch.ProjectValue(attr, leaf.Value())

	switch attr.Kind {
	case formconfig.KindCheckbox, formconfig.KindToggle:
		def, _ := coerce.ToBool(current)
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: help, Default: def})
		return ok, false, err

	case formconfig.KindSelect, formconfig.KindRadio, formconfig.KindMultiSelect:
		options := leaf.Options()
		if len(options) == 0 && attr.Options != nil {
			options = attr.Options.Items
		}
		if len(options) > 0 {
			return f.choose(ctx, attr, options, current)
		}

	case formconfig.KindTextarea, formconfig.KindRichText:
		text, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help, Default: coerce.Stringify(current)})
		if err != nil {
			return nil, false, err
		}
		if attr.Kind == formconfig.KindRichText {
			text = formconfig.SanitizeRichText(text)
		}
		return text, strings.TrimSpace(text) == "" && current == nil, nil
	}

	cfg := InputConfig{Message: message, Help: help}
	if current != nil {
		cfg.Default = coerce.Stringify(current)
	}
	switch {
	case attr.Kind == formconfig.KindNumber:
		cfg.Validator = func(text string) error {
			if strings.TrimSpace(text) == "" {
				return nil
			}
			if _, ok := coerce.ToFloat(text); !ok {
				return fmt.Errorf("%q is not a number", text)
			}
			return nil
		}
	case attr.Kind.IsDate():
		cfg.Validator = func(text string) error {
			if strings.TrimSpace(text) == "" {
				return nil
			}
			if _, ok := coerce.ParseDate(text, attr.DateFormat); !ok {
				return fmt.Errorf("%q is not a date", text)
			}
			return nil
		}
	}

	text, err := f.driver.Input(ctx, cfg)
	if err != nil {
		return nil, false, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, current == nil, nil
	}
	switch {
	case attr.Kind == formconfig.KindNumber:
		if n, ok := coerce.ToFloat(text); ok {
			return n, false, nil
		}
	case attr.Kind.IsDate():
		if t, ok := coerce.ParseDate(text, attr.DateFormat); ok {
			return t, false, nil
		}
	}
	return text, false, nil
}

func (f *filler) choose(ctx context.Context, attr *formconfig.AttributeSpec, options []formconfig.Option, current any) (any, bool, error) {
	valueKey, labelKey := attr.Options.Keys()
	labels := make([]string, len(options))
	defaults := []int{}
	for i, option := range options {
		labels[i] = formconfig.SanitizeText(coerce.Stringify(option[labelKey]))
		if labels[i] == "" {
			labels[i] = coerce.Stringify(option[valueKey])
		}
		if selected(current, option[valueKey]) {
			defaults = append(defaults, i)
		}
	}
	cfg := SelectConfig{Message: label(attr), Options: labels, Help: formconfig.SanitizeText(attr.Description), DefaultIndex: -1}

	if attr.MultiValued() {
		cfg.Defaults = defaults
		indices, err := f.driver.MultiSelect(ctx, cfg)
		if err != nil {
			return nil, false, err
		}
		out := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				out = append(out, cloneOption(options[idx]))
			}
		}
		return out, false, nil
	}

	if len(defaults) > 0 {
		cfg.DefaultIndex = defaults[0]
	}
	idx, err := f.driver.Select(ctx, cfg)
	if err != nil {
		return nil, false, err
	}
	if idx < 0 || idx >= len(options) {
		return nil, true, nil
	}
	return cloneOption(options[idx]), false, nil
}

func selected(current, value any) bool {
	if items, ok := coerce.AsSlice(current); ok {
		for _, item := range items {
			if coerce.Stringify(item) == coerce.Stringify(value) {
				return true
			}
		}
		return false
	}
	return current != nil && coerce.Stringify(current) == coerce.Stringify(value)
}

func cloneOption(option formconfig.Option) formconfig.Option {
	out := make(formconfig.Option, len(option))
	for k, v := range option {
		out[k] = v
	}
	return out
}

func label(attr *formconfig.AttributeSpec) string {
	if attr == nil {
		return "row"
	}
	if text := formconfig.SanitizeText(attr.Label); text != "" {
		return text
	}
	return attr.ID
}

func messages(errs map[string]string) []string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, errs[key])
	}
	return out
}

func join(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}
