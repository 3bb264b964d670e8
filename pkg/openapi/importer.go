package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtree/pkg/coerce"
	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// ErrOperationNotFound is returned when the document has no operation with
// the requested id.
var ErrOperationNotFound = errors.New("openapi: operation not found")

const (
	endpointExtensionKey = "x-endpoint"
	itemAttributeID      = "item"
	maxSchemaDepth       = 32
)

// Option configures Import.
type Option func(*importer)

// WithLogger sets the logger used for skipped properties.
func WithLogger(logger *slog.Logger) Option {
	return func(i *importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithExternalRefs allows the loader to follow external $ref targets.
func WithExternalRefs(enabled bool) Option {
	return func(i *importer) {
		i.externalRefs = enabled
	}
}

type importer struct {
	logger       *slog.Logger
	externalRefs bool
	validations  map[string]formconfig.ValidationRule
}

// Operations lists the operation ids of a document in sorted order.
// Operations without an id are listed as "method:path".
func Operations(ctx context.Context, raw []byte) ([]string, error) {
	doc, err := load(ctx, raw, false)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range operations(doc) {
		ids = append(ids, entry.id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Import converts the request body of operationID into a normalized
// FormConfig.
func Import(ctx context.Context, raw []byte, operationID string, options ...Option) (*formconfig.FormConfig, error) {
	imp := &importer{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		validations: make(map[string]formconfig.ValidationRule),
	}
	for _, opt := range options {
		if opt != nil {
			opt(imp)
		}
	}

	doc, err := load(ctx, raw, imp.externalRefs)
	if err != nil {
		return nil, err
	}

	var op *openapi3.Operation
	for _, entry := range operations(doc) {
		if entry.id == operationID {
			op = entry.op
			break
		}
	}
	if op == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	body := requestSchema(op)
	if body == nil || body.Value == nil {
		return nil, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}
	if !isType(body.Value, openapi3.TypeObject) && len(body.Value.Properties) == 0 {
		return nil, fmt.Errorf("openapi: operation %q request body is not an object", operationID)
	}

	spec, err := imp.spec(body.Value, "", 0)
	if err != nil {
		return nil, err
	}

	cfg := &formconfig.FormConfig{
		ID: operationID,
		Disclosure: formconfig.Disclosure{
			ID:   operationID,
			Name: strings.TrimSpace(op.Summary),
		},
		Spec:        *spec,
		Validations: imp.validations,
	}
	if doc.Info != nil {
		cfg.Disclosure.Version = doc.Info.Version
	}
	if len(cfg.Validations) == 0 {
		cfg.Validations = nil
	}
	if err := formconfig.Normalize(cfg); err != nil {
		return nil, fmt.Errorf("openapi: %s: %w", operationID, err)
	}
	return cfg, nil
}

func load(ctx context.Context, raw []byte, externalRefs bool) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = externalRefs
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

type operationEntry struct {
	id string
	op *openapi3.Operation
}

func operations(doc *openapi3.T) []operationEntry {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	var out []operationEntry
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			op := ops[method]
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, operationEntry{id: id, op: op})
		}
	}
	return out
}

func requestSchema(op *openapi3.Operation) *openapi3.SchemaRef {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil {
			return mt.Schema
		}
	}
	return nil
}

func (imp *importer) spec(schema *openapi3.Schema, path string, depth int) (*formconfig.Spec, error) {
	if depth > maxSchemaDepth {
		return nil, formconfig.NewConfigError(path, "schema nested deeper than %d levels", maxSchemaDepth)
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	spec := &formconfig.Spec{
		Attributes: make(map[string]*formconfig.AttributeSpec, len(names)),
		Layout:     names,
	}
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			imp.logger.Warn("openapi property skipped", "path", joinPath(path, name), "ref", refOf(ref))
			spec.Layout = remove(spec.Layout, name)
			continue
		}
		attr, err := imp.attribute(name, ref.Value, joinPath(path, name), depth)
		if err != nil {
			return nil, err
		}
		spec.Attributes[name] = attr
	}
	return spec, nil
}

func (imp *importer) attribute(id string, schema *openapi3.Schema, path string, depth int) (*formconfig.AttributeSpec, error) {
	attr := &formconfig.AttributeSpec{
		ID:           id,
		Label:        schema.Title,
		Description:  schema.Description,
		InitialValue: schema.Default,
	}
	if attr.Label == "" {
		attr.Label = humanize(id)
	}
	if schema.ReadOnly {
		attr.EditableLogic = &formconfig.AccessRule{Readonly: true}
	} else {
		attr.EditableLogic = &formconfig.AccessRule{AllWaysEditable: true}
	}

	switch {
	case endpoint(schema) != nil:
		attr.Kind = formconfig.KindSelect
		attr.Options = endpoint(schema)
		if isType(schema, openapi3.TypeArray) {
			attr.Kind = formconfig.KindMultiSelect
		}
	case len(schema.Enum) > 0:
		attr.Kind = formconfig.KindSelect
		attr.Options = staticOptions(schema.Enum)
	case isType(schema, openapi3.TypeObject) || len(schema.Properties) > 0:
		attr.Kind = formconfig.KindGroup
		nested, err := imp.spec(schema, path, depth+1)
		if err != nil {
			return nil, err
		}
		attr.Spec = nested
	case isType(schema, openapi3.TypeArray):
		if err := imp.array(attr, schema, path, depth); err != nil {
			return nil, err
		}
	case isType(schema, openapi3.TypeBoolean):
		attr.Kind = formconfig.KindCheckbox
	case isType(schema, openapi3.TypeInteger), isType(schema, openapi3.TypeNumber):
		attr.Kind = formconfig.KindNumber
	default:
		attr.Kind = stringKind(schema)
	}

	if schema.Pattern != "" {
		key := strings.ToUpper(strings.ReplaceAll(path, ".", "_")) + "_PATTERN"
		imp.validations[key] = formconfig.ValidationRule{
			Type:    formconfig.ValidationRegex,
			Pattern: schema.Pattern,
			Message: fmt.Sprintf("%s must match %s", attr.Label, schema.Pattern),
		}
		attr.Validations = append(attr.Validations, formconfig.ValidationRef{Ref: key})
	}
	return attr, nil
}

func (imp *importer) array(attr *formconfig.AttributeSpec, schema *openapi3.Schema, path string, depth int) error {
	items := schema.Items
	if items != nil && items.Value != nil && len(items.Value.Enum) > 0 {
		attr.Kind = formconfig.KindMultiSelect
		attr.Multiple = true
		attr.Options = staticOptions(items.Value.Enum)
		return nil
	}

	attr.Kind = formconfig.KindArray
	var item *formconfig.AttributeSpec
	if items == nil || items.Value == nil {
		item = &formconfig.AttributeSpec{ID: itemAttributeID, Kind: formconfig.KindText}
	} else {
		built, err := imp.attribute(itemAttributeID, items.Value, joinPath(path, itemAttributeID), depth+1)
		if err != nil {
			return err
		}
		item = built
	}
	attr.Spec = &formconfig.Spec{
		Attributes: map[string]*formconfig.AttributeSpec{itemAttributeID: item},
	}
	return nil
}

func stringKind(schema *openapi3.Schema) formconfig.FieldKind {
	switch strings.ToLower(schema.Format) {
	case "date":
		return formconfig.KindDate
	case "date-time":
		return formconfig.KindDateTime
	case "email":
		return formconfig.KindEmail
	}
	if schema.MaxLength != nil && *schema.MaxLength > 255 {
		return formconfig.KindTextarea
	}
	return formconfig.KindText
}

func staticOptions(values []any) *formconfig.OptionSource {
	items := make([]formconfig.Option, 0, len(values))
	for _, value := range values {
		items = append(items, formconfig.Option{
			formconfig.DefaultValueKey: value,
			formconfig.DefaultLabelKey: humanize(coerce.Stringify(value)),
		})
	}
	return &formconfig.OptionSource{Type: formconfig.OptionsStatic, Items: items}
}

// endpoint reads the x-endpoint extension: {url, resultsPath, valueField,
// labelField}, with mapping.value/mapping.label as alternatives.
func endpoint(schema *openapi3.Schema) *formconfig.OptionSource {
	raw, ok := schema.Extensions[endpointExtensionKey]
	if !ok && schema.Items != nil && schema.Items.Value != nil {
		raw, ok = schema.Items.Value.Extensions[endpointExtensionKey]
	}
	if !ok {
		return nil
	}
	ext, ok := coerce.AsRecord(raw)
	if !ok {
		return nil
	}
	url := str(ext["url"])
	if url == "" {
		return nil
	}
	src := &formconfig.OptionSource{
		Type:        formconfig.OptionsDynamic,
		URL:         url,
		ResultsPath: str(ext["resultsPath"]),
		ValueKey:    str(ext["valueField"]),
		LabelKey:    str(ext["labelField"]),
	}
	if mapping, ok := coerce.AsRecord(ext["mapping"]); ok {
		if src.ValueKey == "" {
			src.ValueKey = str(mapping["value"])
		}
		if src.LabelKey == "" {
			src.LabelKey = str(mapping["label"])
		}
	}
	return src
}

func isType(schema *openapi3.Schema, typ string) bool {
	return schema != nil && schema.Type != nil && schema.Type.Is(typ)
}

func str(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

func refOf(ref *openapi3.SchemaRef) string {
	if ref == nil {
		return ""
	}
	return ref.Ref
}

func remove(list []string, target string) []string {
	out := list[:0]
	for _, item := range list {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}

func joinPath(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "." + id
}

// humanize turns identifiers such as "vendor_name" or "vendorName" into
// "Vendor name".
func humanize(id string) string {
	var b strings.Builder
	for i, r := range id {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteByte(' ')
		case i > 0 && r >= 'A' && r <= 'Z' && !isUpper(id[i-1]):
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return id
	}
	return strings.ToUpper(out[:1]) + out[1:]
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
